package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"request", "INVITE sip:1001@pbx.local SIP/2.0\r\nVia: SIP/2.0/UDP 10.0.0.1\r\n", "INVITE"},
		{"response", "SIP/2.0 180 Ringing\r\nVia: SIP/2.0/UDP 10.0.0.1\r\n", "180 Ringing"},
		{"response with long phrase", "SIP/2.0 407 Proxy Authentication Required\r\n", "407 Proxy Authentication Required"},
		{"via header alone is not a status line", "Via: SIP/2.0/UDP 10.0.0.1\r\n", ""},
		{"empty", "", ""},
		{"not sip", "GET / HTTP/1.1\r\n", ""},
		{"trailing spaces trimmed", "SIP/2.0 200 OK  \r\n", "200 OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLabel(tt.raw))
		})
	}
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "00", FormatRelative(0, 0))
	assert.Equal(t, "+0ms", FormatRelative(1, 0))
	assert.Equal(t, "+499ms", FormatRelative(3, 499))
	assert.Equal(t, "+0.500s", FormatRelative(3, 500))
	assert.Equal(t, "+12.345s", FormatRelative(9, 12345))
}
