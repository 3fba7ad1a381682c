package ladder

import (
	"regexp"
	"strconv"
	"strings"
)

// labelPattern matches either a SIP status line (capturing "200 OK") or a SIP
// request line (capturing the method). The leftmost match wins.
var labelPattern = regexp.MustCompile(`(?m)^SIP/2\.0[ \t]+(\d{3}[^\r\n]*)|^([A-Za-z][A-Za-z0-9_-]*)[ \t]+\S+[ \t]+SIP/2\.0`)

// ExtractLabel returns the status phrase of a response or the method of a
// request found in raw, or "" when the payload matches neither.
func ExtractLabel(raw string) string {
	m := labelPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return m[2]
}

// IndexLabel prefixes label with the 1-based row number
func IndexLabel(row int, label string) string {
	return "[" + strconv.Itoa(row+1) + "] " + label
}
