package commands

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penwyp/go-callflow/internal/core/ladder"
	"github.com/penwyp/go-callflow/internal/testing/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const captureDocument = `{
  "detail": [
    {
      "sid": "call-a",
      "ip_mappings": {"10.0.0.1": "alice"},
      "messages": [
        {"id": 1, "raw": "INVITE sip:bob@example.com SIP/2.0\r\n", "protocol_header": {"srcIp": "10.0.0.1", "dstIp": "10.0.0.2", "timeSeconds": 1700000000, "timeUseconds": 0}},
        {"id": 2, "raw": "SIP/2.0 200 OK\r\n", "protocol_header": {"srcIp": "10.0.0.2", "dstIp": "10.0.0.1", "timeSeconds": 1700000002, "timeUseconds": 0}}
      ]
    },
    {
      "sid": "call-b",
      "messages": [
        {"id": 3, "raw": "INVITE sip:carol@example.com SIP/2.0\r\n", "protocol_header": {"srcIp": "10.0.0.2", "dstIp": "10.0.0.3", "timeSeconds": 1700000001, "timeUseconds": 250000}}
      ]
    }
  ]
}`

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.json")
	require.NoError(t, os.WriteFile(path, []byte(captureDocument), 0644))
	return path
}

func TestFlowCommandFlags(t *testing.T) {
	tests := []struct {
		flag         string
		defaultValue string
	}{
		{"output", "ladder"},
		{"input", ""},
		{"width", "0"},
		{"no-color", "false"},
		{"show-index", "false"},
		{"relative", "false"},
		{"names", "false"},
		{"colors", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := flowCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultValue, flag.DefValue)
		})
	}
}

func TestRunFlow_JSONFromInput(t *testing.T) {
	input := writeCapture(t)
	out, err := executeCommand(t, "flow", "--home", t.TempDir(), "--input", input,
		"--sid", "call-a,call-b", "--output", "json")
	require.NoError(t, err)

	var frame ladder.Frame
	require.NoError(t, json.Unmarshal([]byte(out), &frame))
	require.Len(t, frame.Rows, 3)
	assert.Equal(t, []int64{1, 3, 2}, []int64{frame.Rows[0].MessageID, frame.Rows[1].MessageID, frame.Rows[2].MessageID})
	require.Len(t, frame.Columns, 3)
	assert.Equal(t, "10.0.0.1", frame.Columns[0].Label)
}

func TestRunFlow_CSVWithOverrides(t *testing.T) {
	input := writeCapture(t)
	out, err := executeCommand(t, "flow", "call-a", "call-b", "--home", t.TempDir(), "--input", input,
		"--output", "csv", "--show-index", "--relative", "--names")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "index", records[0][0])

	first := records[1]
	assert.Equal(t, "00", first[1])
	assert.Equal(t, "alice", first[5])
	assert.Equal(t, "[1] INVITE", first[8])

	second := records[2]
	assert.Equal(t, "+1.250s", second[1])
	assert.Equal(t, "call-b", second[3])
}

func TestRunFlow_LadderNoColor(t *testing.T) {
	input := writeCapture(t)
	out, err := executeCommand(t, "flow", "--home", t.TempDir(), "--input", input,
		"--sid", "call-a", "--width", "60", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "INVITE")
	assert.Contains(t, out, "200 OK")
	assert.NotContains(t, out, "\033[")
}

func TestRunFlow_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database offline"}`))
	}))
	defer server.Close()

	out, err := executeCommand(t, "flow", "--home", t.TempDir(), "--server", server.URL,
		"--sid", "call-a", "--no-color")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
	assert.Contains(t, out, "No messages")
}

func TestRunFlow_Validation(t *testing.T) {
	_, err := executeCommand(t, "flow", "--home", t.TempDir())
	assert.Error(t, err)

	_, err = executeCommand(t, "flow", "--home", t.TempDir(), "--sid", "a", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestRunWatch_RequiresDomain(t *testing.T) {
	_, err := executeCommand(t, "watch", "--home", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope must not be empty")

	_, err = executeCommand(t, "watch", "--home", t.TempDir(), "--domain", "example.com", "--interval", "7s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid watch interval")
}

func TestRunFlow_TableFromGeneratedCalls(t *testing.T) {
	start := time.Unix(1700000000, 0)
	g := fixtures.NewTestDataGenerator(t.TempDir())
	input, err := g.WriteCallDetail("calls.json",
		fixtures.BasicCall("first", "10.0.0.1", "10.0.0.2", start, 1),
		fixtures.BasicCall("second", "10.0.0.2", "10.0.0.3", start.Add(time.Second), 100),
	)
	require.NoError(t, err)

	out, err := executeCommand(t, "flow", "--home", t.TempDir(), "--input", input,
		"--sid", "first,second", "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "180 Ringing")
	assert.Contains(t, out, "second")
	assert.Contains(t, out, "10.0.0.3")
	assert.Contains(t, out, "| 14 ")
}
