package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-callflow/internal/core/model"
)

// CallBuilder assembles a call session message by message
type CallBuilder struct {
	sid      string
	start    time.Time
	nextID   int64
	messages []model.Message
	names    map[string]string
}

// NewCall starts a session whose message ids count up from firstID
func NewCall(sid string, start time.Time, firstID int64) *CallBuilder {
	return &CallBuilder{
		sid:    sid,
		start:  start,
		nextID: firstID,
		names:  make(map[string]string),
	}
}

// Request adds a SIP request sent offset after the call start
func (b *CallBuilder) Request(offset time.Duration, method, src, dst string) *CallBuilder {
	raw := fmt.Sprintf("%s sip:%s SIP/2.0\r\nCall-ID: %s\r\nCSeq: 1 %s\r\n\r\n", method, dst, b.sid, method)
	return b.add(offset, src, dst, raw, method)
}

// Response adds a SIP response sent offset after the call start
func (b *CallBuilder) Response(offset time.Duration, status int, reason, src, dst string) *CallBuilder {
	raw := fmt.Sprintf("SIP/2.0 %d %s\r\nCall-ID: %s\r\n\r\n", status, reason, b.sid)
	return b.add(offset, src, dst, raw, "")
}

// Name registers a display name for an endpoint address
func (b *CallBuilder) Name(addr, name string) *CallBuilder {
	b.names[addr] = name
	return b
}

func (b *CallBuilder) add(offset time.Duration, src, dst, raw, method string) *CallBuilder {
	at := b.start.Add(offset)
	b.messages = append(b.messages, model.Message{
		ID:        b.nextID,
		Raw:       raw,
		SessionID: b.sid,
		DataHeader: model.DataHeader{
			CallID: b.sid,
			Method: method,
		},
		ProtocolHeader: model.ProtocolHeader{
			SrcIP:        src,
			DstIP:        dst,
			SrcPort:      5060,
			DstPort:      5060,
			Protocol:     17,
			TimeSeconds:  at.Unix(),
			TimeUseconds: int64(at.Nanosecond() / 1000),
		},
	})
	b.nextID++
	return b
}

// Build returns the assembled session
func (b *CallBuilder) Build() model.CallSession {
	s := model.CallSession{
		ID:       b.sid,
		Messages: append([]model.Message(nil), b.messages...),
	}
	if len(b.names) > 0 {
		s.IPMappings = make(map[string]string, len(b.names))
		for k, v := range b.names {
			s.IPMappings[k] = v
		}
	}
	return s
}

// BasicCall is a complete call: INVITE, 100, 180, 200, ACK, then BYE and 200
// two seconds later
func BasicCall(sid, caller, callee string, start time.Time, firstID int64) model.CallSession {
	return NewCall(sid, start, firstID).
		Request(0, "INVITE", caller, callee).
		Response(20*time.Millisecond, 100, "Trying", callee, caller).
		Response(300*time.Millisecond, 180, "Ringing", callee, caller).
		Response(1500*time.Millisecond, 200, "OK", callee, caller).
		Request(1520*time.Millisecond, "ACK", caller, callee).
		Request(3500*time.Millisecond, "BYE", caller, callee).
		Response(3540*time.Millisecond, 200, "OK", callee, caller).
		Build()
}

// TestDataGenerator writes call-detail documents for tests
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

// WriteCallDetail saves sessions as a call-detail document and returns its path
func (g *TestDataGenerator) WriteCallDetail(name string, sessions ...model.CallSession) (string, error) {
	if err := os.MkdirAll(g.baseDir, 0755); err != nil {
		return "", err
	}

	data, err := sonic.ConfigStd.MarshalIndent(model.DetailResponse{Detail: sessions}, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(g.baseDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
