package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// DetailResponse is the payload of the call-detail endpoint
type DetailResponse struct {
	Detail []CallSession `json:"detail"`
}

// WatchResponse is the payload of the watch-window endpoint
type WatchResponse struct {
	Messages []Message `json:"messages"`
}

// CallSession groups the messages of one call as returned by a single fetch
type CallSession struct {
	ID         string            `json:"sid"`
	Messages   []Message         `json:"messages"`
	IPMappings map[string]string `json:"ip_mappings,omitempty"`
}

// Message is one captured protocol exchange unit
type Message struct {
	ID             int64          `json:"id"`
	Raw            string         `json:"raw"`
	SessionID      string         `json:"sid"`
	CreateDate     string         `json:"create_date,omitempty"`
	DataHeader     DataHeader     `json:"data_header"`
	ProtocolHeader ProtocolHeader `json:"protocol_header"`
}

// DataHeader carries the SIP fields the capture backend extracted
type DataHeader struct {
	CSeq       string `json:"cseq,omitempty"`
	CallID     string `json:"callid,omitempty"`
	Method     string `json:"method,omitempty"`
	ToUser     string `json:"to_user,omitempty"`
	FromTag    string `json:"from_tag,omitempty"`
	FromUser   string `json:"from_user,omitempty"`
	RuriUser   string `json:"ruri_user,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RuriDomain string `json:"ruri_domain,omitempty"`
}

// ProtocolHeader carries the capture envelope of a message
type ProtocolHeader struct {
	DstIP          string       `json:"dstIp"`
	SrcIP          string       `json:"srcIp"`
	DstPort        int          `json:"dstPort"`
	SrcPort        int          `json:"srcPort"`
	Protocol       int          `json:"protocol,omitempty"`
	CaptureID      FlexibleText `json:"captureId,omitempty"`
	CapturePass    string       `json:"capturePass,omitempty"`
	PayloadType    int          `json:"payloadType,omitempty"`
	TimeSeconds    int64        `json:"timeSeconds"`
	TimeUseconds   int64        `json:"timeUseconds"`
	CorrelationID  string       `json:"correlation_id,omitempty"`
	ProtocolFamily int          `json:"protocolFamily,omitempty"`
}

// FlexibleText accepts either a JSON string or a JSON number.
// Some capture agents report captureId as a number.
type FlexibleText string

func (ft *FlexibleText) UnmarshalJSON(data []byte) error {
	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		*ft = FlexibleText(str)
		return nil
	}

	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		*ft = FlexibleText(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}

	if string(data) == "null" {
		*ft = ""
		return nil
	}

	return fmt.Errorf("value must be either string or number")
}

// Endpoint is a network address rendered as a ladder column
type Endpoint struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

// Label returns the display name when one is known, the address otherwise
func (e Endpoint) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Address
}

// TimestampMS combines seconds and the microsecond remainder into milliseconds
func (m Message) TimestampMS() float64 {
	return float64(m.ProtocolHeader.TimeSeconds)*1000 + float64(m.ProtocolHeader.TimeUseconds)/1000
}

// Time returns the capture instant truncated to the millisecond
func (m Message) Time() time.Time {
	ms := m.ProtocolHeader.TimeSeconds*1000 + m.ProtocolHeader.TimeUseconds/1000
	return time.UnixMilli(ms)
}

// Source returns the source address
func (m Message) Source() string {
	return m.ProtocolHeader.SrcIP
}

// Destination returns the destination address
func (m Message) Destination() string {
	return m.ProtocolHeader.DstIP
}

// IsSelf reports whether source and destination are the same endpoint
func (m Message) IsSelf() bool {
	return m.Source() != "" && m.Source() == m.Destination()
}
