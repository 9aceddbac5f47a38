package udp

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// MaxDatagramSize is the receive buffer size. Larger datagrams are truncated.
const MaxDatagramSize = 8192

// ActionCustom is the only action the responder ever answers with.
const ActionCustom = "Custom"

// Action tells the client what to do with the phrase it sent.
type Action struct {
	Type string `json:"type"`
}

// Acknowledgment is the response object the client expects.
// Error is always nil from this responder, so it never appears on the wire.
type Acknowledgment struct {
	Error  *string `json:"error,omitempty"`
	Action Action  `json:"action"`
}

// ackPayload is encoded once: {"action":{"type":"Custom"}}
var ackPayload = mustEncode(Acknowledgment{Action: Action{Type: ActionCustom}})

func mustEncode(ack Acknowledgment) []byte {
	data, err := json.Marshal(ack)
	if err != nil {
		panic(err)
	}
	return data
}

// AckPayload returns a copy of the fixed acknowledgment bytes.
func AckPayload() []byte {
	return bytes.Clone(ackPayload)
}

// ParseAcknowledgment decodes a response datagram.
func ParseAcknowledgment(data []byte) (*Acknowledgment, error) {
	var ack Acknowledgment
	err := json.Unmarshal(data, &ack)
	return &ack, err
}

// Payload is the message shape the debugged client sends.
type Payload struct {
	Text string `json:"text"`
}

// Inbound is one decoded datagram. No schema is enforced.
type Inbound struct {
	Value any
	raw   []byte
}

// Decode validates data as UTF-8 JSON text. Any JSON value is accepted.
func Decode(data []byte) (*Inbound, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DecodeError{Reason: "empty datagram"}
	}
	if !utf8.Valid(data) {
		return nil, &DecodeError{Reason: "invalid utf-8"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &DecodeError{Reason: "invalid json", Err: err}
	}
	if dec.More() {
		return nil, &DecodeError{Reason: "trailing data after json value"}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, &DecodeError{Reason: "invalid json", Err: err}
	}

	return &Inbound{Value: value, raw: compact.Bytes()}, nil
}

// JSON returns the message re-encoded without insignificant whitespace.
func (in *Inbound) JSON() []byte {
	return in.raw
}

// String is the trace rendition of the message.
func (in *Inbound) String() string {
	return string(in.raw)
}

// Text returns the client's phrase when the message is a Payload object.
func (in *Inbound) Text() (string, bool) {
	obj, ok := in.Value.(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := obj["text"].(string)
	return text, ok
}
