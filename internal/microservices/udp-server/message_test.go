package udp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAckPayload_WireFormat(t *testing.T) {
	assert.Equal(t, `{"action":{"type":"Custom"}}`, string(AckPayload()))

	// callers cannot corrupt the shared payload
	p := AckPayload()
	p[0] = 'X'
	assert.Equal(t, `{"action":{"type":"Custom"}}`, string(AckPayload()))
}

func TestParseAcknowledgment(t *testing.T) {
	ack, err := ParseAcknowledgment(AckPayload())
	require.NoError(t, err)
	assert.Nil(t, ack.Error)
	assert.Equal(t, ActionCustom, ack.Action.Type)

	ack, err = ParseAcknowledgment([]byte(`{"error":"no match","action":{"type":"Custom"}}`))
	require.NoError(t, err)
	require.NotNil(t, ack.Error)
	assert.Equal(t, "no match", *ack.Error)
}

func TestDecode_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"object", `{"x": 1}`, `{"x":1}`},
		{"array", `[1, 2]`, `[1,2]`},
		{"string", `"hi"`, `"hi"`},
		{"number keeps precision", `12345678901234567890`, `12345678901234567890`},
		{"surrounding whitespace", "  {\"a\":true}\n", `{"a":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.String())
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		reason string
	}{
		{"non utf-8", []byte{0xff, 0xfe}, "invalid utf-8"},
		{"empty", []byte{}, "empty datagram"},
		{"blank", []byte("   "), "empty datagram"},
		{"truncated", []byte(`{"x":`), "invalid json"},
		{"not json", []byte("hello"), "invalid json"},
		{"two values", []byte(`{"a":1} {"b":2}`), "trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.Error(t, err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Contains(t, decErr.Reason, tt.reason)
		})
	}
}

func TestInbound_Text(t *testing.T) {
	msg, err := Decode([]byte(`{"text":"turn on the lights"}`))
	require.NoError(t, err)

	text, ok := msg.Text()
	assert.True(t, ok)
	assert.Equal(t, "turn on the lights", text)

	msg, err = Decode([]byte(`["text"]`))
	require.NoError(t, err)
	_, ok = msg.Text()
	assert.False(t, ok)
}

func TestDecodeError_Message(t *testing.T) {
	err := &DecodeError{From: "127.0.0.1:5000", Reason: "invalid utf-8"}
	assert.Equal(t, "decode datagram from 127.0.0.1:5000: invalid utf-8", err.Error())
}
