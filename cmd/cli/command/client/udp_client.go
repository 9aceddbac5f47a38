package client

// udp_client.go = plays the debugged client's side against a running responder.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	udp "netdebug/internal/microservices/udp-server"
)

// UDPClient sends one payload to the responder and waits for the acknowledgment
// on the endpoint the responder is configured to answer.
type UDPClient struct {
	responderAddr string
	listenAddr    string
	timeout       time.Duration
}

// ProbeResult describes one acknowledgment received by the client.
type ProbeResult struct {
	Raw  []byte
	Ack  *udp.Acknowledgment
	From *net.UDPAddr
	RTT  time.Duration
}

func NewUDPClient(responderAddr, listenAddr string, timeout time.Duration) *UDPClient {
	return &UDPClient{
		responderAddr: responderAddr,
		listenAddr:    listenAddr,
		timeout:       timeout,
	}
}

// TextPayload encodes the phrase the way the debugged client does.
func TextPayload(text string) ([]byte, error) {
	return json.Marshal(udp.Payload{Text: text})
}

// Probe sends payload and blocks until an acknowledgment arrives, the timeout
// passes, or ctx is cancelled.
func (c *UDPClient) Probe(ctx context.Context, payload []byte) (*ProbeResult, error) {
	target, err := net.ResolveUDPAddr("udp", c.responderAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve responder address: %w", err)
	}

	local, err := net.ResolveUDPAddr("udp", c.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve listen address: %w", err)
	}

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", c.listenAddr, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	start := time.Now()
	if _, err := conn.WriteToUDP(payload, target); err != nil {
		return nil, fmt.Errorf("failed to send payload: %w", err)
	}

	deadline := start.Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	buffer := make([]byte, udp.MaxDatagramSize)
	n, from, err := conn.ReadFromUDP(buffer)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, fmt.Errorf("no acknowledgment within %s", c.timeout)
		}
		return nil, fmt.Errorf("failed to read acknowledgment: %w", err)
	}

	result := &ProbeResult{
		Raw:  bytes.Clone(buffer[:n]),
		From: from,
		RTT:  time.Since(start),
	}

	ack, err := udp.ParseAcknowledgment(result.Raw)
	if err != nil {
		return result, fmt.Errorf("failed to parse acknowledgment: %w", err)
	}
	result.Ack = ack

	if ack.Error != nil {
		return result, fmt.Errorf("responder error: %s", *ack.Error)
	}
	return result, nil
}

// PrettyPrintJSON formats JSON for display
func PrettyPrintJSON(data []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return string(data)
	}
	return pretty.String()
}
