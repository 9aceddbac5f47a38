package udp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	args := m.Called(ctx, channel, message)
	return redis.NewIntResult(int64(args.Int(0)), args.Error(1))
}

func TestRedisMirror_PublishesEventJSON(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "netdebug:trace", mock.AnythingOfType("[]uint8")).Return(1, nil)

	m := NewMirror(pub, "netdebug:trace", nil)
	ev := &Event{
		TraceID: "abc",
		Kind:    EventReceived,
		From:    "127.0.0.1:5000",
		Payload: json.RawMessage(`{"x":1}`),
		At:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	require.NoError(t, m.Publish(context.Background(), ev))
	pub.AssertExpectations(t)

	sent := pub.Calls[0].Arguments.Get(2).([]byte)
	assert.JSONEq(t, `{
		"trace_id": "abc",
		"kind": "RECEIVED",
		"from": "127.0.0.1:5000",
		"payload": {"x": 1},
		"at": "2024-01-02T03:04:05Z"
	}`, string(sent))
}

func TestRedisMirror_PublishError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "trace", mock.Anything).Return(0, errors.New("connection refused"))

	m := NewMirror(pub, "trace", nil)
	err := m.Publish(context.Background(), &Event{Kind: EventDecodeError})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, errors.Is(err, ErrMirrorThrottled))
}

func TestRedisMirror_ThrottlesBeyondBurst(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, "trace", mock.Anything).Return(1, nil)

	// one token, refilled far slower than the test runs
	m := NewMirror(pub, "trace", rate.NewLimiter(rate.Every(time.Hour), 1))

	require.NoError(t, m.Publish(context.Background(), &Event{}))
	err := m.Publish(context.Background(), &Event{})
	assert.ErrorIs(t, err, ErrMirrorThrottled)
	assert.Equal(t, uint64(1), m.Dropped())

	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNewRedisMirror_BadURL(t *testing.T) {
	_, err := NewRedisMirror("not a url", "trace", 1, 1)
	assert.Error(t, err)
}

func TestRedisMirror_CloseWithoutClient(t *testing.T) {
	m := NewMirror(new(MockPublisher), "trace", nil)
	assert.NoError(t, m.Close())
}
