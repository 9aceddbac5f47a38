package udp

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// EventKind labels a mirrored trace event.
type EventKind string

const (
	EventReceived    EventKind = "RECEIVED"
	EventDecodeError EventKind = "DECODE_ERROR"
)

// Event is one trace record mirrored to other debugging tools.
type Event struct {
	TraceID string          `json:"trace_id"`
	Kind    EventKind       `json:"kind"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
	At      time.Time       `json:"at"`
}

// Mirror receives a copy of every datagram trace.
type Mirror interface {
	Publish(ctx context.Context, ev *Event) error
}

// ErrMirrorThrottled is returned when an event was dropped by the rate limiter.
var ErrMirrorThrottled = errors.New("mirror rate limit exceeded")

// Publisher is the subset of *redis.Client the mirror needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

const mirrorPublishTimeout = 2 * time.Second

// RedisMirror publishes trace events on a Redis pub/sub channel.
type RedisMirror struct {
	pub     Publisher
	client  *redis.Client
	channel string
	limiter *rate.Limiter
	dropped atomic.Uint64
}

// NewRedisMirror connects to redisURL and verifies the connection.
func NewRedisMirror(redisURL, channel string, perSecond float64, burst int) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}

	m := NewMirror(rdb, channel, rate.NewLimiter(rate.Limit(perSecond), burst))
	m.client = rdb
	return m, nil
}

// NewMirror builds a mirror over any Publisher. A nil limiter means unlimited.
func NewMirror(pub Publisher, channel string, limiter *rate.Limiter) *RedisMirror {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &RedisMirror{
		pub:     pub,
		channel: channel,
		limiter: limiter,
	}
}

func (m *RedisMirror) Publish(ctx context.Context, ev *Event) error {
	if !m.limiter.Allow() {
		m.dropped.Add(1)
		return ErrMirrorThrottled
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal trace event")
	}

	ctx, cancel := context.WithTimeout(ctx, mirrorPublishTimeout)
	defer cancel()

	if err := m.pub.Publish(ctx, m.channel, data).Err(); err != nil {
		return errors.Wrapf(err, "publish to %s", m.channel)
	}
	return nil
}

// Dropped returns how many events the rate limiter discarded.
func (m *RedisMirror) Dropped() uint64 {
	return m.dropped.Load()
}

// Close releases the Redis connection when the mirror owns one.
func (m *RedisMirror) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}
