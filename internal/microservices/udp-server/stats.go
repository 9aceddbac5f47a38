package udp

import (
	"sync/atomic"
	"time"
)

// Stats counts loop outcomes. Safe to read from other goroutines.
type Stats struct {
	received      atomic.Uint64
	acknowledged  atomic.Uint64
	decodeErrors  atomic.Uint64
	sendErrors    atomic.Uint64
	mirrorDropped atomic.Uint64
	lastDatagram  atomic.Int64 // unix nanos, 0 = never
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Received      uint64     `json:"received"`
	Acknowledged  uint64     `json:"acknowledged"`
	DecodeErrors  uint64     `json:"decode_errors"`
	SendErrors    uint64     `json:"send_errors"`
	MirrorDropped uint64     `json:"mirror_dropped"`
	LastDatagram  *time.Time `json:"last_datagram,omitempty"`
}

func (s *Stats) markReceived(at time.Time) {
	s.received.Add(1)
	s.lastDatagram.Store(at.UnixNano())
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Received:      s.received.Load(),
		Acknowledged:  s.acknowledged.Load(),
		DecodeErrors:  s.decodeErrors.Load(),
		SendErrors:    s.sendErrors.Load(),
		MirrorDropped: s.mirrorDropped.Load(),
	}
	if ns := s.lastDatagram.Load(); ns != 0 {
		t := time.Unix(0, ns)
		snap.LastDatagram = &t
	}
	return snap
}
