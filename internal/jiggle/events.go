package jiggle

import (
	"log"
	"sync/atomic"
	"time"
)

// EventKind identifies an engine notification.
type EventKind int

const (
	// EventStarted is sent when Start launches the loop.
	EventStarted EventKind = iota
	// EventStopped is sent when Stop ends the loop.
	EventStopped
	// EventCycle is sent after a successful jiggle cycle.
	EventCycle
	// EventCycleFailed is sent when injection failed during a cycle.
	EventCycleFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventCycle:
		return "cycle"
	case EventCycleFailed:
		return "cycle failed"
	default:
		return "unknown"
	}
}

// Event is an engine notification.
type Event struct {
	Kind   EventKind
	Time   time.Time
	Reason string
	Err    error
}

// notifier delivers events on a buffered channel without blocking the sender.
type notifier struct {
	ch      chan Event
	dropped int64
}

func newNotifier(size int) *notifier {
	return &notifier{ch: make(chan Event, size)}
}

func (n *notifier) send(ev Event) {
	select {
	case n.ch <- ev:
	default:
		if d := atomic.AddInt64(&n.dropped, 1); d == 1 || d%100 == 0 {
			log.Printf("jiggle: event channel full, dropped %d events", d)
		}
	}
}
