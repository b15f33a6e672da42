package app

import (
	"sync"

	"github.com/vaibha-v7/SIH/internal/domain"
)

// ProgressFeed fans accepted-attempt events out to in-process subscribers
// (the teacher websocket endpoint). Slow subscribers drop their oldest
// pending event instead of blocking publishers.
type ProgressFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.AttemptEvent]struct{}
}

func NewProgressFeed() *ProgressFeed {
	return &ProgressFeed{
		subscribers: make(map[chan domain.AttemptEvent]struct{}),
	}
}

// Subscribe returns a channel of attempt events. The caller must invoke the
// returned cancel function to avoid leaks.
func (f *ProgressFeed) Subscribe() (<-chan domain.AttemptEvent, func()) {
	ch := make(chan domain.AttemptEvent, 16)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber.
func (f *ProgressFeed) Publish(event domain.AttemptEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
