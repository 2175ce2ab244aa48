// Package nav carries navigation signals between screens. Workflows that
// refresh when their host screen regains focus subscribe here and must
// release the subscription at teardown.
package nav

import "sync"

// Route identifies a screen.
type Route string

const (
	RouteHome          Route = "/home"
	RouteQuestionnaire Route = "/questionario"
	RouteSignIn        Route = "/signin"
	RouteProfileEdit   Route = "/settings/profile/edit"
)

// Bus fans navigation events out to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Route]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Route]struct{})}
}

// Publish delivers the route to every subscriber. Slow subscribers lose the
// oldest pending signal rather than blocking the publisher.
func (b *Bus) Publish(route Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- route:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- route
		}
	}
}

// Subscribe returns a channel of navigation events and its cancel function.
// The caller must invoke cancel to avoid leaks and to stop signals from
// reaching a disposed workflow.
func (b *Bus) Subscribe() (<-chan Route, func()) {
	ch := make(chan Route, 4)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
