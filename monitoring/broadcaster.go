package monitoring

import (
	"sync"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
)

// A Broadcaster fans simulation state out to the connected dashboard
// clients. State is pushed on a fixed heartbeat and right after any engine
// mutation; bursts of mutations coalesce into a single pending kick.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan StateDTO]struct{}
	kick    chan struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan StateDTO]struct{}),
		kick:    make(chan struct{}, 1),
	}
}

// Func implements paging.Hook. Hooks run under the simulation lock, so it
// only marks state dirty and never blocks.
func (b *Broadcaster) Func(_ paging.HookCtx) {
	b.Notify()
}

// Notify requests a state push without an engine event behind it.
func (b *Broadcaster) Notify() {
	select {
	case b.kick <- struct{}{}:
	default:
	}
}

// Subscribe registers a new client and returns its delivery channel.
func (b *Broadcaster) Subscribe() chan StateDTO {
	ch := make(chan StateDTO, 4)

	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan StateDTO) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[ch]; !ok {
		return
	}

	delete(b.clients, ch)
	close(ch)
}

// publish delivers one state to every client. Slow clients drop updates
// instead of stalling the loop; the next heartbeat catches them up.
func (b *Broadcaster) publish(state StateDTO) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.clients {
		select {
		case ch <- state:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clients)
}
