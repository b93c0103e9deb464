// Package broker provides an in-memory pub/sub hub used to notify SSE
// connections when the public review feed changes.
package broker

import "sync"

// Broker fans a change signal out to every subscriber. Channels are buffered
// to 1 so rapid successive publishes coalesce into a single notification.
type Broker struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// New creates a ready-to-use Broker.
func New() *Broker {
	return &Broker{
		subs: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a buffered(1) channel that receives a signal each time
// Publish is called.
func (b *Broker) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a channel from the subscriber set.
func (b *Broker) Unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, ch)
}

// Publish sends a non-blocking signal to every subscriber. Because channels
// are buffered to 1, a pending unread signal is not duplicated.
func (b *Broker) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
