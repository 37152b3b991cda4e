// Package notifier fans out workbook swap signals to SSE subscribers.
package notifier

import "sync"

// Notifier broadcasts the generation of each newly published snapshot to
// all subscribed listeners. Listeners only ever need the latest generation,
// so a slow listener sees intermediate generations coalesced.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan uint64]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel receiving snapshot generations.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan uint64 {
	ch := make(chan uint64, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan uint64) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends generation to all listeners without blocking. A pending,
// unread generation is replaced by the newer one.
func (n *Notifier) Broadcast(generation uint64) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- generation:
			continue
		default:
		}
		// Drop the stale pending value, then retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- generation:
		default:
		}
	}
}
