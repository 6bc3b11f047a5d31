// Package watch provides a single-slot change notification channel.
//
// A Notifier merges any number of change sources into one most-recent-wins
// signal: sends while a signal is already pending collapse into that pending
// signal. This bounds memory for arbitrarily fast producers and is what makes
// trailing-edge debouncing of the signal correct, not merely efficient.
package watch

import "sync"

// Notifier is a single-slot coalescing notification channel.
// The zero value is not usable; create one with NewNotifier.
type Notifier struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

// NewNotifier creates a new notifier with an empty slot.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify records that something changed. The call never blocks: if a signal
// is already pending, it is a no-op. Notify after Close is a no-op.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	select {
	case n.ch <- struct{}{}:
	default:
		// Slot occupied; the pending signal already covers this change.
	}
}

// C returns the receive channel. A receive consumes the pending signal.
// The channel is closed when the notifier is closed; receivers observe the
// closure after draining any pending signal.
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// TryRecv consumes a pending signal without blocking.
// It returns true only when a live signal was consumed.
func (n *Notifier) TryRecv() bool {
	select {
	case _, ok := <-n.ch:
		return ok
	default:
		return false
	}
}

// Close closes the notifier. It is safe to call Close multiple times and
// safe to call concurrently with Notify.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
}

// IsClosed reports whether the notifier has been closed.
func (n *Notifier) IsClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}
