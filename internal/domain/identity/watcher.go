// internal/domain/identity/watcher.go
package identity

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Limits applied by NewWatcher. The idle window matches the session cookie's
// lifetime.
const (
	DefaultWatchedSessions = 100_000
	DefaultWatchIdle       = 30 * 24 * time.Hour
)

// Event is emitted whenever a session's identity changes. Identity is nil
// once the session signs out.
type Event struct {
	SessionID string
	Identity  *Identity
}

// Listener receives identity events
type Listener func(Event)

// Watcher holds the latest identity per browser session and tells
// subscribers when it changes. Listeners run synchronously, in the order
// they subscribed.
//
// Only signed-in sessions are tracked. Guests are the default and are never
// stored, and tracked sessions are dropped once idle or when the table is
// full, least recently seen first. A dropped session that shows up again
// signed in is reported as a fresh sign-in.
type Watcher struct {
	mu        sync.Mutex
	sessions  *expirable.LRU[string, Identity]
	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewWatcher creates an empty watcher with the default limits
func NewWatcher() *Watcher {
	return NewBoundedWatcher(DefaultWatchedSessions, DefaultWatchIdle)
}

// NewBoundedWatcher creates an empty watcher tracking at most size sessions,
// each forgotten after idle without a request
func NewBoundedWatcher(size int, idle time.Duration) *Watcher {
	return &Watcher{
		sessions:  expirable.NewLRU[string, Identity](size, nil, idle),
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn and returns a function that removes it
func (w *Watcher) Subscribe(fn Listener) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn
	w.order = append(w.order, id)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
		for i, v := range w.order {
			if v == id {
				w.order = append(w.order[:i], w.order[i+1:]...)
				break
			}
		}
	}
}

// Resolve records the identity seen for a session. Subscribers hear about
// sign-ins, sign-outs and user switches, never about repeats or about a
// guest that was never signed in.
func (w *Watcher) Resolve(sessionID string, ident *Identity) {
	if sessionID == "" {
		return
	}

	w.mu.Lock()
	prev, tracked := w.sessions.Get(sessionID)
	switch {
	case ident == nil && !tracked:
		w.mu.Unlock()
		return
	case ident == nil:
		w.sessions.Remove(sessionID)
	case tracked && prev.UID == ident.UID:
		// Refresh the idle deadline.
		w.sessions.Add(sessionID, prev)
		w.mu.Unlock()
		return
	default:
		w.sessions.Add(sessionID, *ident)
	}
	listeners := w.snapshot()
	w.mu.Unlock()

	ev := Event{SessionID: sessionID, Identity: ident}
	for _, fn := range listeners {
		fn(ev)
	}
}

// Current returns the latest identity for a session, nil when signed out
func (w *Watcher) Current(sessionID string) *Identity {
	ident, ok := w.sessions.Peek(sessionID)
	if !ok {
		return nil
	}
	return &ident
}

// Forget drops a session entirely without emitting an event
func (w *Watcher) Forget(sessionID string) {
	w.sessions.Remove(sessionID)
}

// Len is the number of tracked sessions
func (w *Watcher) Len() int {
	return w.sessions.Len()
}

func (w *Watcher) snapshot() []Listener {
	out := make([]Listener, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.listeners[id])
	}
	return out
}
