package cadence

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrDuplicateID is returned when a registry context ID is already taken.
	ErrDuplicateID = errors.New("cadence: context id already registered")

	// ErrClosed is returned by operations on a closed registry.
	ErrClosed = errors.New("cadence: registry closed")
)

// Pair couples the two channels of opposite directions of one control
// (e.g. increase/decrease) and enforces mutual exclusion between them: at
// most one is pressed at any time, and pressing one force-stops the other
// first, synchronously.
type Pair struct {
	up   *Channel
	down *Channel
}

// NewPair creates two cross-linked channels sharing a single mutex. The
// shared mutex is what makes the preemption ordering guarantee structural:
// the partner's force-stop completes inside the same lock acquisition that
// admits the new press.
func NewPair(host Host, upAction, downAction string, opts ...Option) *Pair {
	o := buildOptions(opts)
	mu := &sync.Mutex{}
	up := newChannel(upAction, host, o, mu)
	down := newChannel(downAction, host, o, mu)
	up.pair = down
	down.pair = up
	return &Pair{up: up, down: down}
}

// Up returns the channel for the pair's first action.
func (p *Pair) Up() *Channel {
	return p.up
}

// Down returns the channel for the pair's second action.
func (p *Pair) Down() *Channel {
	return p.down
}

// Channels returns both channels, up first.
func (p *Pair) Channels() [2]*Channel {
	return [2]*Channel{p.up, p.down}
}

// Close closes both channels.
func (p *Pair) Close() {
	p.up.Close()
	p.down.Close()
}

// Registry owns channel pairs per host context (a window, a connection) and
// keeps their configuration registered with the settings store. Both
// channels of a created pair receive the store's current configuration
// immediately and every subsequent change.
type Registry struct {
	mu     sync.Mutex
	store  *Store
	opts   []Option
	pairs  map[string]*Pair
	closed bool
}

// NewRegistry creates a registry pushing configuration from store. The
// options apply to every pair it creates.
func NewRegistry(store *Store, opts ...Option) *Registry {
	return &Registry{
		store: store,
		opts:  opts,
		pairs: make(map[string]*Pair),
	}
}

// Create builds a pair for the context ID and registers both channels with
// the store. The ID must be unused. Per-call options apply after the
// registry-wide ones.
func (r *Registry) Create(id string, host Host, upAction, downAction string, opts ...Option) (*Pair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if _, ok := r.pairs[id]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	all := make([]Option, 0, len(r.opts)+len(opts))
	all = append(all, r.opts...)
	all = append(all, opts...)
	p := NewPair(host, upAction, downAction, all...)
	r.pairs[id] = p
	r.store.Register(p.up)
	r.store.Register(p.down)
	return p, nil
}

// Get returns the pair for the context ID.
func (r *Registry) Get(id string) (*Pair, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pairs[id]
	return p, ok
}

// Remove unregisters and closes the pair for the context ID, reporting
// whether one existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) bool {
	p, ok := r.pairs[id]
	if !ok {
		return false
	}
	delete(r.pairs, id)
	r.store.Unregister(p.up)
	r.store.Unregister(p.down)
	p.Close()
	return true
}

// RecentStops returns the forced-stop history of every owned channel.
func (r *Registry) RecentStops() []StopRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []StopRecord
	for _, p := range r.pairs {
		out = append(out, p.up.LastStops()...)
		out = append(out, p.down.LastStops()...)
	}
	return out
}

// Close removes every pair and refuses further Creates.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for id := range r.pairs {
		r.removeLocked(id)
	}
	r.closed = true
}
