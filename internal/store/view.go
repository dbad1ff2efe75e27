package store

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned when a response arrives after the view that asked for
// it was unmounted or remounted. The response has been discarded.
var ErrStale = errors.New("store: stale response discarded")

// View tracks whether the screen that owns some state is still mounted and
// whether it is loading. Each Mount or Unmount starts a new generation;
// tickets from older generations are dead.
type View struct {
	mu      sync.Mutex
	gen     uint64
	mounted bool
	pending int
}

// Mount starts a new generation.
func (v *View) Mount() {
	v.mu.Lock()
	v.gen++
	v.mounted = true
	v.pending = 0
	v.mu.Unlock()
}

// Unmount kills every outstanding ticket and clears the loading flag.
func (v *View) Unmount() {
	v.mu.Lock()
	v.gen++
	v.mounted = false
	v.pending = 0
	v.mu.Unlock()
}

// Loading reports whether a Load started in this generation is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending > 0
}

// Ticket captures the current generation.
func (v *View) Ticket() Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Ticket{v: v, gen: v.gen}
}

// Ticket identifies one generation of a View.
type Ticket struct {
	v   *View
	gen uint64
}

// Live reports whether the generation is still current and mounted.
func (t Ticket) Live() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	return t.liveLocked()
}

func (t Ticket) liveLocked() bool {
	return t.v.mounted && t.v.gen == t.gen
}

// Apply runs fn if the ticket is live, atomically with respect to Mount and
// Unmount. It returns ErrStale otherwise.
func (t Ticket) Apply(fn func()) error {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()
	if !t.liveLocked() {
		return ErrStale
	}
	fn()
	return nil
}

func (v *View) begin() Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending++
	return Ticket{v: v, gen: v.gen}
}

func (v *View) end(t Ticket) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.gen == v.gen && v.pending > 0 {
		v.pending--
	}
}

// Load runs fetch with the loading flag raised and hands the result to apply
// if the view is still live. The flag is lowered on every path. A fetch
// error is returned as is; a late answer returns ErrStale and is not applied.
func Load[T any](ctx context.Context, v *View, fetch func(context.Context) (T, error), apply func(T)) error {
	t := v.begin()
	defer v.end(t)

	res, err := fetch(ctx)
	if !t.Live() {
		return ErrStale
	}
	if err != nil {
		return err
	}
	return t.Apply(func() { apply(res) })
}
