package core

// gate.go serializes loads per file kind.
//
// Each kind owns a single-slot semaphore. A load acquires the slots of every
// kind it touches, in LoadOrder, so that load-all and a single-kind job
// cannot deadlock against each other. When a slot stays occupied for longer
// than maxWait the caller receives ErrLoadInProgress.

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultLockWait is how long Acquire waits for a busy kind before failing.
const DefaultLockWait = 5 * time.Second

// Gate allows at most one in-flight load per FileKind.
type Gate struct {
	slots   map[FileKind]chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active map[FileKind]bool
}

// NewGate creates a gate for the kinds in LoadOrder.
// Requests that cannot acquire every slot within maxWait receive ErrLoadInProgress.
func NewGate(maxWait time.Duration) *Gate {
	if maxWait <= 0 {
		maxWait = DefaultLockWait
	}

	g := &Gate{
		slots:   make(map[FileKind]chan struct{}, len(LoadOrder)),
		maxWait: maxWait,
		active:  make(map[FileKind]bool, len(LoadOrder)),
	}
	for _, k := range LoadOrder {
		g.slots[k] = make(chan struct{}, 1)
	}
	return g
}

// Acquire takes the slot of every kind. On failure, slots already taken are
// released before returning. The caller MUST call Release with the same kinds
// after a successful Acquire (use defer).
func (g *Gate) Acquire(ctx context.Context, kinds ...FileKind) error {
	ordered, err := g.order(kinds)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, g.maxWait)
	defer cancel()

	taken := make([]FileKind, 0, len(ordered))
	for _, k := range ordered {
		select {
		case g.slots[k] <- struct{}{}:
			g.mark(k, true)
			taken = append(taken, k)

		case <-waitCtx.Done():
			g.Release(taken...)
			// Check if original context was cancelled vs timeout
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s", ErrLoadInProgress, k)
		}
	}
	return nil
}

// TryAcquire takes every slot without blocking. It returns false, holding
// nothing, if any kind is busy.
func (g *Gate) TryAcquire(kinds ...FileKind) bool {
	ordered, err := g.order(kinds)
	if err != nil {
		return false
	}

	taken := make([]FileKind, 0, len(ordered))
	for _, k := range ordered {
		select {
		case g.slots[k] <- struct{}{}:
			g.mark(k, true)
			taken = append(taken, k)
		default:
			g.Release(taken...)
			return false
		}
	}
	return true
}

// Release frees previously acquired slots.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (g *Gate) Release(kinds ...FileKind) {
	for _, k := range kinds {
		slot, ok := g.slots[k]
		if !ok {
			continue
		}
		g.mark(k, false)
		<-slot
	}
}

// Busy reports whether a load of kind is in flight.
func (g *Gate) Busy(kind FileKind) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active[kind]
}

// WaitForDrain blocks until no load is in flight or ctx is cancelled.
// Used for graceful shutdown so running loads commit before termination.
func (g *Gate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if g.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GateStatus is a snapshot of in-flight kinds.
type GateStatus struct {
	Active []FileKind `json:"active"`
}

// Status returns the current gate state for monitoring.
func (g *Gate) Status() GateStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := GateStatus{Active: []FileKind{}}
	for _, k := range LoadOrder {
		if g.active[k] {
			st.Active = append(st.Active, k)
		}
	}
	return st
}

func (g *Gate) idle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, busy := range g.active {
		if busy {
			return false
		}
	}
	return true
}

func (g *Gate) mark(k FileKind, busy bool) {
	g.mu.Lock()
	g.active[k] = busy
	g.mu.Unlock()
}

// order deduplicates kinds and sorts them into LoadOrder.
func (g *Gate) order(kinds []FileKind) ([]FileKind, error) {
	out := make([]FileKind, 0, len(kinds))
	for _, k := range LoadOrder {
		if slices.Contains(kinds, k) {
			out = append(out, k)
		}
	}
	for _, k := range kinds {
		if _, ok := g.slots[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFileKind, k)
		}
	}
	return out, nil
}
