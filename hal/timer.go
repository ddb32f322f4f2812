package hal

import "sync"

// ManualTimer is a Timer whose overflows are raised by calling Fire.
//
// Fire on an already-pending flag is counted as coalesced and otherwise dropped.
type ManualTimer struct {
	mu        sync.Mutex
	pending   bool
	fired     uint64
	coalesced uint64
	ready     chan struct{}
}

func NewManualTimer() *ManualTimer {
	return &ManualTimer{ready: make(chan struct{}, 1)}
}

// Fire raises the overflow flag.
func (t *ManualTimer) Fire() {
	t.mu.Lock()
	t.fired++
	if t.pending {
		t.coalesced++
		t.mu.Unlock()
		return
	}
	t.pending = true
	t.mu.Unlock()

	select {
	case t.ready <- struct{}{}:
	default:
	}
}

func (t *ManualTimer) Overflowed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

func (t *ManualTimer) ClearOverflow() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
}

// Ready is signalled when the flag goes from clear to set.
func (t *ManualTimer) Ready() <-chan struct{} { return t.ready }

// Fired returns how many overflows were raised, including coalesced ones.
func (t *ManualTimer) Fired() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Coalesced returns how many overflows were lost to a still-pending flag.
func (t *ManualTimer) Coalesced() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.coalesced
}
