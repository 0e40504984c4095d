package collector

import "sync/atomic"

// ReuseLock guards the snapshot reuse directory. Only the collection holding
// it may rename and keep snapshots there; others use fresh temp files.
type ReuseLock struct {
	state atomic.Int32 // 0 = free, 1 = held
}

// TryAcquire takes the lock without blocking and reports whether it succeeded
func (l *ReuseLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release frees the lock. Only the holder may call it.
func (l *ReuseLock) Release() {
	l.state.Store(0)
}
