package search

import "sync/atomic"

// Latch is a countdown barrier that runs its completion action exactly once,
// when the count reaches zero. Signals past zero are ignored.
type Latch struct {
	remaining  atomic.Int64
	onComplete func()
}

// NewLatch returns a latch expecting count signals. A non-positive count
// completes immediately.
func NewLatch(count int, onComplete func()) *Latch {
	l := &Latch{onComplete: onComplete}
	if count <= 0 {
		l.fire()
		return l
	}

	l.remaining.Store(int64(count))
	return l
}

// Done records one completion.
func (l *Latch) Done() {
	if l.remaining.Add(-1) == 0 {
		l.fire()
	}
}

// Remaining reports how many signals are still outstanding.
func (l *Latch) Remaining() int {
	if n := l.remaining.Load(); n > 0 {
		return int(n)
	}
	return 0
}

func (l *Latch) fire() {
	if l.onComplete != nil {
		l.onComplete()
	}
}
