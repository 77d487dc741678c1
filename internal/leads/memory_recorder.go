package leads

import (
	"context"
	"sync"
)

// MemoryRecorder keeps submissions in process memory. Used for local development
// (RECORD_BACKEND=memory) and tests.
type MemoryRecorder struct {
	mu   sync.RWMutex
	subs []Submission
	err  error
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// FailWith makes every subsequent Record return err (nil restores success).
func (r *MemoryRecorder) FailWith(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *MemoryRecorder) Record(ctx context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.subs = append(r.subs, sub)
	return nil
}

// Submissions returns a copy of everything recorded so far.
func (r *MemoryRecorder) Submissions() []Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Submission, len(r.subs))
	copy(out, r.subs)
	return out
}
