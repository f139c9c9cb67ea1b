package actions

import "sync"

// Kind scopes in-flight flags per action family so a running download never
// blocks a cancellation of the same row.
type Kind string

const (
	KindDownload Kind = "download"
	KindCancel   Kind = "cancel"
)

// inflight tracks which batch/note identities have an operation running.
// Flags are keyed, so unrelated rows never contend, and every acquisition is
// paired with a deferred release: a flag can never outlive its operation.
type inflight struct {
	mu  sync.Mutex
	ops map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{ops: make(map[string]struct{})}
}

func (f *inflight) tryAcquire(kind Kind, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := string(kind) + ":" + key
	if _, running := f.ops[k]; running {
		return false
	}

	f.ops[k] = struct{}{}

	return true
}

func (f *inflight) release(kind Kind, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.ops, string(kind)+":"+key)
}

func (f *inflight) running(kind Kind, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, running := f.ops[string(kind)+":"+key]

	return running
}
