package workflow

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/groundcheck/groundcheck/internal/history"
)

// invokeFunc adapts a closure into an Invoker for tests.
type invokeFunc func(ctx context.Context, agentID, input string) (json.RawMessage, error)

func (f invokeFunc) Invoke(ctx context.Context, agentID, input string) (json.RawMessage, error) {
	return f(ctx, agentID, input)
}

type fakeClipboard struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (c *fakeClipboard) Copy(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return false
	}
	c.texts = append(c.texts, text)
	return true
}

func (c *fakeClipboard) copies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.texts))
	copy(out, c.texts)
	return out
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []history.Run
}

func (r *fakeRecorder) Record(run history.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

func (r *fakeRecorder) recorded() []history.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]history.Run, len(r.runs))
	copy(out, r.runs)
	return out
}
