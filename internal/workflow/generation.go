package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/history"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
	"github.com/groundcheck/groundcheck/internal/validate"
)

const defaultCopyAckTTL = 2 * time.Second

// Clipboard abstracts the system clipboard so the controller is testable
// without one. Copy reports whether the text made it onto the clipboard.
type Clipboard interface {
	Copy(text string) bool
}

// GenerationOptions configures a Generation controller.
type GenerationOptions struct {
	AgentID    string
	Log        *zap.Logger
	Recorder   history.Recorder
	Clipboard  Clipboard
	CopyAckTTL time.Duration
}

// Generation drives the grounded-answer workflow. A failed agent call never
// surfaces as a failed request: it degrades to a missing_info result with a
// warning, so the tracker only ever idles, runs, or completes.
type Generation struct {
	inv        Invoker
	agentID    string
	log        *zap.Logger
	rec        history.Recorder
	clipboard  Clipboard
	copyAckTTL time.Duration

	tracker *lifecycle.Tracker[agent.GenerationResult]

	mu      sync.Mutex
	copied  bool
	copyGen int
}

// NewGeneration creates a generation controller bound to one generator
// agent ID.
func NewGeneration(inv Invoker, opts GenerationOptions) *Generation {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.CopyAckTTL <= 0 {
		opts.CopyAckTTL = defaultCopyAckTTL
	}
	return &Generation{
		inv:        inv,
		agentID:    opts.AgentID,
		log:        opts.Log,
		rec:        opts.Recorder,
		clipboard:  opts.Clipboard,
		copyAckTTL: opts.CopyAckTTL,
		tracker:    lifecycle.NewTracker[agent.GenerationResult](),
	}
}

// Submit sends the question to the generator agent and blocks until the
// outcome is recorded. Empty questions and concurrent submissions are
// rejected without an agent call; everything else completes, possibly as
// missing_info.
func (g *Generation) Submit(ctx context.Context, question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyInput
	}
	if err := g.tracker.Begin(); err != nil {
		return ErrBusy
	}

	g.clearCopyAck()

	start := time.Now()
	raw, callErr := g.inv.Invoke(ctx, g.agentID, question)
	result := validate.Generation(raw, callErr, g.log)
	g.tracker.Complete(result)

	g.log.Info("generation resolved",
		zap.String("outcome", result.Status),
		zap.Int("citations", len(result.Citations)),
		zap.Duration("duration", time.Since(start)),
	)
	if g.rec != nil {
		g.rec.Record(history.Run{
			Workflow:  history.WorkflowGeneration,
			Input:     question,
			Outcome:   result.Status,
			Detail:    result.Warning,
			Duration:  time.Since(start),
			StartedAt: start,
		})
	}

	return nil
}

// State returns the current lifecycle snapshot for rendering.
func (g *Generation) State() lifecycle.Snapshot[agent.GenerationResult] {
	return g.tracker.Snapshot()
}

// Reset discards the current outcome and clears any copy acknowledgement.
func (g *Generation) Reset() {
	g.tracker.Reset()
	g.clearCopyAck()
}

// CopyAnswer copies a completed success answer to the clipboard. It reports
// false when there is no copyable answer or the clipboard rejects the text;
// a successful copy is acknowledged and the acknowledgement clears on its
// own after the configured TTL.
func (g *Generation) CopyAnswer() bool {
	if g.clipboard == nil {
		return false
	}

	snap := g.tracker.Snapshot()
	if snap.State != lifecycle.StateCompleted ||
		snap.Value.Status != agent.StatusSuccess ||
		snap.Value.Answer == "" {
		return false
	}

	// Copy failures stay silent; the acknowledgement simply never shows.
	if !g.clipboard.Copy(snap.Value.Answer) {
		return false
	}

	g.mu.Lock()
	g.copied = true
	g.copyGen++
	ackGen := g.copyGen
	g.mu.Unlock()

	time.AfterFunc(g.copyAckTTL, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		// A newer copy or submission owns the flag now.
		if g.copyGen == ackGen {
			g.copied = false
		}
	})

	return true
}

// Copied reports whether a recent copy is still acknowledged.
func (g *Generation) Copied() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.copied
}

func (g *Generation) clearCopyAck() {
	g.mu.Lock()
	g.copied = false
	g.copyGen++
	g.mu.Unlock()
}
