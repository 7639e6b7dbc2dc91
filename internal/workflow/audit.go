package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/history"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
	"github.com/groundcheck/groundcheck/internal/validate"
)

// AuditOptions configures an Audit controller.
type AuditOptions struct {
	AgentID  string
	Log      *zap.Logger
	Recorder history.Recorder
}

// Audit drives the compliance-audit workflow. Unlike generation, an audit
// that the auditor cannot deliver fails outright: the result is diagnostic
// and a fabricated score would be worse than none.
type Audit struct {
	inv     Invoker
	agentID string
	log     *zap.Logger
	rec     history.Recorder

	tracker *lifecycle.Tracker[agent.AuditResult]
}

// NewAudit creates an audit controller bound to one auditor agent ID.
func NewAudit(inv Invoker, opts AuditOptions) *Audit {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Audit{
		inv:     inv,
		agentID: opts.AgentID,
		log:     opts.Log,
		rec:     opts.Recorder,
		tracker: lifecycle.NewTracker[agent.AuditResult](),
	}
}

// Submit sends the draft to the auditor agent and blocks until the outcome
// is recorded. The returned error covers submission problems only (empty
// draft, request already in flight); an audit that ran and failed is
// reported through State.
func (a *Audit) Submit(ctx context.Context, draft string) error {
	if strings.TrimSpace(draft) == "" {
		return ErrEmptyInput
	}
	if err := a.tracker.Begin(); err != nil {
		return ErrBusy
	}

	start := time.Now()
	raw, callErr := a.inv.Invoke(ctx, a.agentID, draft)
	result, err := validate.Audit(raw, callErr, a.log)
	if err != nil {
		a.tracker.Fail(err.Error())
		a.log.Warn("audit failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		a.record(draft, "failed", err.Error(), start)
		return nil
	}

	a.tracker.Complete(result)
	a.log.Info("audit resolved",
		zap.Float64("score", result.ComplianceScore),
		zap.Int("sentences", len(result.Analysis)),
		zap.Duration("duration", time.Since(start)),
	)
	a.record(draft, "completed", fmt.Sprintf("score=%.1f", result.ComplianceScore), start)
	return nil
}

// State returns the current lifecycle snapshot for rendering.
func (a *Audit) State() lifecycle.Snapshot[agent.AuditResult] {
	return a.tracker.Snapshot()
}

// Reset discards the current outcome.
func (a *Audit) Reset() {
	a.tracker.Reset()
}

func (a *Audit) record(input, outcome, detail string, start time.Time) {
	if a.rec == nil {
		return
	}
	a.rec.Record(history.Run{
		Workflow:  history.WorkflowAudit,
		Input:     input,
		Outcome:   outcome,
		Detail:    detail,
		Duration:  time.Since(start),
		StartedAt: start,
	})
}
