package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundcheck/groundcheck/internal/history"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
)

func TestAuditSubmitSuccess(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		assert.Equal(t, "aud-1", agentID)
		return json.RawMessage(`{
			"compliance_score": 72.5,
			"total_sentences": 2,
			"analysis": [
				{"sentence": "We encrypt data.", "status": "VERIFIED", "risk_level": "safe", "explanation": "matches policy"},
				{"sentence": "Nothing can go wrong.", "status": "CONTRADICTION", "risk_level": "danger", "explanation": "absolute claim"}
			],
			"summary": "one risky claim"
		}`), nil
	})
	rec := &fakeRecorder{}
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1", Recorder: rec})

	require.NoError(t, aud.Submit(context.Background(), "We encrypt data. Nothing can go wrong."))

	snap := aud.State()
	assert.Equal(t, lifecycle.StateCompleted, snap.State)
	assert.Equal(t, 72.5, snap.Value.ComplianceScore)
	require.Len(t, snap.Value.Analysis, 2)
	assert.Equal(t, "CONTRADICTION", snap.Value.Analysis[1].Status)

	runs := rec.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, history.WorkflowAudit, runs[0].Workflow)
	assert.Equal(t, "completed", runs[0].Outcome)
	assert.Equal(t, "score=72.5", runs[0].Detail)
}

func TestAuditFailureIsDiagnostic(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return nil, errors.New("auditor offline")
	})
	rec := &fakeRecorder{}
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1", Recorder: rec})

	// Submit itself succeeds; the failed outcome lives in the state.
	require.NoError(t, aud.Submit(context.Background(), "draft text"))

	snap := aud.State()
	assert.Equal(t, lifecycle.StateFailed, snap.State)
	assert.Contains(t, snap.Reason, "auditor offline")

	runs := rec.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Outcome)
	assert.Contains(t, runs[0].Detail, "auditor offline")
}

func TestAuditMalformedPayloadFails(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"compliance_score": "high"}`), nil
	})
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1"})

	require.NoError(t, aud.Submit(context.Background(), "draft"))

	snap := aud.State()
	assert.Equal(t, lifecycle.StateFailed, snap.State)
	assert.Contains(t, snap.Reason, "failed to decode audit payload")
}

func TestAuditSubmitEmptyInput(t *testing.T) {
	calls := 0
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		calls++
		return nil, nil
	})
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1"})

	assert.ErrorIs(t, aud.Submit(context.Background(), ""), ErrEmptyInput)
	assert.ErrorIs(t, aud.Submit(context.Background(), "  "), ErrEmptyInput)
	assert.Equal(t, 0, calls)
	assert.Equal(t, lifecycle.StateIdle, aud.State().State)
}

func TestAuditSubmitWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		close(started)
		<-release
		return json.RawMessage(`{"compliance_score": 90, "total_sentences": 0, "analysis": []}`), nil
	})
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1"})

	done := make(chan error, 1)
	go func() {
		done <- aud.Submit(context.Background(), "first")
	}()
	<-started

	assert.ErrorIs(t, aud.Submit(context.Background(), "second"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, lifecycle.StateCompleted, aud.State().State)
}

func TestAuditResetAfterFailure(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return nil, errors.New("boom")
	})
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1"})

	require.NoError(t, aud.Submit(context.Background(), "draft"))
	require.Equal(t, lifecycle.StateFailed, aud.State().State)

	aud.Reset()
	snap := aud.State()
	assert.Equal(t, lifecycle.StateIdle, snap.State)
	assert.Empty(t, snap.Reason)
}

func TestAuditResubmitAfterFailure(t *testing.T) {
	call := 0
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		call++
		if call == 1 {
			return nil, errors.New("transient")
		}
		return json.RawMessage(`{"compliance_score": 85, "total_sentences": 1, "analysis": [{"sentence": "ok", "status": "VERIFIED", "risk_level": "safe", "explanation": ""}]}`), nil
	})
	aud := NewAudit(inv, AuditOptions{AgentID: "aud-1"})

	require.NoError(t, aud.Submit(context.Background(), "draft"))
	require.Equal(t, lifecycle.StateFailed, aud.State().State)

	require.NoError(t, aud.Submit(context.Background(), "draft"))
	snap := aud.State()
	assert.Equal(t, lifecycle.StateCompleted, snap.State)
	assert.Equal(t, 85.0, snap.Value.ComplianceScore)
	assert.Empty(t, snap.Reason)
}
