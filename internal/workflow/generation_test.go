package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/history"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
	"github.com/groundcheck/groundcheck/internal/validate"
)

func TestGenerationSubmitSuccess(t *testing.T) {
	var gotAgentID, gotInput string
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		gotAgentID = agentID
		gotInput = input
		return json.RawMessage(`{
			"answer": "Data is encrypted at rest.",
			"status": "success",
			"citations": [{"source_text": "AES-256 at rest", "relevance": "encryption"}]
		}`), nil
	})
	rec := &fakeRecorder{}
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1", Recorder: rec})

	err := gen.Submit(context.Background(), "How is data stored?")
	require.NoError(t, err)

	assert.Equal(t, "gen-1", gotAgentID)
	assert.Equal(t, "How is data stored?", gotInput)

	snap := gen.State()
	assert.Equal(t, lifecycle.StateCompleted, snap.State)
	assert.Equal(t, agent.StatusSuccess, snap.Value.Status)
	assert.Equal(t, "Data is encrypted at rest.", snap.Value.Answer)
	require.Len(t, snap.Value.Citations, 1)
	assert.Equal(t, "AES-256 at rest", snap.Value.Citations[0].SourceText)

	runs := rec.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, history.WorkflowGeneration, runs[0].Workflow)
	assert.Equal(t, "How is data stored?", runs[0].Input)
	assert.Equal(t, agent.StatusSuccess, runs[0].Outcome)
}

func TestGenerationSubmitEmptyInput(t *testing.T) {
	calls := 0
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		calls++
		return nil, nil
	})
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1"})

	assert.ErrorIs(t, gen.Submit(context.Background(), ""), ErrEmptyInput)
	assert.ErrorIs(t, gen.Submit(context.Background(), "   \n\t"), ErrEmptyInput)
	assert.Equal(t, 0, calls) // rejected before any agent call
	assert.Equal(t, lifecycle.StateIdle, gen.State().State)
}

func TestGenerationSubmitWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		close(started)
		<-release
		return json.RawMessage(`{"answer": "ok", "status": "success"}`), nil
	})
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1"})

	done := make(chan error, 1)
	go func() {
		done <- gen.Submit(context.Background(), "first")
	}()
	<-started

	assert.ErrorIs(t, gen.Submit(context.Background(), "second"), ErrBusy)
	assert.Equal(t, lifecycle.StateInFlight, gen.State().State)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, lifecycle.StateCompleted, gen.State().State)
}

func TestGenerationNeverFails(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return nil, errors.New("connection refused")
	})
	rec := &fakeRecorder{}
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1", Recorder: rec})

	require.NoError(t, gen.Submit(context.Background(), "anything"))

	snap := gen.State()
	assert.Equal(t, lifecycle.StateCompleted, snap.State) // degraded, not failed
	assert.Equal(t, agent.StatusMissingInfo, snap.Value.Status)
	assert.Equal(t, validate.DefaultGenerationWarning, snap.Value.Warning)
	assert.Empty(t, snap.Value.Answer)

	runs := rec.recorded()
	require.Len(t, runs, 1)
	assert.Equal(t, agent.StatusMissingInfo, runs[0].Outcome)
}

func TestGenerationResubmissionReplacesOutcome(t *testing.T) {
	answers := []string{
		`{"answer": "first answer", "status": "success"}`,
		`{"answer": "second answer", "status": "success"}`,
	}
	call := 0
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		raw := json.RawMessage(answers[call])
		call++
		return raw, nil
	})
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1"})

	require.NoError(t, gen.Submit(context.Background(), "q1"))
	require.NoError(t, gen.Submit(context.Background(), "q2"))

	snap := gen.State()
	assert.Equal(t, lifecycle.StateCompleted, snap.State)
	assert.Equal(t, "second answer", snap.Value.Answer)
}

func TestGenerationCopyAnswer(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"answer": "copy me", "status": "success"}`), nil
	})
	clip := &fakeClipboard{}
	gen := NewGeneration(inv, GenerationOptions{
		AgentID:    "gen-1",
		Clipboard:  clip,
		CopyAckTTL: 50 * time.Millisecond,
	})
	require.NoError(t, gen.Submit(context.Background(), "q"))

	assert.True(t, gen.CopyAnswer())
	assert.Equal(t, []string{"copy me"}, clip.copies())
	assert.True(t, gen.Copied())

	// The acknowledgement clears on its own after the TTL.
	require.Eventually(t, func() bool { return !gen.Copied() },
		time.Second, 10*time.Millisecond)
}

func TestGenerationCopyGuards(t *testing.T) {
	successEnvelope := json.RawMessage(`{"answer": "fine", "status": "success"}`)

	t.Run("idle state", func(t *testing.T) {
		inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
			return successEnvelope, nil
		})
		gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1", Clipboard: &fakeClipboard{}})
		assert.False(t, gen.CopyAnswer())
	})

	t.Run("missing_info outcome", func(t *testing.T) {
		inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
			return nil, errors.New("down")
		})
		clip := &fakeClipboard{}
		gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1", Clipboard: clip})
		require.NoError(t, gen.Submit(context.Background(), "q"))
		assert.False(t, gen.CopyAnswer())
		assert.Empty(t, clip.copies())
	})

	t.Run("clipboard rejects", func(t *testing.T) {
		inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
			return successEnvelope, nil
		})
		gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1", Clipboard: &fakeClipboard{fail: true}})
		require.NoError(t, gen.Submit(context.Background(), "q"))
		assert.False(t, gen.CopyAnswer())
		assert.False(t, gen.Copied())
	})

	t.Run("no clipboard wired", func(t *testing.T) {
		inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
			return successEnvelope, nil
		})
		gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1"})
		require.NoError(t, gen.Submit(context.Background(), "q"))
		assert.False(t, gen.CopyAnswer())
	})
}

func TestGenerationCopyAckClearedOnResubmit(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"answer": "a", "status": "success"}`), nil
	})
	gen := NewGeneration(inv, GenerationOptions{
		AgentID:    "gen-1",
		Clipboard:  &fakeClipboard{},
		CopyAckTTL: time.Minute,
	})

	require.NoError(t, gen.Submit(context.Background(), "q1"))
	require.True(t, gen.CopyAnswer())
	require.True(t, gen.Copied())

	require.NoError(t, gen.Submit(context.Background(), "q2"))
	assert.False(t, gen.Copied()) // the ack belonged to the old answer
}

func TestGenerationStaleAckTimerIgnored(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"answer": "a", "status": "success"}`), nil
	})
	gen := NewGeneration(inv, GenerationOptions{
		AgentID:    "gen-1",
		Clipboard:  &fakeClipboard{},
		CopyAckTTL: 100 * time.Millisecond,
	})

	require.NoError(t, gen.Submit(context.Background(), "q1"))
	require.True(t, gen.CopyAnswer())

	// A second copy before the first TTL elapses arms a fresh timer; the
	// first timer firing must not clear the newer acknowledgement.
	time.Sleep(60 * time.Millisecond)
	require.True(t, gen.CopyAnswer())
	time.Sleep(60 * time.Millisecond) // first timer has fired by now
	assert.True(t, gen.Copied())

	require.Eventually(t, func() bool { return !gen.Copied() },
		time.Second, 10*time.Millisecond)
}

func TestGenerationReset(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"answer": "a", "status": "success"}`), nil
	})
	gen := NewGeneration(inv, GenerationOptions{
		AgentID:    "gen-1",
		Clipboard:  &fakeClipboard{},
		CopyAckTTL: time.Minute,
	})
	require.NoError(t, gen.Submit(context.Background(), "q"))
	require.True(t, gen.CopyAnswer())

	gen.Reset()
	assert.Equal(t, lifecycle.StateIdle, gen.State().State)
	assert.False(t, gen.Copied())
}

func TestGenerationNilRecorder(t *testing.T) {
	inv := invokeFunc(func(ctx context.Context, agentID, input string) (json.RawMessage, error) {
		return json.RawMessage(`{"answer": "a", "status": "success"}`), nil
	})
	gen := NewGeneration(inv, GenerationOptions{AgentID: "gen-1"})

	require.NoError(t, gen.Submit(context.Background(), "q"))
	assert.Equal(t, lifecycle.StateCompleted, gen.State().State)
}
