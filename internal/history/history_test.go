package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWriterRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil)

	base := time.Now().Add(-time.Minute).Truncate(time.Second)
	w.Record(Run{
		Workflow:  WorkflowGeneration,
		Input:     "what is the encryption policy?",
		Outcome:   "success",
		Duration:  1200 * time.Millisecond,
		StartedAt: base,
	})
	w.Record(Run{
		Workflow:  WorkflowAudit,
		Input:     "draft text",
		Outcome:   "completed",
		Detail:    "score=72.5",
		Duration:  800 * time.Millisecond,
		StartedAt: base.Add(10 * time.Second),
	})
	w.Record(Run{
		Workflow:  WorkflowVaultSave,
		Input:     "vault content",
		Outcome:   "saved",
		Duration:  2 * time.Second,
		StartedAt: base.Add(20 * time.Second),
	})

	w.Close() // flushes pending writes

	runs, err := NewStore(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first
	assert.Equal(t, WorkflowVaultSave, runs[0].Workflow)
	assert.Equal(t, WorkflowAudit, runs[1].Workflow)
	assert.Equal(t, WorkflowGeneration, runs[2].Workflow)

	assert.NotEmpty(t, runs[0].ID) // UUID assigned on record
	assert.Equal(t, "score=72.5", runs[1].Detail)
	assert.Equal(t, 800*time.Millisecond, runs[1].Duration)
	assert.Equal(t, base.Unix(), runs[2].StartedAt.Unix())
}

func TestWriterNilDBDisablesRecording(t *testing.T) {
	w := NewWriter(nil, nil)
	require.Nil(t, w)

	// Nil writer methods must be safe; controllers call them unconditionally.
	w.Record(Run{Workflow: WorkflowGeneration})
	w.Close()
}

func TestWriterRecordAfterClose(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil)
	w.Close()

	w.Record(Run{Workflow: WorkflowAudit, Outcome: "completed"})
	w.Close() // second close is a no-op

	count, err := NewStore(db).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecentLimit(t *testing.T) {
	db := openTestDB(t)
	w := NewWriter(db, nil)

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		w.Record(Run{
			Workflow:  WorkflowGeneration,
			Input:     "q",
			Outcome:   "success",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	w.Close()

	runs, err := NewStore(db).Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Non-positive limit falls back to the default
	runs, err = NewStore(db).Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestRecentEmptyLedger(t *testing.T) {
	db := openTestDB(t)
	runs, err := NewStore(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an already-migrated database must not fail.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}
