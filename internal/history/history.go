// Package history keeps a local ledger of resolved submissions. Writes are
// asynchronous so a slow disk never blocks a workflow; the ledger is
// diagnostic, losing a record is acceptable, blocking is not.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workflow names recorded in the ledger.
const (
	WorkflowGeneration = "generation"
	WorkflowAudit      = "audit"
	WorkflowVaultSave  = "vault_save"
)

// Run is one resolved submission.
type Run struct {
	ID        string
	Workflow  string
	Input     string
	Outcome   string
	Detail    string
	Duration  time.Duration
	StartedAt time.Time
}

// Recorder receives resolved runs. Controllers treat a nil Recorder as
// recording disabled.
type Recorder interface {
	Record(run Run)
}

const writerBufferSize = 64

// Writer handles async writing of runs to the database.
type Writer struct {
	db        *sql.DB
	log       *zap.Logger
	runs      chan Run
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewWriter creates a new async run writer. Pass nil for db to disable
// recording.
func NewWriter(db *sql.DB, log *zap.Logger) *Writer {
	if db == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &Writer{
		db:   db,
		log:  log,
		runs: make(chan Run, writerBufferSize),
		done: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writeLoop()

	return w
}

// Record queues a run for async writing. Non-blocking; drops if the buffer
// is full. A run without an ID gets a fresh UUID.
func (w *Writer) Record(run Run) {
	if w == nil || w.closed.Load() {
		return
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	select {
	case w.runs <- run:
	default:
		w.log.Debug("history buffer full, dropping run",
			zap.String("workflow", run.Workflow),
			zap.String("outcome", run.Outcome),
		)
	}
}

// Close gracefully shuts down the writer, flushing pending runs.
func (w *Writer) Close() {
	if w == nil {
		return
	}

	w.closeOnce.Do(func() {
		w.closed.Store(true)
		close(w.done)
	})
	w.wg.Wait()
}

// writeLoop runs in a background goroutine, writing runs to the database.
func (w *Writer) writeLoop() {
	defer w.wg.Done()

	for {
		select {
		case run := <-w.runs:
			w.writeRun(run)
		case <-w.done:
			// Drain any remaining runs
			for {
				select {
				case run := <-w.runs:
					w.writeRun(run)
				default:
					return
				}
			}
		}
	}
}

// writeRun performs the actual database insert. Failures are logged, never
// surfaced.
func (w *Writer) writeRun(run Run) {
	_, err := w.db.Exec(`
		INSERT INTO runs (id, workflow, input, outcome, detail, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Workflow,
		run.Input,
		run.Outcome,
		run.Detail,
		run.Duration.Milliseconds(),
		run.StartedAt.Unix(),
	)

	if err != nil {
		w.log.Error("failed to write run",
			zap.Error(err),
			zap.String("workflow", run.Workflow),
		)
	}
}

// Store is the read side of the ledger.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an open history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Recent retrieves the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workflow, input, outcome, detail, duration_ms, started_at
		FROM runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var detail sql.NullString
		var durationMs, startedAt int64

		if err := rows.Scan(&r.ID, &r.Workflow, &r.Input, &r.Outcome, &detail, &durationMs, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if detail.Valid {
			r.Detail = detail.String
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.StartedAt = time.Unix(startedAt, 0)

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Count returns the total number of recorded runs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
