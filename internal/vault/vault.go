// Package vault holds the editable knowledge-vault buffer and its save
// lifecycle. Saving hands a snapshot of the buffer to an Indexer for
// re-indexing; the buffer itself stays editable throughout.
package vault

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/history"
)

//go:embed sample_policy.md
var samplePolicy string

var (
	ErrSaveInFlight = errors.New("a save is already in flight")
	ErrEmptyContent = errors.New("vault content is empty")
)

// SaveState tracks where the buffer is in its save lifecycle.
type SaveState int

const (
	SaveIdle SaveState = iota
	SaveSaving
	SaveSaved
	SaveRejected
)

func (s SaveState) String() string {
	switch s {
	case SaveIdle:
		return "idle"
	case SaveSaving:
		return "saving"
	case SaveSaved:
		return "saved"
	case SaveRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

const (
	emptyContentMessage = "Vault content is required before saving."
	savedMessage        = "Vault saved. Content is queued for re-indexing."
)

// SaveStatus is the renderable slice of the save lifecycle.
type SaveStatus struct {
	State   SaveState
	Message string
}

// Indexer accepts vault content for re-indexing. A returned error rejects
// the save with the error text as the status message.
type Indexer interface {
	Index(ctx context.Context, indexID, content string) error
}

// SimulatedIndexer stands in for the hosted re-indexing service: it waits
// Delay (honoring ctx) and accepts the content.
type SimulatedIndexer struct {
	Delay time.Duration
}

func (s SimulatedIndexer) Index(ctx context.Context, indexID, content string) error {
	if s.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const defaultStatusTTL = 5 * time.Second

// Options configures a Manager.
type Options struct {
	Indexer   Indexer
	IndexID   string
	Log       *zap.Logger
	Recorder  history.Recorder
	StatusTTL time.Duration
	Sample    string
}

// Manager owns the vault buffer and serializes saves against it.
type Manager struct {
	indexer   Indexer
	indexID   string
	log       *zap.Logger
	rec       history.Recorder
	statusTTL time.Duration
	sample    string

	mu        sync.Mutex
	content   string
	state     SaveState
	message   string
	statusGen int
}

// NewManager creates a vault manager. A nil Indexer gets the zero
// SimulatedIndexer; an empty Sample gets the bundled policy document.
func NewManager(opts Options) *Manager {
	if opts.Indexer == nil {
		opts.Indexer = SimulatedIndexer{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = defaultStatusTTL
	}
	if opts.Sample == "" {
		opts.Sample = samplePolicy
	}
	return &Manager{
		indexer:   opts.Indexer,
		indexID:   opts.IndexID,
		log:       opts.Log,
		rec:       opts.Recorder,
		statusTTL: opts.StatusTTL,
		sample:    opts.Sample,
	}
}

// SetContent replaces the buffer. Editing is allowed at any time, including
// while a save runs; the save keeps working on its snapshot.
func (m *Manager) SetContent(s string) {
	m.mu.Lock()
	m.content = s
	m.mu.Unlock()
}

// Content returns the current buffer.
func (m *Manager) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// Save snapshots the buffer and hands it to the indexer, blocking until the
// save resolves. It returns an error only when the save cannot start (empty
// buffer, save already running); an indexer failure is reported through
// Status as SaveRejected.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	if m.state == SaveSaving {
		m.mu.Unlock()
		return ErrSaveInFlight
	}
	snapshot := m.content
	if strings.TrimSpace(snapshot) == "" {
		m.setStatusLocked(SaveRejected, emptyContentMessage)
		m.mu.Unlock()
		return ErrEmptyContent
	}
	m.state = SaveSaving
	m.message = ""
	m.statusGen++
	m.mu.Unlock()

	start := time.Now()
	err := m.indexer.Index(ctx, m.indexID, snapshot)

	m.mu.Lock()
	if err != nil {
		m.setStatusLocked(SaveRejected, err.Error())
	} else {
		m.setStatusLocked(SaveSaved, savedMessage)
	}
	m.mu.Unlock()

	outcome := "saved"
	detail := savedMessage
	if err != nil {
		outcome = "rejected"
		detail = err.Error()
		m.log.Warn("vault save rejected",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
	} else {
		m.log.Info("vault saved",
			zap.Int("bytes", len(snapshot)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	if m.rec != nil {
		m.rec.Record(history.Run{
			Workflow:  history.WorkflowVaultSave,
			Input:     snapshot,
			Outcome:   outcome,
			Detail:    detail,
			Duration:  time.Since(start),
			StartedAt: start,
		})
	}
	return nil
}

// LoadSample replaces the buffer with the bundled sample document. The
// sample is loaded, not saved. Rejected while a save runs.
func (m *Manager) LoadSample() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == SaveSaving {
		return ErrSaveInFlight
	}
	m.content = m.sample
	m.state = SaveIdle
	m.message = ""
	m.statusGen++
	return nil
}

// Status returns the current save status.
func (m *Manager) Status() SaveStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SaveStatus{State: m.state, Message: m.message}
}

// setStatusLocked records a terminal status and arms its auto-revert.
// Callers hold mu. The generation check keeps an expired timer from
// clearing a status that a later save put up.
func (m *Manager) setStatusLocked(state SaveState, message string) {
	m.state = state
	m.message = message
	m.statusGen++
	gen := m.statusGen
	time.AfterFunc(m.statusTTL, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.statusGen == gen {
			m.state = SaveIdle
			m.message = ""
		}
	})
}
