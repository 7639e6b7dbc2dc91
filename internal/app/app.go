// Package app wires the groundcheck components: agent client, workflow
// controllers, vault manager, and the run-history ledger.
package app

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/config"
	"github.com/groundcheck/groundcheck/internal/history"
	"github.com/groundcheck/groundcheck/internal/vault"
	"github.com/groundcheck/groundcheck/internal/workflow"
)

// indexDelay is the simulated re-indexing latency, long enough for the
// Saving state to be visible.
const indexDelay = 1500 * time.Millisecond

// App holds the wired application components. Construct with New, release
// with Close.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	Client     *agent.Client
	Generation *workflow.Generation
	Audit      *workflow.Audit
	Vault      *vault.Manager

	// History is the ledger read side; nil when recording is disabled or
	// the database could not be opened.
	History *history.Store

	db     *sql.DB
	writer *history.Writer
}

// New wires the application from a validated configuration. The ledger is a
// convenience: when its database cannot be opened the workflows run with
// recording disabled rather than failing.
func New(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	var rec history.Recorder
	if !cfg.History.Disabled {
		db, err := openHistory(cfg.History.Path)
		if err != nil {
			log.Warn("history ledger unavailable, recording disabled", zap.Error(err))
		} else {
			a.db = db
			a.writer = history.NewWriter(db, log)
			a.History = history.NewStore(db)
			rec = a.writer
		}
	}

	a.Client = agent.New(agent.Options{
		BaseURL: cfg.Agent.BaseURL,
		APIKey:  cfg.Agent.APIKey,
		Timeout: cfg.Agent.Timeout(),
	}, log)

	a.Generation = workflow.NewGeneration(a.Client, workflow.GenerationOptions{
		AgentID:    cfg.Agent.GeneratorID,
		Log:        log,
		Recorder:   rec,
		Clipboard:  workflow.SystemClipboard{},
		CopyAckTTL: cfg.UI.CopyAckTTL(),
	})
	a.Audit = workflow.NewAudit(a.Client, workflow.AuditOptions{
		AgentID:  cfg.Agent.AuditorID,
		Log:      log,
		Recorder: rec,
	})
	a.Vault = vault.NewManager(vault.Options{
		Indexer:   vault.SimulatedIndexer{Delay: indexDelay},
		IndexID:   cfg.Agent.VaultIndexID,
		Log:       log,
		Recorder:  rec,
		StatusTTL: cfg.UI.StatusTTL(),
	})

	return a
}

func openHistory(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return history.Open(path)
}

// Close flushes the run ledger and the logger.
func (a *App) Close() {
	if a.writer != nil {
		a.writer.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Log.Error("failed to close history database", zap.Error(err))
		}
	}
	if a.Log != nil {
		if err := a.Log.Sync(); err != nil && !ignorableSyncError(err) {
			fmt.Fprintf(os.Stderr, "error syncing logger: %v\n", err)
		}
	}
}

// Sync on a terminal stderr fails on some platforms; those errors carry no
// signal.
func ignorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "inappropriate ioctl for device") ||
		strings.Contains(msg, "bad file descriptor")
}
