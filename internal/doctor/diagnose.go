// Package doctor runs installation diagnostics: configuration, state
// directory, history ledger, agent endpoint reachability, and clipboard
// support. Checks never invoke a hosted agent; reachability is a plain dial.
package doctor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"

	"github.com/groundcheck/groundcheck/internal/config"
	"github.com/groundcheck/groundcheck/internal/history"
)

const dialTimeout = 3 * time.Second

// Diagnostics holds diagnostic information
type Diagnostics struct {
	Checks []CheckResult `json:"checks"`
	Issues []string      `json:"issues"`
	Status string        `json:"status"`
}

// CheckResult represents the result of a single check
type CheckResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "fail", "warn"
	Message  string `json:"message"`
	Severity string `json:"severity"` // "info", "warning", "error"
}

// Runner runs diagnostic checks
type Runner struct {
	cfg *config.Config
}

// NewRunner creates a new diagnostic runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// RunAll runs all diagnostic checks
func (d *Runner) RunAll(ctx context.Context) *Diagnostics {
	var results []CheckResult
	var issues []string

	results = append(results, d.checkConfiguration()...)
	results = append(results, d.checkStateDir()...)
	results = append(results, d.checkHistory(ctx)...)
	results = append(results, d.checkAgentEndpoint()...)
	results = append(results, d.checkClipboard()...)

	for _, result := range results {
		if result.Status == "fail" {
			issues = append(issues, result.Message)
		}
	}

	status := "healthy"
	if len(issues) > 0 {
		status = "issues_found"
	}

	return &Diagnostics{
		Checks: results,
		Issues: issues,
		Status: status,
	}
}

func (d *Runner) checkConfiguration() []CheckResult {
	var results []CheckResult

	if err := d.cfg.Validate(); err != nil {
		results = append(results, CheckResult{
			Name:     "configuration_validation",
			Status:   "fail",
			Message:  fmt.Sprintf("Configuration validation failed: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "configuration_validation",
			Status:   "pass",
			Message:  "Configuration is valid",
			Severity: "info",
		})
	}

	if d.cfg.Agent.APIKey == "" {
		results = append(results, CheckResult{
			Name:     "api_key_present",
			Status:   "warn",
			Message:  "No API key configured; agent requests will go out unauthenticated",
			Severity: "warning",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "api_key_present",
			Status:   "pass",
			Message:  "API key is configured",
			Severity: "info",
		})
	}

	return results
}

func (d *Runner) checkStateDir() []CheckResult {
	var results []CheckResult

	stateDir := config.StateDir()

	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		results = append(results, CheckResult{
			Name:     "state_directory_exists",
			Status:   "warn",
			Message:  fmt.Sprintf("State directory does not exist yet: %s (created on first run)", stateDir),
			Severity: "warning",
		})
		return results
	} else if err != nil {
		results = append(results, CheckResult{
			Name:     "state_directory_access",
			Status:   "fail",
			Message:  fmt.Sprintf("Cannot access state directory: %v", err),
			Severity: "error",
		})
		return results
	}

	if err := testDirectoryPermissions(stateDir); err != nil {
		results = append(results, CheckResult{
			Name:     "state_directory_permissions",
			Status:   "fail",
			Message:  fmt.Sprintf("Insufficient permissions for state directory: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "state_directory_permissions",
			Status:   "pass",
			Message:  "Sufficient permissions for state directory",
			Severity: "info",
		})
	}

	logsDir := filepath.Join(stateDir, "logs")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		results = append(results, CheckResult{
			Name:     "logs_directory_exists",
			Status:   "warn",
			Message:  fmt.Sprintf("Logs directory does not exist yet: %s", logsDir),
			Severity: "warning",
		})
	} else if err != nil {
		results = append(results, CheckResult{
			Name:     "logs_directory_access",
			Status:   "fail",
			Message:  fmt.Sprintf("Cannot access logs directory: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "logs_directory_access",
			Status:   "pass",
			Message:  "Logs directory is accessible",
			Severity: "info",
		})
	}

	return results
}

// testDirectoryPermissions tests if we can read and write to a directory
func testDirectoryPermissions(dir string) error {
	testFile := filepath.Join(dir, ".permission_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return err
	}
	os.Remove(testFile)
	return nil
}

func (d *Runner) checkHistory(ctx context.Context) []CheckResult {
	var results []CheckResult

	if d.cfg.History.Disabled {
		return append(results, CheckResult{
			Name:     "history_ledger",
			Status:   "warn",
			Message:  "History recording is disabled",
			Severity: "warning",
		})
	}

	db, err := history.Open(d.cfg.History.Path)
	if err != nil {
		return append(results, CheckResult{
			Name:     "history_ledger_open",
			Status:   "fail",
			Message:  fmt.Sprintf("Cannot open history ledger: %v", err),
			Severity: "error",
		})
	}
	defer db.Close()

	if _, err := db.Exec("SELECT 1"); err != nil {
		results = append(results, CheckResult{
			Name:     "history_ledger_query",
			Status:   "fail",
			Message:  fmt.Sprintf("Cannot query history ledger: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "history_ledger_query",
			Status:   "pass",
			Message:  "History ledger query successful",
			Severity: "info",
		})
	}

	if _, err := db.Exec("PRAGMA integrity_check"); err != nil {
		results = append(results, CheckResult{
			Name:     "history_ledger_integrity",
			Status:   "fail",
			Message:  fmt.Sprintf("History ledger integrity check failed: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "history_ledger_integrity",
			Status:   "pass",
			Message:  "History ledger integrity check passed",
			Severity: "info",
		})
	}

	if n, err := history.NewStore(db).Count(ctx); err != nil {
		results = append(results, CheckResult{
			Name:     "history_ledger_count",
			Status:   "fail",
			Message:  fmt.Sprintf("Cannot count history runs: %v", err),
			Severity: "error",
		})
	} else {
		results = append(results, CheckResult{
			Name:     "history_ledger_count",
			Status:   "pass",
			Message:  fmt.Sprintf("History ledger contains %d runs", n),
			Severity: "info",
		})
	}

	return results
}

func (d *Runner) checkAgentEndpoint() []CheckResult {
	var results []CheckResult

	u, err := url.Parse(d.cfg.Agent.BaseURL)
	if err != nil || u.Host == "" {
		return append(results, CheckResult{
			Name:     "agent_endpoint",
			Status:   "fail",
			Message:  fmt.Sprintf("Agent base URL is not parseable: %s", d.cfg.Agent.BaseURL),
			Severity: "error",
		})
	}

	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, dialTimeout)
	if err != nil {
		results = append(results, CheckResult{
			Name:     "agent_endpoint",
			Status:   "warn",
			Message:  fmt.Sprintf("Agent endpoint %s not reachable: %v", host, err),
			Severity: "warning",
		})
	} else {
		conn.Close()
		results = append(results, CheckResult{
			Name:     "agent_endpoint",
			Status:   "pass",
			Message:  fmt.Sprintf("Agent endpoint %s is reachable", host),
			Severity: "info",
		})
	}

	return results
}

func (d *Runner) checkClipboard() []CheckResult {
	if clipboard.Unsupported {
		return []CheckResult{{
			Name:     "clipboard_support",
			Status:   "warn",
			Message:  "Clipboard is not supported on this platform; copy-to-clipboard will be disabled",
			Severity: "warning",
		}}
	}
	return []CheckResult{{
		Name:     "clipboard_support",
		Status:   "pass",
		Message:  "Clipboard is supported",
		Severity: "info",
	}}
}

// PrintReport prints a formatted diagnostic report
func (d *Diagnostics) PrintReport() {
	fmt.Printf("=== groundcheck Diagnostic Report ===\n")
	fmt.Printf("Status: %s\n\n", d.Status)

	if len(d.Issues) > 0 {
		fmt.Printf("Issues Found:\n")
		for i, issue := range d.Issues {
			fmt.Printf("  %d. %s\n", i+1, issue)
		}
		fmt.Println()
	}

	fmt.Printf("Detailed Checks:\n")
	for _, check := range d.Checks {
		statusSymbol := "✓"
		if check.Status == "fail" {
			statusSymbol = "✗"
		} else if check.Status == "warn" {
			statusSymbol = "!"
		}

		fmt.Printf("  %s %s: %s\n", statusSymbol, check.Name, check.Message)
	}

	fmt.Println("\nRecommendations:")
	if len(d.Issues) == 0 {
		fmt.Println("  ✓ System is operating normally")
	} else {
		fmt.Println("  • Verify agent.base_url and the agent IDs in the config file")
		fmt.Println("  • Check the state directory permissions under ~/.groundcheck")
		fmt.Println("  • Verify the history ledger file is not corrupted")
		fmt.Println("  • Review configuration settings")
	}
}
