package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/groundcheck/groundcheck/internal/agent"
	"github.com/groundcheck/groundcheck/internal/app"
	"github.com/groundcheck/groundcheck/internal/lifecycle"
	"github.com/groundcheck/groundcheck/internal/taxonomy"
	"github.com/groundcheck/groundcheck/internal/vault"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered strictly from the vault",
	Args:  cobra.MinimumNArgs(1),
}

func runAskCmd(a *app.App, cmd *cobra.Command, args []string) int {
	question := strings.Join(args, " ")
	if err := a.Generation.Submit(cmd.Context(), question); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	res := a.Generation.State().Value
	if res.Status == agent.StatusSuccess {
		fmt.Println(res.Answer)
		if len(res.Citations) > 0 {
			fmt.Println("\nCitations:")
			for i, c := range res.Citations {
				fmt.Printf("  [%d] %s\n", i+1, c.SourceText)
				if c.Relevance != "" {
					fmt.Printf("      %s\n", c.Relevance)
				}
			}
		}
		return 0
	}

	fmt.Printf("⚠ %s\n", res.Warning)
	if res.Answer != "" {
		fmt.Println(res.Answer)
	}
	return 0
}

var (
	auditFile     string
	auditMinScore float64
)

var auditCmd = &cobra.Command{
	Use:   "audit [draft]",
	Short: "Audit a draft response against the vault",
	Long: `Audit a draft response sentence by sentence against the vault.

The draft comes from the argument, --file, or stdin. The exit code is
non-zero when the audit cannot run or the score falls below --min-score.`,
	Args: cobra.ArbitraryArgs,
}

func init() {
	auditCmd.Flags().StringVarP(&auditFile, "file", "f", "", "Read the draft from a file")
	auditCmd.Flags().Float64Var(&auditMinScore, "min-score", 0, "Exit non-zero when the compliance score is below this value")
}

func runAuditCmd(a *app.App, cmd *cobra.Command, args []string) int {
	draft, err := readInput(args, auditFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	if err := a.Audit.Submit(cmd.Context(), draft); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	snap := a.Audit.State()
	if snap.State == lifecycle.StateFailed {
		fmt.Fprintf(os.Stderr, "❌ Audit failed: %s\n", snap.Reason)
		return 1
	}

	res := snap.Value
	band := taxonomy.BandForScore(res.ComplianceScore)
	fmt.Printf("%s · %.1f/100 (%d sentences)\n", taxonomy.BandLabel(band), res.ComplianceScore, res.TotalSentences)
	if res.Summary != "" {
		fmt.Printf("\n%s\n", res.Summary)
	}
	for _, s := range res.Analysis {
		glyph := "·"
		if icon, ok := taxonomy.IconForStatus(s.Status); ok {
			glyph = icon.Glyph
		}
		fmt.Printf("\n%s %s\n", glyph, s.Sentence)
		if s.Explanation != "" {
			fmt.Printf("   %s\n", s.Explanation)
		}
		if s.VaultReference != "" {
			fmt.Printf("   vault: %s\n", s.VaultReference)
		}
	}

	if auditMinScore > 0 && res.ComplianceScore < auditMinScore {
		fmt.Fprintf(os.Stderr, "\n❌ Compliance score %.1f is below the required %.1f\n", res.ComplianceScore, auditMinScore)
		return 1
	}
	return 0
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the knowledge vault content",
}

var vaultSaveFile string

var vaultSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save vault content and queue it for re-indexing",
	Long: `Save vault content and queue it for re-indexing.

The content comes from the argument, --file, or stdin.`,
	Args: cobra.ArbitraryArgs,
}

var vaultSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the bundled sample policy document",
}

func init() {
	vaultSaveCmd.Flags().StringVarP(&vaultSaveFile, "file", "f", "", "Read the vault content from a file")
	vaultCmd.AddCommand(vaultSaveCmd)
	vaultCmd.AddCommand(vaultSampleCmd)
}

func runVaultSaveCmd(a *app.App, cmd *cobra.Command, args []string) int {
	content, err := readInput(args, vaultSaveFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	a.Vault.SetContent(content)
	if err := a.Vault.Save(cmd.Context()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	st := a.Vault.Status()
	if st.State == vault.SaveRejected {
		fmt.Fprintf(os.Stderr, "❌ %s\n", st.Message)
		return 1
	}
	fmt.Printf("✅ %s\n", st.Message)
	return 0
}

func runVaultSampleCmd(a *app.App, cmd *cobra.Command, args []string) int {
	if err := a.Vault.LoadSample(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	fmt.Print(a.Vault.Content())
	return 0
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent workflow runs",
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to show")
}

func runHistoryCmd(a *app.App, cmd *cobra.Command, args []string) int {
	if a.History == nil {
		fmt.Println("History recording is disabled.")
		return 0
	}

	runs, err := a.History.Recent(cmd.Context(), historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to read history: %v\n", err)
		return 1
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return 0
	}

	fmt.Printf("Recent runs (showing %d):\n\n", len(runs))
	for i, r := range runs {
		fmt.Printf("[%d] %s: %s (%s)\n", i+1, r.Workflow, r.Outcome, r.Duration.Round(time.Millisecond))
		if in := truncate(r.Input, 70); in != "" {
			fmt.Printf("    Input: %s\n", in)
		}
		if r.Detail != "" {
			fmt.Printf("    Detail: %s\n", r.Detail)
		}
		fmt.Printf("    Date: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return 0
}

// readInput resolves input text from an argument, a file, or stdin.
func readInput(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
