package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/groundcheck/groundcheck/internal/app"
	"github.com/groundcheck/groundcheck/internal/config"
	"github.com/groundcheck/groundcheck/internal/logging"
	"github.com/groundcheck/groundcheck/internal/tui"
	"github.com/groundcheck/groundcheck/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "groundcheck",
	Short: "groundcheck - Grounded answers and compliance audits from your vault",
	Long: `groundcheck drives a hosted agent service from the terminal: ask questions
answered strictly from your knowledge vault, audit draft responses for
compliance risk, and manage the vault content itself.

Run without arguments to open the interactive workbench.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.groundcheck/config.toml)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate the autocompletion script for the specified shell",
	Long: `Generate the autocompletion script for groundcheck for the specified shell.
See each command's help for details on how to use the generated script.
	`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completion script: %v\n", err)
			os.Exit(1)
		}
	},
}

var versionCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("groundcheck v%s\n", version.Version)
		if !versionCheck {
			return
		}
		latest, err := version.CheckForUpdates()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Update check failed: %v\n", err)
			return
		}
		if latest == "" {
			fmt.Println("You are on the latest release.")
		} else {
			fmt.Printf("A newer release is available: v%s\n", latest)
		}
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive workbench",
}

func runTUICmd(a *app.App, cmd *cobra.Command, args []string) int {
	if err := tui.Run(a); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Workbench exited with an error: %v\n", err)
		return 1
	}
	return 0
}

// loadApp builds the application from configuration. The caller owns Close.
// Commands that take over the terminal log to a file instead of stderr.
func loadApp(ownsTerminal bool) (*app.App, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.EnsureStateDir(); err != nil {
		return nil, err
	}

	var log *zap.Logger
	if ownsTerminal {
		log, err = logging.NewFile(cfg.LogLevel, config.DefaultLogPath())
		if err != nil {
			return nil, err
		}
	} else {
		log = logging.New(cfg.LogLevel)
	}
	return app.New(cfg, log), nil
}

// newAppRunner creates a Cobra Run function closure that builds the
// application, hands it to runFunc, and tears it down before the process
// exits so the history writer gets to flush.
func newAppRunner(ownsTerminal bool, runFunc func(*app.App, *cobra.Command, []string) int) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := loadApp(ownsTerminal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
			os.Exit(1)
		}
		code := runFunc(a, cmd, args)
		a.Close()
		if code != 0 {
			os.Exit(code)
		}
	}
}

func main() {
	rootCmd.Run = newAppRunner(true, runTUICmd)
	tuiCmd.Run = newAppRunner(true, runTUICmd)
	askCmd.Run = newAppRunner(false, runAskCmd)
	auditCmd.Run = newAppRunner(false, runAuditCmd)
	vaultSaveCmd.Run = newAppRunner(false, runVaultSaveCmd)
	vaultSampleCmd.Run = newAppRunner(false, runVaultSampleCmd)
	historyCmd.Run = newAppRunner(false, runHistoryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
