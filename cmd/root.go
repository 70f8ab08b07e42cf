package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/welcome"
	"github.com/abhisek/investiq/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "investiq",
	Short: "Investment knowledge quiz",
	Long:  "InvestIQ is a terminal quiz that builds investing knowledge, with optional AI-generated questions and explanations.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if skip, _ := cmd.Flags().GetBool("no-splash"); skip {
			return runApp(cmd, nil)
		}
		return runApp(cmd, func(context.Context, *screens.Deps) (screen.Screen, error) {
			return welcome.New(), nil
		})
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INVESTIQ_DB env var)")
	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug diagnostics to stderr")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INVESTIQ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
