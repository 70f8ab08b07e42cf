package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner progress",
	Long: `Reset learner progress: quiz totals, category stats, study days, and the
review list. With --all, saved AI questions and settings are removed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		all, _ := cmd.Flags().GetBool("all")
		if !yes {
			return fmt.Errorf("this erases your progress; re-run with --yes to confirm")
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		ctx := cmd.Context()
		if err := env.session.ResetProgress(ctx); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		if all {
			if err := env.st.QuestionRepo().Clear(ctx); err != nil {
				return fmt.Errorf("clear AI questions: %w", err)
			}
			if err := env.st.SettingsRepo().Clear(ctx); err != nil {
				return fmt.Errorf("clear settings: %w", err)
			}
		}
		fmt.Println("Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm the reset")
	resetCmd.Flags().Bool("all", false, "Also remove saved AI questions and settings")
}
