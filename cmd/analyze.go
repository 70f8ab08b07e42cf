package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Have AI analyze your weakest areas",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		p := env.session.Progress()
		if p.TotalQuestions == 0 {
			fmt.Println("No answers recorded yet. Take a quiz first.")
			return nil
		}

		ctx, cancel := env.timeout(cmd.Context())
		defer cancel()
		gen, err := env.requireGenerator(ctx)
		if err != nil {
			return err
		}

		wa, err := gen.AnalyzeWeakness(ctx, p)
		if err != nil {
			return err
		}

		fmt.Printf("Focus area: %s\n\n", wa.WeakestCategory)
		fmt.Println(wa.Analysis)
		fmt.Println()
		fmt.Println(wa.Advice)
		if len(wa.RecommendedTopics) > 0 {
			fmt.Println()
			fmt.Println("Study next:")
			fmt.Println("  • " + strings.Join(wa.RecommendedTopics, "\n  • "))
		}
		return nil
	},
}
