package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/investiq/internal/bank"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Log a quiz taken outside the app",
	Long: `Fold a score from a quiz taken elsewhere (a worksheet, a class) into your
progress. It counts toward totals, category accuracy, and study days.`,
	Example: `  investiq record --category bonds --correct 4 --total 5
  investiq record -c funds --correct 2 --total 3 --wrong funds-004`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		correct, _ := cmd.Flags().GetInt("correct")
		total, _ := cmd.Flags().GetInt("total")
		wrong, _ := cmd.Flags().GetStringSlice("wrong")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		categories := bank.New(env.session.Questions()).Categories()
		if !slices.Contains(categories, category) {
			return fmt.Errorf("unknown category %q (want one of %s)", category, strings.Join(categories, ", "))
		}
		for _, id := range wrong {
			if _, ok := findQuestion(env.session.Questions(), id); !ok {
				return fmt.Errorf("question %q not found", id)
			}
		}

		ctx := cmd.Context()
		if err := env.session.RecordResult(ctx, correct, total, category); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
		for _, id := range wrong {
			if err := env.session.AddWrongQuestion(ctx, id); err != nil {
				return fmt.Errorf("add %s to review list: %w", id, err)
			}
		}

		fmt.Printf("Recorded %d/%d in %s. Category accuracy is now %d%%.\n",
			correct, total, category, env.session.CategoryAccuracy(category))
		return nil
	},
}

func init() {
	recordCmd.Flags().StringP("category", "c", "", "Question category")
	recordCmd.Flags().Int("correct", 0, "Correct answers")
	recordCmd.Flags().Int("total", 0, "Questions answered")
	recordCmd.Flags().StringSlice("wrong", nil, "IDs of missed questions to add to the review list")
	_ = recordCmd.MarkFlagRequired("category")
	_ = recordCmd.MarkFlagRequired("total")
}
