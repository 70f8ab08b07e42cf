package cmd

import (
	"context"

	"github.com/abhisek/investiq/internal/question"
	"github.com/abhisek/investiq/internal/quiz"
	"github.com/abhisek/investiq/internal/screen"
	"github.com/abhisek/investiq/internal/screens"
	"github.com/abhisek/investiq/internal/screens/play"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz from the question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		diffVal, _ := cmd.Flags().GetString("difficulty")
		count, _ := cmd.Flags().GetInt("count")
		shuffle, _ := cmd.Flags().GetBool("shuffle")

		diff, err := question.ParseDifficulty(diffVal)
		if err != nil {
			return err
		}

		return runApp(cmd, func(ctx context.Context, d *screens.Deps) (screen.Screen, error) {
			err := d.BuildQuiz(ctx, quiz.Options{
				Category:   category,
				Difficulty: diff,
				Count:      count,
			}, shuffle)
			if err != nil {
				return nil, err
			}
			return play.New(d), nil
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Retry questions you answered wrong",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		shuffle, _ := cmd.Flags().GetBool("shuffle")

		return runApp(cmd, func(ctx context.Context, d *screens.Deps) (screen.Screen, error) {
			if err := d.BuildReview(ctx, count, shuffle); err != nil {
				return nil, err
			}
			return play.New(d), nil
		})
	},
}

func init() {
	playCmd.Flags().StringP("category", "c", "", "Only ask questions from this category")
	playCmd.Flags().StringP("difficulty", "d", "", "beginner, intermediate, or advanced")
	playCmd.Flags().IntP("count", "n", quiz.DefaultCount, "Number of questions")
	playCmd.Flags().Bool("shuffle", false, "Shuffle answer choices (overrides settings)")

	reviewCmd.Flags().IntP("count", "n", quiz.DefaultCount, "Maximum number of questions")
	reviewCmd.Flags().Bool("shuffle", false, "Shuffle answer choices (overrides settings)")
}
