package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/investiq/internal/aigen"
	"github.com/abhisek/investiq/internal/question"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate quiz questions with AI",
	Long: `Ask the AI provider for new questions and print them with their answers.

With --save the questions join the pool used by play, so later quizzes can
draw them alongside the curated bank.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("category", "c", "", "Question category, e.g. bonds (required)")
	generateCmd.Flags().StringP("difficulty", "d", "beginner", "beginner, intermediate, or advanced")
	generateCmd.Flags().IntP("count", "n", 5, "Number of questions to generate")
	generateCmd.Flags().Bool("save", false, "Save the questions for future quizzes")
	_ = generateCmd.MarkFlagRequired("category")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	diffVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	save, _ := cmd.Flags().GetBool("save")

	diff, err := question.ParseDifficulty(diffVal)
	if err != nil {
		return err
	}
	if diff == "" {
		return fmt.Errorf("--difficulty is required")
	}

	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := env.timeout(cmd.Context())
	defer cancel()

	gen, err := env.requireGenerator(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Generating %d %s questions about %s...\n\n", count, diff, category)
	qs, err := gen.GenerateQuestions(ctx, aigen.Request{
		Category:   strings.ToLower(strings.TrimSpace(category)),
		Difficulty: diff,
		Count:      count,
	})
	if err != nil {
		return err
	}

	for i, q := range qs {
		fmt.Printf("── Question %d/%d  [%s]\n", i+1, len(qs), q.ID)
		printQuestion(q, true)
		fmt.Println()
	}

	if !save {
		fmt.Println("Not saved. Re-run with --save to keep these questions.")
		return nil
	}
	for _, q := range qs {
		if err := env.session.AddAIGeneratedQuestion(cmd.Context(), q); err != nil {
			return fmt.Errorf("save question %s: %w", q.ID, err)
		}
	}
	fmt.Printf("Saved %d questions.\n", len(qs))
	return nil
}

// printQuestion writes q and its choices. With reveal the correct choice
// is marked and the explanation follows.
func printQuestion(q question.Question, reveal bool) {
	fmt.Println(q.Text)
	for j, c := range q.Choices {
		mark := " "
		if reveal && j == q.CorrectAnswer {
			mark = "✓"
		}
		fmt.Printf("  %s %c) %s\n", mark, 'A'+j, c)
	}
	if reveal && q.Explanation != "" {
		fmt.Printf("Explanation: %s\n", q.Explanation)
	}
}
