package cmd

import (
	"fmt"

	"github.com/abhisek/investiq/internal/question"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <question-id>",
	Short: "Get a fuller AI explanation of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		q, ok := findQuestion(env.session.Questions(), args[0])
		if !ok {
			return fmt.Errorf("question %q not found", args[0])
		}

		ctx, cancel := env.timeout(cmd.Context())
		defer cancel()
		gen, err := env.requireGenerator(ctx)
		if err != nil {
			return err
		}

		printQuestion(q, true)
		text, err := gen.EnhanceExplanation(ctx, q)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(text)
		return nil
	},
}

func findQuestion(qs []question.Question, id string) (question.Question, bool) {
	for _, q := range qs {
		if q.ID == id {
			return q, true
		}
	}
	return question.Question{}, false
}
