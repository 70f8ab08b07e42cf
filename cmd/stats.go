package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/investiq/internal/progress"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		printStats(env.session.Progress())
		return nil
	},
}

func printStats(p progress.UserProgress) {
	if p.TotalQuestions == 0 {
		fmt.Println("No quizzes taken yet.")
		return
	}

	fmt.Printf("Quizzes taken:     %d\n", p.TotalQuizzes)
	fmt.Printf("Correct answers:   %d/%d\n", p.TotalCorrect, p.TotalQuestions)
	fmt.Printf("Overall accuracy:  %.0f%%\n", p.Accuracy())
	fmt.Printf("Study days:        %d", p.StudyDays)
	if p.LastStudyDate != "" {
		fmt.Printf(" (last %s)", p.LastStudyDate)
	}
	fmt.Println()
	fmt.Printf("To review:         %d\n", len(p.WrongQuestions))

	fmt.Println()
	fmt.Println("By category, weakest first")
	fmt.Println(strings.Repeat("─", 56))
	for _, e := range p.ByAccuracy() {
		fmt.Printf("%-10s %s %3.0f%%  %d/%d\n",
			e.Category, textBar(e.Accuracy(), 24), e.Accuracy(), e.Correct, e.Total)
	}
}

// textBar draws pct (0-100) as a fixed-width bar of block characters.
func textBar(pct float64, width int) string {
	filled := int(pct/100*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
