package aigen

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/investiq/internal/progress"
	"github.com/abhisek/investiq/internal/question"
)

const jsonRules = `Important:
- Output valid JSON only (RFC 8259).
- Wrap every property name in double quotes.
- Do not use trailing commas.
- Escape newlines inside strings as \n, or avoid them.
- Escape any double quote inside a string as \".
- Do not include any explanation or conversation outside the JSON.`

// buildQuestionsPrompt asks for count four-choice questions as a JSON array.
func buildQuestionsPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an investment education expert. Create %d investment quiz questions under the following conditions.\n\n", req.Count)
	b.WriteString("Conditions:\n")
	fmt.Fprintf(&b, "- Category: %s\n", req.Category)
	fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty.Label())
	b.WriteString("- Format: multiple choice with exactly 4 choices\n")
	b.WriteString("- Every question includes an explanation\n")
	b.WriteString("- Questions are for education only and are not investment advice\n\n")

	b.WriteString("Output a JSON array in this format:\n")
	fmt.Fprintf(&b, `[
  {
    "id": "ai-generated-unique-id",
    "category": %q,
    "difficulty": %q,
    "question": "Question text",
    "choices": ["Choice 1", "Choice 2", "Choice 3", "Choice 4"],
    "correctAnswer": 0,
    "explanation": "Explanation text"
  }
]`, req.Category, string(req.Difficulty))
	b.WriteString("\n\n")
	b.WriteString(jsonRules)

	return b.String()
}

// buildExplainPrompt asks for a richer beginner-friendly explanation.
func buildExplainPrompt(q question.Question) string {
	var b strings.Builder

	b.WriteString("Rewrite the explanation of the following investment quiz question so that a beginner can follow it in detail.\n")
	b.WriteString("Add short definitions for technical terms and use concrete examples.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", q.Text)
	fmt.Fprintf(&b, "Correct answer: %s\n", q.CorrectChoice())
	fmt.Fprintf(&b, "Current explanation: %s\n\n", q.Explanation)
	b.WriteString("Write a more detailed, easier to understand explanation. Markdown is fine.")

	return b.String()
}

// buildWeaknessPrompt summarizes p, weakest category first, and asks for a
// single JSON object.
func buildWeaknessPrompt(p progress.UserProgress) string {
	var b strings.Builder

	b.WriteString("You are an investment education expert. Analyze the following learner data and describe their weak points with study advice.\n\n")
	b.WriteString("Learning statistics:\n")
	fmt.Fprintf(&b, "- Quizzes taken: %d\n", p.TotalQuizzes)
	fmt.Fprintf(&b, "- Correct answers: %d/%d\n", p.TotalCorrect, p.TotalQuestions)
	fmt.Fprintf(&b, "- Overall accuracy: %d%%\n", int(math.Round(p.Accuracy())))
	fmt.Fprintf(&b, "- Study days: %d\n", p.StudyDays)
	fmt.Fprintf(&b, "- Questions answered wrong: %d\n\n", len(p.WrongQuestions))

	b.WriteString("Results by category:\n")
	entries := p.ByAccuracy()
	if len(entries) == 0 {
		b.WriteString("None\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %d/%d correct (%d%%)\n", e.Category, e.Correct, e.Total, int(math.Round(e.Accuracy())))
	}

	b.WriteString("\nReturn the analysis as JSON in this format:\n")
	b.WriteString(`{
  "weakestCategory": "Category with the lowest accuracy",
  "analysis": "Detailed analysis of the weak points (2-3 sentences)",
  "advice": "Concrete study advice (3-4 sentences)",
  "recommendedTopics": ["Topic 1", "Topic 2", "Topic 3"]
}`)
	b.WriteString("\n\n")
	b.WriteString(jsonRules)
	b.WriteString("\n- Keep every string on one line and close every string.")

	return b.String()
}
