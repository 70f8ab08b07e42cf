package question

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckQuality(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
		want   error
		choice int
	}{
		{"valid", func(q *Question) {}, nil, 0},
		{"duplicate choices", func(q *Question) { q.Choices[3] = "  unsystematic RISK " }, ErrDuplicateChoices, -1},
		{"choice too short", func(q *Question) { q.Choices[1] = "A" }, ErrChoiceTooShort, 1},
		{"choice too long", func(q *Question) { q.Choices[2] = strings.Repeat("x", 201) }, ErrChoiceTooLong, 2},
		{"question too short", func(q *Question) { q.Text = "What?" }, ErrQuestionTooShort, -1},
		{"question too long", func(q *Question) { q.Text = strings.Repeat("q", 501) }, ErrQuestionTooLong, -1},
		{"explanation too short", func(q *Question) { q.Explanation = "Because." }, ErrExplanationTooShort, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			err := CheckQuality(q)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			var qerr *QualityError
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, q.ID, qerr.QuestionID)
			assert.Equal(t, tt.choice, qerr.Choice)
		})
	}
}

func TestCheckQuality_BoundariesPass(t *testing.T) {
	q := validQuestion()
	q.Choices = [4]string{"ab", "cd", strings.Repeat("e", 200), "fg"}
	q.Text = strings.Repeat("q", 10)
	q.Explanation = strings.Repeat("x", 10)
	assert.NoError(t, CheckQuality(q))

	q.Text = strings.Repeat("q", 500)
	assert.NoError(t, CheckQuality(q))
}

func TestCheckQuality_CountsRunesNotBytes(t *testing.T) {
	q := validQuestion()
	q.Choices[0] = "株式" // 2 runes, 6 bytes
	q.Text = "分散投資の主な目的は何ですか？" // 15 runes
	assert.NoError(t, CheckQuality(q))
}
