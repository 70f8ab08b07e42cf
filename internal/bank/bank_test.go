package bank

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/investiq/internal/question"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *Bank {
	return New(Default().All()).WithRand(rand.New(rand.NewPCG(1, 2)))
}

func TestDefault_CuratedSet(t *testing.T) {
	b := Default()
	assert.GreaterOrEqual(t, b.Len(), 50)
	assert.GreaterOrEqual(t, len(b.Categories()), 5)

	for _, q := range b.All() {
		assert.NoError(t, question.Validate(q), q.ID)
		assert.NoError(t, question.CheckQuality(q), q.ID)
		assert.False(t, q.IsAIGenerated(), q.ID)
	}
}

func TestDefault_Once(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestCategories_Sorted(t *testing.T) {
	cats := Default().Categories()
	assert.Equal(t, []string{"basics", "bonds", "funds", "macro", "risk", "stocks"}, cats)
}

func TestDifficulties_FirstSeen(t *testing.T) {
	assert.Equal(t, []question.Difficulty{question.Beginner, question.Intermediate, question.Advanced}, Default().Difficulties())
}

func TestAll_DefensiveCopy(t *testing.T) {
	b := seeded()
	first := b.All()
	first[0].Choices[0] = "mutated"
	first[0].Tags = append(first[0].Tags[:0], "mutated")

	again := b.All()
	assert.NotEqual(t, "mutated", again[0].Choices[0])
	if len(again[0].Tags) > 0 {
		assert.NotEqual(t, "mutated", again[0].Tags[0])
	}
}

func TestByCategoryAndDifficulty(t *testing.T) {
	b := Default()
	for _, q := range b.ByCategory("bonds") {
		assert.Equal(t, "bonds", q.Category)
	}
	assert.Len(t, b.ByCategory("bonds"), 10)
	assert.Empty(t, b.ByCategory("nope"))

	for _, q := range b.ByDifficulty(question.Advanced) {
		assert.Equal(t, question.Advanced, q.Difficulty)
	}
}

func TestPickRandom(t *testing.T) {
	b := seeded()
	tests := []struct {
		name string
		opts PickOptions
	}{
		{"any", PickOptions{Count: 10}},
		{"category", PickOptions{Category: "stocks", Count: 5}},
		{"difficulty", PickOptions{Difficulty: question.Beginner, Count: 12}},
		{"both", PickOptions{Category: "risk", Difficulty: question.Advanced, Count: 3}},
		{"whole pool", PickOptions{Category: "funds", Count: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.PickRandom(tt.opts)
			require.NoError(t, err)
			require.Len(t, got, tt.opts.Count)

			ids := make(map[string]bool)
			for _, q := range got {
				assert.False(t, ids[q.ID], "duplicate id %s", q.ID)
				ids[q.ID] = true
				if tt.opts.Category != "" {
					assert.Equal(t, tt.opts.Category, q.Category)
				}
				if tt.opts.Difficulty != "" {
					assert.Equal(t, tt.opts.Difficulty, q.Difficulty)
				}
			}
		})
	}
}

func TestPickRandom_Errors(t *testing.T) {
	b := seeded()

	_, err := b.PickRandom(PickOptions{Count: 0})
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = b.PickRandom(PickOptions{Count: -3})
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = b.PickRandom(PickOptions{Category: "risk", Difficulty: question.Advanced, Count: 4})
	assert.ErrorIs(t, err, ErrInsufficientPool)
	_, err = b.PickRandom(PickOptions{Count: b.Len() + 1})
	assert.True(t, errors.Is(err, ErrInsufficientPool))
}

func TestPickRandom_Varies(t *testing.T) {
	b := seeded()
	first, err := b.PickRandom(PickOptions{Count: 10})
	require.NoError(t, err)

	differs := false
	for range 10 {
		next, err := b.PickRandom(PickOptions{Count: 10})
		require.NoError(t, err)
		for i := range next {
			if next[i].ID != first[i].ID {
				differs = true
			}
		}
	}
	assert.True(t, differs)
}

func TestNew_SkipsDuplicateIDs(t *testing.T) {
	qs := Default().ByCategory("macro")[:2]
	qs[1].ID = qs[0].ID
	b := New(qs)
	assert.Equal(t, 1, b.Len())

	got, ok := b.Get(qs[0].ID)
	require.True(t, ok)
	assert.Equal(t, qs[0].Text, got.Text)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`[]`))
	var ve *question.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Question bank cannot be empty", ve.Message)

	_, err = Decode([]byte(`{`))
	assert.Error(t, err)
}

func TestShuffle_Permutation(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	s := []int{1, 2, 3, 4, 5, 6}
	Shuffle(r, s)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, s)
}
