package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	s       AppSettings
	ok      bool
	saveErr error
}

func (r *memRepo) Load(context.Context) (AppSettings, bool, error) { return r.s, r.ok, nil }

func (r *memRepo) Save(_ context.Context, s AppSettings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.s, r.ok = s, true
	return nil
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AIzaSyDabcdefghijklmnop", "AIza***...***mnop"},
		{"short", "***ort"},
		{"abc", "***abc"},
		{"ab", "***ab"},
		{"a", "***a"},
		{"", ""},
		{"1234567", "***567"},
		{"12345678", "1234***...***5678"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskAPIKey(tt.in), tt.in)
	}

	masked := MaskAPIKey("AIzaSyDabcdefghijklmnop")
	assert.Contains(t, masked, "***")
	assert.True(t, len(masked) > 0 && masked[:4] == "AIza")
	assert.Contains(t, masked, "nop")
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(`{"geminiApiKey":"dummy","showExplanationImmediately":true,"shuffleChoices":false}`))
	require.NoError(t, err)
	assert.Equal(t, AppSettings{GeminiAPIKey: "dummy", ShowExplanationImmediately: true}, s)

	s, err = Decode([]byte(`{"showExplanationImmediately":false,"shuffleChoices":true}`))
	require.NoError(t, err)
	assert.False(t, s.HasAPIKey())
	assert.True(t, s.ShuffleChoices)

	for _, bad := range []string{
		`{"showExplanationImmediately":"yes","shuffleChoices":false}`,
		`{"shuffleChoices":false}`,
		`{"geminiApiKey":42,"showExplanationImmediately":true,"shuffleChoices":false}`,
		`[]`,
	} {
		_, err := Decode([]byte(bad))
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestManager_APIKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	m := NewManager(repo)

	assert.False(t, m.HasAPIKey(ctx))
	assert.ErrorIs(t, m.SaveAPIKey(ctx, "   "), ErrEmptyKey)

	require.NoError(t, m.SaveAPIKey(ctx, "  AIzaKey123  "))
	key, err := m.LoadAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AIzaKey123", key)
	assert.True(t, m.HasAPIKey(ctx))
	assert.True(t, repo.s.ShowExplanationImmediately, "defaults carried into first save")

	require.NoError(t, m.ClearAPIKey(ctx))
	assert.False(t, m.HasAPIKey(ctx))
	assert.True(t, repo.ok)
}

func TestManager_UpdateSaveError(t *testing.T) {
	boom := errors.New("disk full")
	m := NewManager(&memRepo{saveErr: boom})
	_, err := m.Update(context.Background(), func(s *AppSettings) { s.ShuffleChoices = true })
	assert.ErrorIs(t, err, boom)
}
