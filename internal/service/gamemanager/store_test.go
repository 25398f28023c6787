package gamemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

func TestMatchStore_CreateAndGet(t *testing.T) {
	store := NewMatchStore()

	err := store.Create(&MatchState{Code: "ABC123", IsActive: true})
	require.NoError(t, err)

	state, ok := store.Get("ABC123")
	require.True(t, ok)
	assert.Equal(t, "ABC123", state.Code)
	assert.Equal(t, 1, store.Len())
}

func TestMatchStore_DuplicateCode(t *testing.T) {
	store := NewMatchStore()
	require.NoError(t, store.Create(&MatchState{Code: "ABC123"}))

	err := store.Create(&MatchState{Code: "ABC123"})

	assert.ErrorIs(t, err, apperrors.ErrConflict, "Повторная регистрация матча должна возвращать конфликт")
}

func TestMatchStore_GetMissing(t *testing.T) {
	store := NewMatchStore()

	state, ok := store.Get("NOPE42")

	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestMatchStore_Delete(t *testing.T) {
	store := NewMatchStore()
	require.NoError(t, store.Create(&MatchState{Code: "ABC123"}))

	store.Delete("ABC123")

	_, ok := store.Get("ABC123")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	// Удаление несуществующего матча не паникует
	store.Delete("ABC123")
}

func TestMatchStore_Codes(t *testing.T) {
	store := NewMatchStore()
	require.NoError(t, store.Create(&MatchState{Code: "AAA111"}))
	require.NoError(t, store.Create(&MatchState{Code: "BBB222"}))

	codes := store.Codes()

	assert.Len(t, codes, 2)
	assert.ElementsMatch(t, []string{"AAA111", "BBB222"}, codes)
}
