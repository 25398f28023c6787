package question

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// ===== Моки =====

// stubFetcher отдает головоломки или ошибки по сценарию
type stubFetcher struct {
	failures int // сколько первых вызовов завершить ошибкой
	calls    int
}

func (s *stubFetcher) FetchPuzzle(ctx context.Context) (*entity.Question, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("connection refused")
	}
	return &entity.Question{
		ID:            uuid.New().String(),
		Kind:          entity.QuestionKindVisual,
		ImageURL:      "https://example.com/puzzle.png",
		CorrectAnswer: "4",
		Category:      "Visual Puzzle",
		Difficulty:    entity.DifficultyMedium,
	}, nil
}

// newTestProvider создает провайдер без пауз между запросами
func newTestProvider(fetcher PuzzleFetcher) *Provider {
	p := NewProvider(fetcher, nil, time.Hour)
	p.politenessDelay = 0
	return p
}

// ===== Тесты =====

func TestProvider_GetQuestions_Success(t *testing.T) {
	// Arrange
	provider := newTestProvider(&stubFetcher{})

	// Act
	questions, err := provider.GetQuestions(context.Background(), 3, "", 20)

	// Assert
	require.NoError(t, err)
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.Equal(t, 20, q.TimeLimitSec, "Лимит времени должен проставляться из настроек лобби")
	}
}

func TestProvider_GetQuestions_RetriesThenSucceeds(t *testing.T) {
	// Arrange: первый вызов падает, повтор в рамках того же вопроса успешен
	fetcher := &stubFetcher{failures: 1}
	provider := newTestProvider(fetcher)

	// Act
	questions, err := provider.GetQuestions(context.Background(), 2, "", 30)

	// Assert
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Equal(t, 3, fetcher.calls, "Должен быть один повтор после ошибки")
}

func TestProvider_GetQuestions_AllFailed(t *testing.T) {
	// Arrange: источник падает всегда
	provider := newTestProvider(&stubFetcher{failures: 1 << 30})

	// Act
	questions, err := provider.GetQuestions(context.Background(), 3, "", 30)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Nil(t, questions)
}

func TestProvider_GetQuestions_NilFetcher(t *testing.T) {
	// Arrange
	provider := newTestProvider(nil)

	// Act
	_, err := provider.GetQuestions(context.Background(), 3, "", 30)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestProvider_PrepareQuestions_FallsBackOnFailure(t *testing.T) {
	// Arrange: внешний источник недоступен
	provider := newTestProvider(&stubFetcher{failures: 1 << 30})

	// Act
	questions := provider.PrepareQuestions(context.Background(), 5, entity.DifficultyEasy, 30)

	// Assert: ошибка не всплывает, матч получает резервные вопросы
	require.Len(t, questions, 5)
	for _, q := range questions {
		assert.Equal(t, entity.QuestionKindText, q.Kind, "Резервные вопросы текстовые")
		assert.Equal(t, 30, q.TimeLimitSec)
	}
}

func TestProvider_PrepareQuestions_UsesSourceWhenAvailable(t *testing.T) {
	// Arrange
	provider := newTestProvider(&stubFetcher{})

	// Act
	questions := provider.PrepareQuestions(context.Background(), 2, "", 30)

	// Assert
	require.Len(t, questions, 2)
	assert.Equal(t, entity.QuestionKindVisual, questions[0].Kind)
}
