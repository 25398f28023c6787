package question

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/domain/repository"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// PuzzleFetcher загружает одну головоломку из внешнего источника
type PuzzleFetcher interface {
	FetchPuzzle(ctx context.Context) (*entity.Question, error)
}

// Provider собирает наборы вопросов для матчей: внешний источник с
// ограниченными повторами, Redis-кеш и резервный пул на случай отказа.
type Provider struct {
	fetcher    PuzzleFetcher
	cache      repository.CacheRepository
	cacheTTL   time.Duration
	maxRetries int
	// Пауза между запросами к внешнему API
	politenessDelay time.Duration
}

// NewProvider создает новый провайдер вопросов
func NewProvider(fetcher PuzzleFetcher, cache repository.CacheRepository, cacheTTL time.Duration) *Provider {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Provider{
		fetcher:         fetcher,
		cache:           cache,
		cacheTTL:        cacheTTL,
		maxRetries:      2,
		politenessDelay: 300 * time.Millisecond,
	}
}

// cacheKey формирует ключ кеша для набора вопросов
func cacheKey(count int, difficulty string) string {
	if difficulty == "" {
		difficulty = "any"
	}
	return fmt.Sprintf("questions:%d:%s", count, difficulty)
}

// GetQuestions возвращает набор вопросов из кеша или внешнего источника.
// Возвращает ErrUpstreamUnavailable, если не удалось получить ни одного вопроса.
func (p *Provider) GetQuestions(ctx context.Context, count int, difficulty string, timeLimitSec int) ([]entity.Question, error) {
	key := cacheKey(count, difficulty)

	// Сначала пробуем кеш
	if p.cache != nil {
		var cached []entity.Question
		if err := p.cache.GetJSON(key, &cached); err == nil && len(cached) >= count {
			log.Printf("[QuestionProvider] Вопросы для %s взяты из кеша", key)
			return stampTimeLimit(cached[:count], timeLimitSec), nil
		}
	}

	questions, err := p.fetchBatch(ctx, count)
	if err != nil {
		return nil, err
	}

	// Сохраняем в кеш, ошибки кеша не критичны
	if p.cache != nil {
		if err := p.cache.SetJSON(key, questions, p.cacheTTL); err != nil {
			log.Printf("[QuestionProvider] Не удалось сохранить вопросы в кеш: %v", err)
		}
	}

	return stampTimeLimit(questions, timeLimitSec), nil
}

// PrepareQuestions собирает набор вопросов для старта матча.
// Никогда не возвращает ошибку: при отказе внешнего источника
// используется резервный пул.
func (p *Provider) PrepareQuestions(ctx context.Context, count int, difficulty string, timeLimitSec int) []entity.Question {
	questions, err := p.GetQuestions(ctx, count, difficulty, timeLimitSec)
	if err != nil {
		log.Printf("[QuestionProvider] Внешний источник недоступен (%v), используется резервный пул", err)
		return FallbackQuestions(count, difficulty, timeLimitSec)
	}
	return questions
}

// fetchBatch загружает головоломки из внешнего источника с повторами
func (p *Provider) fetchBatch(ctx context.Context, count int) ([]entity.Question, error) {
	if p.fetcher == nil {
		return nil, apperrors.ErrUpstreamUnavailable
	}

	log.Printf("[QuestionProvider] Загрузка %d головоломок из внешнего API...", count)

	questions := make([]entity.Question, 0, count)
	for i := 0; i < count; i++ {
		for retry := 0; retry < p.maxRetries; retry++ {
			puzzle, err := p.fetcher.FetchPuzzle(ctx)
			if err == nil {
				questions = append(questions, *puzzle)
				break
			}
			if retry == p.maxRetries-1 {
				log.Printf("[QuestionProvider] Головоломка %d/%d не загружена после %d попыток: %v",
					i+1, count, p.maxRetries, err)
			}
		}

		// Пауза между запросами, чтобы не перегружать API
		if i < count-1 && p.politenessDelay > 0 {
			select {
			case <-time.After(p.politenessDelay):
			case <-ctx.Done():
				if len(questions) == 0 {
					return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, ctx.Err())
				}
				return questions, nil
			}
		}
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: all banana API requests failed", apperrors.ErrUpstreamUnavailable)
	}

	if len(questions) < count {
		log.Printf("[QuestionProvider] Получено только %d/%d головоломок", len(questions), count)
	}

	return questions, nil
}

// stampTimeLimit проставляет лимит времени из настроек лобби
func stampTimeLimit(questions []entity.Question, timeLimitSec int) []entity.Question {
	for i := range questions {
		questions[i].TimeLimitSec = timeLimitSec
	}
	return questions
}
