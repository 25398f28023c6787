package question

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// BananaClient загружает визуальные головоломки из внешнего Banana API.
// API возвращает JSON вида {"question": "<url картинки>", "solution": <цифра>},
// в некоторых ответах поле ответа называется "answer".
type BananaClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewBananaClient создает новый клиент Banana API
func NewBananaClient(apiURL, apiKey string, timeout time.Duration) *BananaClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BananaClient{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// bananaResponse описывает ответ API.
// Ответ может прийти числом или строкой, поэтому RawMessage.
type bananaResponse struct {
	Question string          `json:"question"`
	Answer   json.RawMessage `json:"answer"`
	Solution json.RawMessage `json:"solution"`
}

// FetchPuzzle загружает одну головоломку
func (c *BananaClient) FetchPuzzle(ctx context.Context) (*entity.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build banana request: %w", err)
	}
	req.Header.Set("User-Agent", "MonkeyMindGame/1.0")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("banana request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("banana API returned status %d", resp.StatusCode)
	}

	var data bananaResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode banana response: %w", err)
	}

	if data.Question == "" {
		return nil, fmt.Errorf("no question URL in banana response")
	}

	// Часть ответов использует поле "solution" вместо "answer"
	correctAnswer := rawToString(data.Answer)
	if correctAnswer == "" {
		correctAnswer = rawToString(data.Solution)
	}
	if correctAnswer == "" {
		return nil, fmt.Errorf("no answer in banana response")
	}

	log.Printf("[BananaClient] Загружена головоломка: %s, ответ: %s", data.Question, correctAnswer)

	return &entity.Question{
		ID:            uuid.New().String(),
		Kind:          entity.QuestionKindVisual,
		ImageURL:      data.Question,
		CorrectAnswer: correctAnswer,
		Category:      "Visual Puzzle",
		Difficulty:    entity.DifficultyMedium,
	}, nil
}

// rawToString приводит числовой или строковый JSON-ответ к строке
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	// Снимаем кавычки со строкового значения
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	// Число сериализуем как есть
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String()
	}
	return ""
}
