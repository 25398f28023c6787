package service

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/monkeymind-api/internal/domain/repository"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/internal/service/gamemanager"
	"github.com/yourusername/monkeymind-api/internal/websocket"
)

// GameManager - фасад игрового ядра. Собирает хранилище матчей,
// контроллер переходов и менеджер жизненного цикла, слушает сигнал
// исчерпания вопросов и запускает фоновую зачистку.
type GameManager struct {
	store     *gamemanager.MatchStore
	advancer  *gamemanager.Advancer
	lifecycle *gamemanager.Lifecycle

	lobbyRepo repository.LobbyRepository

	// Контекст для управления жизненным циклом
	ctx    context.Context
	cancel context.CancelFunc
}

// NewGameManager создает новый игровой менеджер и запускает фоновые горутины
func NewGameManager(
	config *gamemanager.Config,
	lobbyRepo repository.LobbyRepository,
	userRepo repository.UserRepository,
	resultRepo repository.MatchResultRepository,
	provider gamemanager.QuestionProvider,
	wsManager *websocket.Manager,
) *GameManager {
	ctx, cancel := context.WithCancel(context.Background())

	deps := &gamemanager.Dependencies{
		LobbyRepo:   lobbyRepo,
		UserRepo:    userRepo,
		ResultRepo:  resultRepo,
		Provider:    provider,
		Broadcaster: wsManager,
	}

	store := gamemanager.NewMatchStore()
	advancer := gamemanager.NewAdvancer(config, store, deps)
	lifecycle := gamemanager.NewLifecycle(config, store, deps, advancer)

	gm := &GameManager{
		store:     store,
		advancer:  advancer,
		lifecycle: lifecycle,
		lobbyRepo: lobbyRepo,
		ctx:       ctx,
		cancel:    cancel,
	}

	go gm.handleEvents()
	go lifecycle.RunSweeper(ctx)

	log.Println("[GameManager] Игровой менеджер инициализирован")
	return gm
}

// handleEvents обрабатывает сигналы игрового ядра
func (gm *GameManager) handleEvents() {
	matchDoneCh := gm.advancer.MatchDone()

	for {
		select {
		case <-gm.ctx.Done():
			log.Println("[GameManager] Завершение работы слушателя событий")
			return

		case code := <-matchDoneCh:
			// Вопросы исчерпаны: завершаем матч штатно
			go func(code string) {
				if err := gm.lifecycle.EndMatch(code, gamemanager.EndReasonCompleted); err != nil {
					log.Printf("[GameManager] Матч %s: ошибка завершения: %v", code, err)
				}
			}(code)
		}
	}
}

// StartMatch запускает матч в лобби по запросу владельца
func (gm *GameManager) StartMatch(ctx context.Context, code string, requesterID uint) error {
	return gm.lifecycle.StartMatch(ctx, code, requesterID)
}

// SubmitAnswer принимает ответ игрока на текущий вопрос
func (gm *GameManager) SubmitAnswer(code string, userID uint, questionID, answer string) (*gamemanager.AnswerResultPayload, error) {
	return gm.lifecycle.SubmitAnswer(code, userID, questionID, answer)
}

// RequestNextQuestion принудительно переводит матч к следующему вопросу.
// Доступно только владельцу лобби.
func (gm *GameManager) RequestNextQuestion(code string, requesterID uint) error {
	lobby, err := gm.lobbyRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if lobby.OwnerID != requesterID {
		return fmt.Errorf("only the lobby owner can skip questions: %w", apperrors.ErrForbidden)
	}

	gm.advancer.ForceAdvance(code)
	return nil
}

// EndMatch принудительно завершает матч
func (gm *GameManager) EndMatch(code string, reason string) error {
	return gm.lifecycle.EndMatch(code, reason)
}

// SetPlayerConnection обновляет идентификатор соединения игрока в активном матче
func (gm *GameManager) SetPlayerConnection(code string, userID uint, connectionID string) {
	gm.lifecycle.SetPlayerConnection(code, userID, connectionID)
}

// HasActiveMatch сообщает, идет ли матч в лобби
func (gm *GameManager) HasActiveMatch(code string) bool {
	_, ok := gm.store.Get(code)
	return ok
}

// ActiveMatches возвращает количество активных матчей
func (gm *GameManager) ActiveMatches() int {
	return gm.store.Len()
}

// Shutdown останавливает фоновые горутины менеджера
func (gm *GameManager) Shutdown() {
	gm.cancel()
	log.Println("[GameManager] Игровой менеджер остановлен")
}
