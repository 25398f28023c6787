package service

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/domain/repository"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/internal/websocket"
)

// Алфавит и длина кода лобби
const (
	lobbyCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	lobbyCodeLength   = 6

	// Количество попыток при коллизии кода
	maxCodeAttempts = 5
)

// Границы настроек лобби
const (
	minLobbyPlayers  = 2
	maxLobbyPlayers  = 16
	minQuestionCount = 5
	maxQuestionCount = 50
	minTimeLimitSec  = 5
	maxTimeLimitSec  = 60
)

// LobbyService управляет лобби: создание, вход, выход, настройки
// и привязка websocket-соединений игроков.
type LobbyService struct {
	lobbyRepo       repository.LobbyRepository
	userRepo        repository.UserRepository
	gameManager     *GameManager
	wsManager       *websocket.Manager
	defaultSettings entity.LobbySettings
}

// NewLobbyService создает новый сервис лобби.
// Нулевые поля defaults заполняются встроенными значениями.
func NewLobbyService(
	lobbyRepo repository.LobbyRepository,
	userRepo repository.UserRepository,
	gameManager *GameManager,
	wsManager *websocket.Manager,
	defaults entity.LobbySettings,
) *LobbyService {
	builtin := entity.DefaultLobbySettings()
	if defaults.MaxPlayers <= 0 {
		defaults.MaxPlayers = builtin.MaxPlayers
	}
	if defaults.QuestionCount <= 0 {
		defaults.QuestionCount = builtin.QuestionCount
	}
	if defaults.TimeLimitSec <= 0 {
		defaults.TimeLimitSec = builtin.TimeLimitSec
	}
	if defaults.Difficulty == "" {
		defaults.Difficulty = builtin.Difficulty
	}
	return &LobbyService{
		lobbyRepo:       lobbyRepo,
		userRepo:        userRepo,
		gameManager:     gameManager,
		wsManager:       wsManager,
		defaultSettings: defaults,
	}
}

// CreateLobby создает лобби и сразу добавляет владельца в состав.
// При коллизии кода генерация повторяется.
func (s *LobbyService) CreateLobby(ownerID uint, settings *entity.LobbySettings) (*entity.Lobby, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}

	effective := s.defaultSettings
	if settings != nil {
		effective = *settings
	}
	if err := validateLobbySettings(&effective); err != nil {
		return nil, err
	}

	lobby := &entity.Lobby{
		OwnerID:  ownerID,
		Status:   entity.LobbyStatusWaiting,
		Settings: effective,
		Players: entity.PlayerList{{
			UserID:    owner.ID,
			Name:      owner.Username,
			AvatarURL: owner.AvatarURL,
		}},
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		lobby.Code = generateLobbyCode()
		err = s.lobbyRepo.Create(lobby)
		if err == nil {
			log.Printf("[LobbyService] Лобби %s создано игроком %d", lobby.Code, ownerID)
			return lobby, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to allocate unique lobby code after %d attempts: %w", maxCodeAttempts, err)
}

// GetLobby возвращает лобби по коду
func (s *LobbyService) GetLobby(code string) (*entity.Lobby, error) {
	return s.lobbyRepo.GetByCode(normalizeLobbyCode(code))
}

// ListOpenLobbies возвращает открытые лобби в статусе ожидания
func (s *LobbyService) ListOpenLobbies(limit int) ([]entity.Lobby, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.lobbyRepo.ListWaiting(limit)
}

// JoinLobby добавляет игрока в лобби.
// Повторный вход уже состоящего игрока идемпотентен.
func (s *LobbyService) JoinLobby(code string, userID uint) (*entity.Lobby, error) {
	code = normalizeLobbyCode(code)

	lobby, err := s.lobbyRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}

	if lobby.HasPlayer(userID) {
		return lobby, nil
	}
	if lobby.Status != entity.LobbyStatusWaiting {
		return nil, fmt.Errorf("lobby %s: %w", code, ErrLobbyNotJoinable)
	}
	if lobby.IsFull() {
		return nil, fmt.Errorf("lobby %s: %w", code, ErrLobbyFull)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	lobby.Players = append(lobby.Players, entity.Player{
		UserID:    user.ID,
		Name:      user.Username,
		AvatarURL: user.AvatarURL,
	})
	if err := s.lobbyRepo.Update(lobby); err != nil {
		return nil, err
	}

	log.Printf("[LobbyService] Игрок %d вошел в лобби %s (%d/%d)", userID, code, len(lobby.Players), lobby.Settings.MaxPlayers)
	s.broadcastLobbyUpdate(lobby)
	return lobby, nil
}

// LeaveLobby удаляет игрока из лобби.
// Пустое лобби удаляется, при выходе владельца лобби переходит
// к первому оставшемуся игроку.
func (s *LobbyService) LeaveLobby(code string, userID uint) error {
	code = normalizeLobbyCode(code)

	lobby, err := s.lobbyRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if !lobby.RemovePlayer(userID) {
		return fmt.Errorf("user %d is not in lobby %s: %w", userID, code, apperrors.ErrNotFound)
	}

	if len(lobby.Players) == 0 {
		if err := s.lobbyRepo.Delete(code); err != nil {
			return err
		}
		log.Printf("[LobbyService] Лобби %s опустело и удалено", code)
		return nil
	}

	if lobby.OwnerID == userID {
		lobby.OwnerID = lobby.Players[0].UserID
		log.Printf("[LobbyService] Лобби %s: владение передано игроку %d", code, lobby.OwnerID)
	}
	if err := s.lobbyRepo.Update(lobby); err != nil {
		return err
	}

	s.broadcastLobbyUpdate(lobby)
	return nil
}

// UpdateSettings меняет настройки лобби. Доступно владельцу до старта матча.
func (s *LobbyService) UpdateSettings(code string, userID uint, settings *entity.LobbySettings) (*entity.Lobby, error) {
	code = normalizeLobbyCode(code)

	lobby, err := s.lobbyRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if lobby.OwnerID != userID {
		return nil, fmt.Errorf("only the lobby owner can change settings: %w", apperrors.ErrForbidden)
	}
	if lobby.Status != entity.LobbyStatusWaiting {
		return nil, fmt.Errorf("lobby %s settings are frozen after start: %w", code, apperrors.ErrConflict)
	}
	if err := validateLobbySettings(settings); err != nil {
		return nil, err
	}
	if len(lobby.Players) > settings.MaxPlayers {
		return nil, fmt.Errorf("lobby %s already has %d players: %w", code, len(lobby.Players), apperrors.ErrValidation)
	}

	lobby.Settings = *settings
	if err := s.lobbyRepo.Update(lobby); err != nil {
		return nil, err
	}

	s.broadcastLobbyUpdate(lobby)
	return lobby, nil
}

// AttachConnection привязывает websocket-соединение игрока к лобби.
// Обновляет и состав лобби, и состояние активного матча.
func (s *LobbyService) AttachConnection(code string, userID uint, connectionID string) error {
	code = normalizeLobbyCode(code)

	lobby, err := s.lobbyRepo.GetByCode(code)
	if err != nil {
		return err
	}
	player := lobby.FindPlayer(userID)
	if player == nil {
		return fmt.Errorf("user %d is not in lobby %s: %w", userID, code, apperrors.ErrNotFound)
	}

	player.ConnectionID = connectionID
	if err := s.lobbyRepo.Update(lobby); err != nil {
		log.Printf("[LobbyService] Лобби %s: не удалось сохранить привязку соединения: %v", code, err)
	}
	s.gameManager.SetPlayerConnection(code, userID, connectionID)

	s.broadcastLobbyUpdate(lobby)
	return nil
}

// DetachConnection отмечает игрока отключенным.
// Игрок остается в составе и может вернуться по тому же коду.
func (s *LobbyService) DetachConnection(code string, userID uint) {
	code = normalizeLobbyCode(code)

	s.gameManager.SetPlayerConnection(code, userID, "")

	lobby, err := s.lobbyRepo.GetByCode(code)
	if err != nil {
		log.Printf("[LobbyService] Лобби %s: не удалось прочитать лобби при отключении игрока %d: %v", code, userID, err)
		return
	}
	player := lobby.FindPlayer(userID)
	if player == nil {
		return
	}

	player.ConnectionID = ""
	if err := s.lobbyRepo.Update(lobby); err != nil {
		log.Printf("[LobbyService] Лобби %s: не удалось сохранить отключение игрока %d: %v", code, userID, err)
	}

	s.wsManager.BroadcastToLobby(code, websocket.EventPlayerDisconnected, map[string]interface{}{
		"userId": userID,
		"name":   player.Name,
	})
	s.broadcastLobbyUpdate(lobby)
}

// broadcastLobbyUpdate рассылает актуальное состояние лобби его комнате
func (s *LobbyService) broadcastLobbyUpdate(lobby *entity.Lobby) {
	s.wsManager.BroadcastToLobby(lobby.Code, websocket.EventLobbyUpdate, lobby)
}

// validateLobbySettings проверяет границы настроек лобби
func validateLobbySettings(settings *entity.LobbySettings) error {
	if settings == nil {
		return fmt.Errorf("settings must not be nil: %w", apperrors.ErrValidation)
	}
	if settings.MaxPlayers < minLobbyPlayers || settings.MaxPlayers > maxLobbyPlayers {
		return fmt.Errorf("maxPlayers must be between %d and %d: %w", minLobbyPlayers, maxLobbyPlayers, apperrors.ErrValidation)
	}
	if settings.QuestionCount < minQuestionCount || settings.QuestionCount > maxQuestionCount {
		return fmt.Errorf("questionCount must be between %d and %d: %w", minQuestionCount, maxQuestionCount, apperrors.ErrValidation)
	}
	if settings.TimeLimitSec < minTimeLimitSec || settings.TimeLimitSec > maxTimeLimitSec {
		return fmt.Errorf("timeLimit must be between %d and %d seconds: %w", minTimeLimitSec, maxTimeLimitSec, apperrors.ErrValidation)
	}
	switch settings.Difficulty {
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
	default:
		return fmt.Errorf("difficulty must be easy, medium or hard: %w", apperrors.ErrValidation)
	}
	return nil
}

// normalizeLobbyCode приводит код лобби к каноническому виду
func normalizeLobbyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateLobbyCode возвращает случайный код лобби
func generateLobbyCode() string {
	buf := make([]byte, lobbyCodeLength)
	for i := range buf {
		buf[i] = lobbyCodeAlphabet[rand.Intn(len(lobbyCodeAlphabet))]
	}
	return string(buf)
}
