package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/service"
)

// LobbyHandler обрабатывает REST-запросы к лобби
type LobbyHandler struct {
	lobbyService *service.LobbyService
	gameManager  *service.GameManager
}

// NewLobbyHandler создает новый обработчик лобби
func NewLobbyHandler(lobbyService *service.LobbyService, gameManager *service.GameManager) *LobbyHandler {
	return &LobbyHandler{
		lobbyService: lobbyService,
		gameManager:  gameManager,
	}
}

// CreateLobbyRequest представляет запрос на создание лобби
type CreateLobbyRequest struct {
	Settings *entity.LobbySettings `json:"settings"`
}

// CreateLobby создает новое лобби
func (h *LobbyHandler) CreateLobby(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var req CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	lobby, err := h.lobbyService.CreateLobby(userID, req.Settings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lobby)
}

// ListLobbies возвращает открытые лобби
func (h *LobbyHandler) ListLobbies(c *gin.Context) {
	lobbies, err := h.lobbyService.ListOpenLobbies(20)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lobbies": lobbies})
}

// GetLobby возвращает лобби по коду
func (h *LobbyHandler) GetLobby(c *gin.Context) {
	lobby, err := h.lobbyService.GetLobby(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lobby)
}

// JoinLobby добавляет текущего игрока в лобби
func (h *LobbyHandler) JoinLobby(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	lobby, err := h.lobbyService.JoinLobby(c.Param("code"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lobby)
}

// LeaveLobby удаляет текущего игрока из лобби
func (h *LobbyHandler) LeaveLobby(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	if err := h.lobbyService.LeaveLobby(c.Param("code"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left lobby"})
}

// UpdateSettings меняет настройки лобби
func (h *LobbyHandler) UpdateSettings(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var settings entity.LobbySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	lobby, err := h.lobbyService.UpdateSettings(c.Param("code"), userID, &settings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lobby)
}

// StartMatch запускает матч в лобби
func (h *LobbyHandler) StartMatch(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	if err := h.gameManager.StartMatch(c.Request.Context(), c.Param("code"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "match started"})
}
