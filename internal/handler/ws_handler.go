package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/service"
	"github.com/yourusername/monkeymind-api/internal/websocket"
	"github.com/yourusername/monkeymind-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket-соединения игроков
type WSHandler struct {
	wsManager    *websocket.Manager
	lobbyService *service.LobbyService
	gameManager  *service.GameManager
	jwtService   *auth.JWTService
	upgrader     gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket и регистрирует
// обработчики входящих событий
func NewWSHandler(
	wsManager *websocket.Manager,
	lobbyService *service.LobbyService,
	gameManager *service.GameManager,
	jwtService *auth.JWTService,
	allowedOrigins []string,
) *WSHandler {
	handler := &WSHandler{
		wsManager:    wsManager,
		lobbyService: lobbyService,
		gameManager:  gameManager,
		jwtService:   jwtService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Пустой Origin - небраузерный клиент, пропускаем
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Printf("[WSHandler] Отклонен неразрешенный origin: %s", origin)
				return false
			},
		},
	}

	handler.registerMessageHandlers()

	// При потере соединения игрок остается в составе и может вернуться
	wsManager.Hub().SetDisconnectHandler(func(client *websocket.Client) {
		if code := client.LobbyCode(); code != "" {
			lobbyService.DetachConnection(code, client.GetUserIDUint())
		}
	})

	return handler
}

// HandleConnection обрабатывает входящее WebSocket-соединение.
// Токен передается в query-параметре token.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token parameter"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		log.Printf("[WSHandler] Невалидный токен: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения: %v", err)
		return
	}

	client := websocket.NewClient(h.wsManager.Hub(), conn, strconv.FormatUint(uint64(claims.UserID), 10))
	client.StartPumps(h.wsManager.HandleMessage)

	log.Printf("[WSHandler] Соединение установлено: UserID=%d, Conn=%s", claims.UserID, client.ConnectionID)

	h.wsManager.SendEventToClient(client, websocket.EventAuthenticated, map[string]interface{}{
		"userId": claims.UserID,
		"name":   claims.Username,
	})
}

// Входящие payload-структуры

type joinLobbyRequest struct {
	Code string `json:"code"`
}

type updateSettingsRequest struct {
	Settings entity.LobbySettings `json:"settings"`
}

type submitAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// registerMessageHandlers привязывает обработчики к типам входящих событий.
// Бизнес-ошибки уходят клиенту событием error, соединение не закрывается.
func (h *WSHandler) registerMessageHandlers() {
	h.wsManager.RegisterHandler(websocket.EventAuthenticate, func(data json.RawMessage, client *websocket.Client) error {
		// Соединение аутентифицируется токеном при подключении,
		// событие оставлено для совместимости с клиентом
		h.wsManager.SendEventToClient(client, websocket.EventAuthenticated, map[string]interface{}{
			"userId": client.GetUserIDUint(),
		})
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventJoinLobby, func(data json.RawMessage, client *websocket.Client) error {
		var req joinLobbyRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}

		userID := client.GetUserIDUint()
		lobby, err := h.lobbyService.JoinLobby(req.Code, userID)
		if err != nil {
			h.wsManager.SendErrorToClient(client, "join_failed", err.Error())
			return nil
		}

		h.wsManager.Hub().JoinRoom(lobby.Code, client)
		client.SetLobbyCode(lobby.Code)
		if err := h.lobbyService.AttachConnection(lobby.Code, userID, client.ConnectionID); err != nil {
			log.Printf("[WSHandler] Не удалось привязать соединение игрока %d к лобби %s: %v", userID, lobby.Code, err)
		}

		h.wsManager.SendEventToClient(client, websocket.EventJoinedLobby, lobby)
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventLeaveLobby, func(data json.RawMessage, client *websocket.Client) error {
		code := client.LobbyCode()
		if code == "" {
			h.wsManager.SendErrorToClient(client, "not_in_lobby", "You are not in a lobby")
			return nil
		}

		if err := h.lobbyService.LeaveLobby(code, client.GetUserIDUint()); err != nil {
			h.wsManager.SendErrorToClient(client, "leave_failed", err.Error())
			return nil
		}

		h.wsManager.Hub().LeaveRoom(code, client)
		client.SetLobbyCode("")
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventUpdateLobbySettings, func(data json.RawMessage, client *websocket.Client) error {
		code := client.LobbyCode()
		if code == "" {
			h.wsManager.SendErrorToClient(client, "not_in_lobby", "You are not in a lobby")
			return nil
		}

		var req updateSettingsRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}

		if _, err := h.lobbyService.UpdateSettings(code, client.GetUserIDUint(), &req.Settings); err != nil {
			h.wsManager.SendErrorToClient(client, "update_settings_failed", err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventStartGame, func(data json.RawMessage, client *websocket.Client) error {
		code := client.LobbyCode()
		if code == "" {
			h.wsManager.SendErrorToClient(client, "not_in_lobby", "You are not in a lobby")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := h.gameManager.StartMatch(ctx, code, client.GetUserIDUint()); err != nil {
			h.wsManager.SendErrorToClient(client, "start_failed", err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventSubmitAnswer, func(data json.RawMessage, client *websocket.Client) error {
		code := client.LobbyCode()
		if code == "" {
			h.wsManager.SendErrorToClient(client, "not_in_lobby", "You are not in a lobby")
			return nil
		}

		var req submitAnswerRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}

		if _, err := h.gameManager.SubmitAnswer(code, client.GetUserIDUint(), req.QuestionID, req.Answer); err != nil {
			h.wsManager.SendErrorToClient(client, "answer_rejected", err.Error())
		}
		return nil
	})

	h.wsManager.RegisterHandler(websocket.EventRequestNextQuestion, func(data json.RawMessage, client *websocket.Client) error {
		code := client.LobbyCode()
		if code == "" {
			h.wsManager.SendErrorToClient(client, "not_in_lobby", "You are not in a lobby")
			return nil
		}

		if err := h.gameManager.RequestNextQuestion(code, client.GetUserIDUint()); err != nil {
			h.wsManager.SendErrorToClient(client, "skip_failed", err.Error())
		}
		return nil
	})
}
