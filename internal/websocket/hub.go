package websocket

import (
	"log"
	"sync"
)

// Hub хранит активные соединения и комнаты лобби.
// Одно активное соединение на пользователя: повторное подключение
// вытесняет предыдущее.
type Hub struct {
	mu sync.RWMutex

	// Все активные клиенты
	clients map[*Client]bool

	// userID -> клиент
	byUser map[string]*Client

	// код лобби -> клиенты в комнате
	rooms map[string]map[*Client]bool

	// Колбэк при потере соединения (очистка ConnectionID игрока в лобби)
	onDisconnect func(client *Client)
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		byUser:  make(map[string]*Client),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// SetDisconnectHandler устанавливает колбэк, вызываемый после отключения клиента
func (h *Hub) SetDisconnectHandler(handler func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = handler
}

// Register регистрирует клиента в хабе.
// Если у пользователя уже есть соединение, старое закрывается.
func (h *Hub) Register(client *Client) {
	var stale *Client

	h.mu.Lock()
	if existing, ok := h.byUser[client.UserID]; ok && existing != client {
		stale = existing
		h.removeLocked(existing)
	}
	h.clients[client] = true
	h.byUser[client.UserID] = client
	total := len(h.clients)
	h.mu.Unlock()

	if stale != nil {
		log.Printf("[Hub] Старое соединение пользователя %s (Conn: %s) вытеснено", stale.UserID, stale.ConnectionID)
		stale.CloseSend()
	}

	log.Printf("[Hub] Клиент %s (Conn: %s) зарегистрирован, всего клиентов: %d", client.UserID, client.ConnectionID, total)
}

// Unregister удаляет клиента из хаба и всех комнат
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, known := h.clients[client]
	if known {
		h.removeLocked(client)
	}
	handler := h.onDisconnect
	h.mu.Unlock()

	if !known {
		return
	}

	client.CloseSend()
	log.Printf("[Hub] Клиент %s (Conn: %s) отключен", client.UserID, client.ConnectionID)

	if handler != nil {
		handler(client)
	}
}

// removeLocked удаляет клиента из всех структур. Вызывается под h.mu.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	if h.byUser[client.UserID] == client {
		delete(h.byUser, client.UserID)
	}
	for code, room := range h.rooms {
		if room[client] {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, code)
			}
		}
	}
}

// JoinRoom добавляет клиента в комнату лобби
func (h *Hub) JoinRoom(code string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[code]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[code] = room
	}
	room[client] = true
}

// LeaveRoom убирает клиента из комнаты лобби
func (h *Hub) LeaveRoom(code string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, code)
	}
}

// BroadcastToRoom отправляет сообщение всем клиентам комнаты.
// Клиенты с переполненным буфером пропускаются, сообщение не блокирует хаб.
func (h *Hub) BroadcastToRoom(code string, message []byte) {
	h.mu.RLock()
	room := h.rooms[code]
	targets := make([]*Client, 0, len(room))
	for client := range room {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.TrySend(message) {
			log.Printf("[Hub] Буфер клиента %s переполнен, сообщение в комнате %s пропущено", client.UserID, code)
		}
	}
}

// SendToUser отправляет сообщение конкретному пользователю.
// Возвращает false, если пользователь не подключен или буфер переполнен.
func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mu.RLock()
	client, ok := h.byUser[userID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	return client.TrySend(message)
}

// RoomSize возвращает количество клиентов в комнате
func (h *Hub) RoomSize(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// ClientCount возвращает общее количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
