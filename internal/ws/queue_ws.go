package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"queueroom/internal/apperr"
	"queueroom/internal/models"
	"queueroom/internal/response"
	"queueroom/internal/rooms"
	"queueroom/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// RoomLookup находит комнату перед подпиской.
type RoomLookup interface {
	FindRoomByID(ctx context.Context, id string) (*models.QueueRoom, error)
}

// Hub хранит подключения клиентов, сгруппированные по roomID.
type Hub struct {
	rooms      RoomLookup
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan BroadcastMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// BroadcastMessage представляет сообщение для рассылки в определённую комнату.
type BroadcastMessage struct {
	RoomID  string
	Message []byte
}

// NewHub creates a hub. With a nil lookup every room id is accepted.
func NewHub(lookup RoomLookup) *Hub {
	return &Hub{
		rooms:      lookup,
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan BroadcastMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает каналы хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.RoomID] == nil {
				h.clients[client.RoomID] = make(map[*Client]bool)
			}
			h.clients[client.RoomID][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.RoomID] {
				select {
				case client.Send <- message.Message:
				default:
					// медленный клиент
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client. Caller holds h.mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.clients[client.RoomID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.RoomID)
	}
}

// Subscribers returns the number of clients listening to a room.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[roomID])
}

// Publish queues a room event for delivery. Events are dropped when the
// hub is backed up.
func (h *Hub) Publish(event rooms.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("failed to encode room event")
		return
	}
	select {
	case h.broadcast <- BroadcastMessage{RoomID: event.RoomID, Message: payload}:
	default:
		log.Warn().Str("module", "ws").Str("room_id", event.RoomID).Str("event", event.Type).Msg("broadcast queue full, event dropped")
	}
}

// Client представляет одно подключение через WebSocket.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	RoomID string
}

// readPump только отслеживает разрыв соединения, входящие сообщения игнорируются.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump отправляет сообщения клиенту из канала Send.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RoomWebSocketHandler подписывает клиента на события комнаты.
//
//	@Summary		Подписка на события комнаты
//	@Description	Upgrades to a websocket receiving entry_joined, entry_left, room_updated and room_deleted events
//	@Tags			queue-room
//	@Param			id	path	string	true	"ID комнаты"
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/api/v1/queue-room/{id}/ws [get]
func (h *Hub) RoomWebSocketHandler(c *gin.Context) {
	roomID := c.Param("id")
	if h.rooms != nil {
		_, err := h.rooms.FindRoomByID(c.Request.Context(), roomID)
		if errors.Is(err, storage.ErrNotFound) {
			response.Error(c, apperr.New(apperr.NotFound, "No queue exists with the given id."))
			return
		}
		if err != nil {
			response.Error(c, apperr.Wrap(apperr.Internal, err, "An unexpected error occurred while loading the queue."))
			return
		}
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "ws").Msg("websocket upgrade failed")
		return
	}
	client := &Client{
		Hub:    h,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		RoomID: roomID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
