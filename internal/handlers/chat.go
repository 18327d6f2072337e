package handlers

import (
	"context"
	"net/http"
	"time"

	"therapy-booking-server/internal/logger"
	"therapy-booking-server/internal/middleware"
	"therapy-booking-server/internal/services"
	"therapy-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// ChatHandler serves the per-appointment chat.
type ChatHandler struct {
	Chat     *services.ChatService
	upgrader websocket.Upgrader
}

// NewChatHandler creates a new ChatHandler. Websocket upgrades are accepted
// from origin only, or from anywhere when origin is "*" or empty.
func NewChatHandler(chat *services.ChatService, origin string) *ChatHandler {
	return &ChatHandler{
		Chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origin == "" || origin == "*" {
					return true
				}
				o := r.Header.Get("Origin")
				return o == "" || o == origin
			},
		},
	}
}

// GetMessages returns the chat oldest first.
func (h *ChatHandler) GetMessages(c *gin.Context) {
	id, ok := idParam(c, "id", "appointment")
	if !ok {
		return
	}
	messages, err := h.Chat.List(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Messages fetched successfully", messages)
}

// SendMessageRequest represents the request body for posting a message.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage appends a message to a confirmed appointment's chat.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := idParam(c, "id", "appointment")
	if !ok {
		return
	}
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	msg, err := h.Chat.Send(c.Request.Context(), middleware.ActorFromContext(c), id, req.Message)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Message sent successfully", msg)
}

// Stream upgrades to a websocket and pushes the full message list on
// connect and after every new message. Authorization happens before the
// upgrade so refusals are plain HTTP errors.
func (h *ChatHandler) Stream(c *gin.Context) {
	id, ok := idParam(c, "id", "appointment")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates, err := h.Chat.Watch(ctx, middleware.ActorFromContext(c), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("chat websocket upgrade failed", zap.String("appointment_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.NewString()
	log := logger.Log.With(zap.String("appointment_id", id), zap.String("client_id", clientID))
	log.Debug("chat websocket connected")

	go readUntilClosed(conn, cancel)

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case views, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				log.Debug("chat websocket closed")
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(views); err != nil {
				log.Debug("chat websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client frames so control messages are handled and
// cancels the stream once the peer goes away.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
