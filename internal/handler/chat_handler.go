package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/mangaswap/mangaswap-backend/internal/service"
	"go.uber.org/zap"
)

type ChatHandler struct {
	svc service.ChatService
	log *zap.Logger
}

func NewChatHandler(svc service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SendMessageRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *ChatHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chats, err := h.svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch chats")
	}
	return c.JSON(http.StatusOK, chats)
}

func (h *ChatHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}
	chat, err := h.svc.Get(c.Request().Context(), chatID, uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch chat")
	}
	return c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), chatID, uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch messages")
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	msg, err := h.svc.SendMessage(c.Request().Context(), chatID, uid, req.Body)
	if err != nil {
		return serviceError(c, err, "failed to send message")
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) Unsend(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}
	msgID, err := strconv.ParseUint(c.Param("msgId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid message id"))
	}
	if err := h.svc.Unsend(c.Request().Context(), chatID, msgID, uid); err != nil {
		return serviceError(c, err, "failed to unsend message")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ChatHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}
	if err := h.svc.DeleteChannel(c.Request().Context(), chatID, uid); err != nil {
		return serviceError(c, err, "failed to delete chat")
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream upgrades to a WebSocket and pushes message/unsend events for the
// chat until the client disconnects. The subscription is torn down on every
// exit path.
func (h *ChatHandler) Stream(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid chat id"))
	}

	events, cancel, err := h.svc.Subscribe(c.Request().Context(), chatID, uid)
	if err != nil {
		return serviceError(c, err, "failed to subscribe")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		h.log.Warn("websocket upgrade failed", zap.Uint64("chatId", chatID), zap.Error(err))
		return err
	}
	defer conn.Close()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
