package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/service"
)

// MessageHandler handles message endpoints
type MessageHandler struct {
	chatService *service.ChatService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(chatService *service.ChatService) *MessageHandler {
	return &MessageHandler{chatService: chatService}
}

// Append stores a message in one of the caller's conversations. User
// messages are forwarded to the agent; the reply arrives asynchronously.
func (h *MessageHandler) Append(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var input domain.MessageCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	msg, err := h.chatService.AppendMessage(r.Context(), identity.UserID, input)
	if err != nil {
		h.writeChatError(w, err, "failed to append message")
		return
	}

	response.OK(w, msg)
}

// Page returns a window of messages in oldest-first order. The cursor is
// the nextCursor value from a previous page.
func (h *MessageHandler) Page(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		response.BadRequest(w, "missing conversationId")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	var cursor *time.Time
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			response.BadRequest(w, "invalid cursor")
			return
		}
		cursor = &parsed
	}

	page, err := h.chatService.PageMessages(r.Context(), identity.UserID, conversationID, limit, cursor)
	if err != nil {
		h.writeChatError(w, err, "failed to load messages")
		return
	}

	response.OK(w, page)
}

// writeChatError maps chat service errors onto HTTP statuses. Ownership
// failures read as not-found so conversation ids are not probeable.
func (h *MessageHandler) writeChatError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		response.BadRequest(w, "invalid conversation id")
	case errors.Is(err, domain.ErrConversationNotOwned):
		response.Forbidden(w, "conversation not found")
	default:
		response.InternalError(w, fallback)
	}
}
