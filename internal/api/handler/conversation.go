package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/service"
)

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	chatService *service.ChatService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(chatService *service.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

// Create starts a new conversation. All fields are optional; an empty
// body yields an untitled conversation with the default agent.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	var input domain.ConversationCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	conv, err := h.chatService.CreateConversation(r.Context(), identity.UserID, input)
	if err != nil {
		response.InternalError(w, "failed to create conversation")
		return
	}

	response.OK(w, conv)
}

// List returns the caller's conversations, most recently active first
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
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

	conversations, err := h.chatService.ListConversations(r.Context(), identity.UserID, limit)
	if err != nil {
		response.InternalError(w, "failed to list conversations")
		return
	}

	response.OK(w, conversations)
}
