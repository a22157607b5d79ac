package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"redesocial/internal/httputil"
	"redesocial/internal/model"
	"redesocial/internal/service"
	"redesocial/internal/transport/http/middleware"
)

// MessageHandler handles direct message endpoints
type MessageHandler struct {
	messageService *service.MessageService
	validate       *validator.Validate
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validate:       validator.New(),
	}
}

// Send handles POST /api/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	msg, err := h.messageService.Send(r.Context(), senderID, req.PartnerID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyMessage):
			httputil.WriteBadRequest(w, "Message cannot be empty")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrNotFriends):
			httputil.WriteForbidden(w, "You can only message friends")
		default:
			log.Printf("[MessageHandler] send failed: %v", err)
			httputil.WriteInternalError(w, "Failed to send message")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// ListSince handles GET /api/messages/{userID}?since_id=N
// Returns messages exchanged with the given partner that have id > since_id,
// oldest first. since_id defaults to 0 (full history).
func (h *MessageHandler) ListSince(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	partnerID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	sinceID := int64(0)
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		sinceID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || sinceID < 0 {
			httputil.WriteBadRequest(w, "Invalid since_id")
			return
		}
	}

	messages, err := h.messageService.MessagesSince(r.Context(), userID, partnerID, sinceID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrNotFriends):
			httputil.WriteForbidden(w, "You can only message friends")
		default:
			log.Printf("[MessageHandler] list failed: %v", err)
			httputil.WriteInternalError(w, "Failed to load messages")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.MessageListResponse{Messages: messages})
}
