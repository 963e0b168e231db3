package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/service"
	"github.com/ahirvonen/chatserver/internal/transport/http/middleware"
	"github.com/ahirvonen/chatserver/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
	logger         *zap.Logger
}

func NewMessageHandler(messageService *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

type postMessageInput struct {
	Message string `json:"message"`
	// Sent is accepted for display compatibility but the server stamps the
	// authoritative time, so clients cannot forge history order.
	Sent string `json:"sent,omitempty"`
}

type editMessageInput struct {
	Message string `json:"message"`
}

// Post appends a new message to a channel as the authenticated user.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())
	channel := r.PathValue("channel")

	var input postMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if verrs := validator.ValidateMessage(channel, input.Message); verrs.HasErrors() {
		writeValidationErrors(w, verrs)
		return
	}

	msg, err := h.messageService.Post(r.Context(), caller.Username, channel, input.Message)
	if err != nil {
		h.writeMessageError(w, err, "post message")
		return
	}

	writeJSON(w, http.StatusCreated, toDTO(*msg))
}

// Edit rewrites one of the caller's own messages.
func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input editMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Message == "" {
		writeError(w, http.StatusBadRequest, "MISSING_MESSAGE", "Message body is required")
		return
	}

	msg, err := h.messageService.Edit(r.Context(), caller.Username, id, input.Message)
	if err != nil {
		h.writeMessageError(w, err, "edit message")
		return
	}

	writeJSON(w, http.StatusOK, toDTO(*msg))
}

// Delete tombstones one of the caller's own messages.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetPrincipal(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := h.messageService.Delete(r.Context(), caller.Username, id); err != nil {
		h.writeMessageError(w, err, "delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Channels lists every channel name seen so far.
func (h *MessageHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.messageService.Channels(r.Context())
	if err != nil {
		h.writeMessageError(w, err, "list channels")
		return
	}

	if channels == nil {
		channels = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

func (h *MessageHandler) writeMessageError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
	case errors.Is(err, errs.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You can only modify your own messages")
	case errors.Is(err, errs.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is unavailable")
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
