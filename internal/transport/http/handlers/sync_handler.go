package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ahirvonen/chatserver/internal/errs"
	"github.com/ahirvonen/chatserver/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
	logger      *zap.Logger
}

func NewSyncHandler(syncService *service.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{syncService: syncService, logger: logger}
}

// Fetch is the polling endpoint. The client's watermark rides in the
// If-Modified-Since header; the next watermark is returned in Last-Modified.
// An empty delta is a 204 with neither body nor header, so the client keeps
// polling with its previous watermark.
func (h *SyncHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	channel := r.PathValue("channel")

	var watermark *int64
	if header := r.Header.Get("If-Modified-Since"); header != "" {
		since, err := parseWatermark(header)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_WATERMARK", "Unparseable If-Modified-Since timestamp")
			return
		}
		watermark = &since
	}

	messages, newWatermark, err := h.syncService.Query(r.Context(), channel, watermark)
	if err != nil {
		if errors.Is(err, errs.ErrStorageUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Storage is unavailable")
			return
		}
		h.logger.Error("sync query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	if len(messages) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	dtos := make([]messageDTO, 0, len(messages))
	for _, msg := range messages {
		dtos = append(dtos, toDTO(msg))
	}

	w.Header().Set("Last-Modified", formatWatermark(newWatermark))
	writeJSON(w, http.StatusOK, dtos)
}
