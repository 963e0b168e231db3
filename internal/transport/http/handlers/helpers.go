package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ahirvonen/chatserver/internal/domain"
	"github.com/ahirvonen/chatserver/pkg/validator"
)

// watermarkLayout is the wire format for sync timestamps: RFC 3339 with
// millisecond precision, always UTC.
const watermarkLayout = "2006-01-02T15:04:05.000Z07:00"

func formatWatermark(epochMillis int64) string {
	return time.UnixMilli(epochMillis).UTC().Format(watermarkLayout)
}

func parseWatermark(s string) (int64, error) {
	t, err := time.Parse(watermarkLayout, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// messageDTO is the wire shape of a message. Sent is the formatted UTC
// timestamp; Tag is empty, "<edited>" or "<deleted>".
type messageDTO struct {
	ID      int64  `json:"id"`
	User    string `json:"user"`
	Message string `json:"message"`
	Sent    string `json:"sent"`
	Tag     string `json:"tag,omitempty"`
}

func toDTO(msg domain.Message) messageDTO {
	return messageDTO{
		ID:      msg.ID,
		User:    msg.Author,
		Message: msg.Body,
		Sent:    formatWatermark(msg.Sent),
		Tag:     msg.Tag.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}
