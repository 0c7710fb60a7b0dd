package http

import (
	"FlexPBX-Admin/internal/repository"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const defaultEventLimit = 100

// SecurityHandler обработчик журнала безопасности
type SecurityHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewSecurityHandler создает новый обработчик журнала безопасности
func NewSecurityHandler(storage repository.Storage, log *zap.Logger) *SecurityHandler {
	return &SecurityHandler{
		storage: storage,
		log:     log,
	}
}

// ListEvents возвращает последние события безопасности
//
//	@Summary		List security events
//	@Description	Recent security events, newest first
//	@Tags			Security
//	@Produce		json
//	@Param			limit	query		int						false	"Max events to return (default 100)"
//	@Success		200		{array}		domain.SecurityEvent	"Security events"
//	@Failure		401		{object}	map[string]string		"Authentication required"
//	@Router			/admin/api/security-events [get]
func (h *SecurityHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.storage.ListSecurityEvents(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list security events", zap.Error(err))
		h.writeError(w, "Failed to list security events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(events)
}

func (h *SecurityHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
