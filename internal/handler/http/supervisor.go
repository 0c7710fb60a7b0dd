package http

import (
	"FlexPBX-Admin/internal/auth"
	"FlexPBX-Admin/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// SupervisorHandler обработчик панели супервизора
type SupervisorHandler struct {
	supervisor *service.SupervisorService
	log        *zap.Logger
}

// NewSupervisorHandler создает новый обработчик супервизора
func NewSupervisorHandler(supervisor *service.SupervisorService, log *zap.Logger) *SupervisorHandler {
	return &SupervisorHandler{
		supervisor: supervisor,
		log:        log,
	}
}

// MonitorRequest структура запроса мониторинга вызова
type MonitorRequest struct {
	CallID        string `json:"call_id"`
	Mode          string `json:"mode"`
	SupervisorExt string `json:"supervisor_ext"`
}

// BroadcastRequest структура запроса широковещательного сообщения
type BroadcastRequest struct {
	Message    string   `json:"message"`
	Extensions []string `json:"extensions,omitempty"`
}

// ListAgents возвращает состояние агентов
//
//	@Summary		List agents
//	@Description	Current agent states from the PBX
//	@Tags			Supervisor
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		service.Agent		"Agents"
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/admin/api/supervisor/agents [get]
func (h *SupervisorHandler) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.supervisor.ListAgents(r.Context())
	if err != nil {
		h.log.Error("failed to list agents", zap.Error(err))
		h.writeError(w, "Failed to list agents", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, agents, http.StatusOK)
}

// ListActiveCalls возвращает активные вызовы
//
//	@Summary		List active calls
//	@Tags			Supervisor
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		service.ActiveCall	"Active calls"
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/admin/api/supervisor/calls [get]
func (h *SupervisorHandler) ListActiveCalls(w http.ResponseWriter, r *http.Request) {
	calls, err := h.supervisor.ListActiveCalls(r.Context())
	if err != nil {
		h.log.Error("failed to list active calls", zap.Error(err))
		h.writeError(w, "Failed to list active calls", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, calls, http.StatusOK)
}

// Monitor подключает супервизора к вызову
//
//	@Summary		Monitor a call
//	@Description	Attach the supervisor to a call in listen, whisper or barge mode
//	@Tags			Supervisor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MonitorRequest		true	"Monitor request"
//	@Success		200		{object}	map[string]string	"Monitoring started"
//	@Failure		400		{object}	map[string]string	"Invalid monitor mode"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/admin/api/supervisor/monitor [post]
func (h *SupervisorHandler) Monitor(w http.ResponseWriter, r *http.Request) {
	var req MonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid monitor request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.CallID == "" {
		h.writeError(w, "Call ID is required", http.StatusBadRequest)
		return
	}

	identity, _ := auth.GetIdentityFromContext(r.Context())
	h.log.Info("call monitoring requested",
		zap.String("call_id", req.CallID),
		zap.String("mode", req.Mode),
		zap.String("admin", identity.Username))

	if err := h.supervisor.Monitor(r.Context(), req.CallID, req.Mode, req.SupervisorExt); err != nil {
		if errors.Is(err, service.ErrInvalidMonitorMode) {
			h.writeError(w, "Invalid monitor mode: must be listen, whisper or barge", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to start monitoring",
			zap.String("call_id", req.CallID),
			zap.Error(err))
		h.writeError(w, "Failed to start monitoring", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "monitoring",
		"call_id": req.CallID,
		"mode":    req.Mode,
	}, http.StatusOK)
}

// Broadcast рассылает сообщение на указанные или все внутренние номера
//
//	@Summary		Broadcast a message
//	@Tags			Supervisor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BroadcastRequest	true	"Broadcast request"
//	@Success		200		{object}	map[string]string	"Broadcast sent"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Router			/admin/api/broadcast [post]
func (h *SupervisorHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid broadcast request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.supervisor.Broadcast(r.Context(), req.Message, req.Extensions); err != nil {
		if errors.Is(err, service.ErrEmptyBroadcast) {
			h.writeError(w, "Broadcast message is required", http.StatusBadRequest)
			return
		}
		h.log.Error("failed to broadcast message", zap.Error(err))
		h.writeError(w, "Failed to broadcast message", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]string{"status": "sent"}, http.StatusOK)
}

// Helper methods

func (h *SupervisorHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *SupervisorHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
