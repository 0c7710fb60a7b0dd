package http

import (
	"FlexPBX-Admin/internal/auth"
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// BackupHandler обработчик управления резервными копиями
type BackupHandler struct {
	backups *service.BackupService
	log     *zap.Logger
}

// NewBackupHandler создает новый обработчик резервных копий
func NewBackupHandler(backups *service.BackupService, log *zap.Logger) *BackupHandler {
	return &BackupHandler{
		backups: backups,
		log:     log,
	}
}

// CreateBackupRequest структура запроса создания резервной копии
type CreateBackupRequest struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
}

// ScheduleBackupRequest структура запроса создания расписания
type ScheduleBackupRequest struct {
	Name       string   `json:"name"`
	CronExpr   string   `json:"cron_expr"`
	Components []string `json:"components"`
	Retention  int      `json:"retention_days"`
	Enabled    bool     `json:"enabled"`
}

// VerifyBackupResponse структура ответа проверки целостности
type VerifyBackupResponse struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
}

// ListBackups возвращает список резервных копий
//
//	@Summary		List backups
//	@Description	List all available backups
//	@Tags			Backups
//	@Produce		json
//	@Success		200	{array}		domain.BackupInfo	"Backups"
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/admin/api/backups [get]
func (h *BackupHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backups.List(r.Context())
	if err != nil {
		h.log.Error("failed to list backups", zap.Error(err))
		h.writeError(w, "Failed to list backups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, backups, http.StatusOK)
}

// CreateBackup запускает создание резервной копии
//
//	@Summary		Create a backup
//	@Description	Start creation of a new backup
//	@Tags			Backups
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateBackupRequest	true	"Backup request"
//	@Success		202		{object}	domain.BackupInfo	"Backup started"
//	@Failure		400		{object}	map[string]string	"Invalid request data"
//	@Failure		401		{object}	map[string]string	"Authentication required"
//	@Router			/admin/api/backups [post]
func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create backup request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	info, err := h.backups.Create(r.Context(), req.Name, req.Components)
	if err != nil {
		if errors.Is(err, service.ErrInvalidComponent) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("failed to create backup", zap.String("name", req.Name), zap.Error(err))
		h.writeError(w, "Failed to create backup", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, info, http.StatusAccepted)
}

// GetBackup возвращает детали резервной копии
//
//	@Summary		Get backup details
//	@Tags			Backups
//	@Produce		json
//	@Param			id	path		string				true	"Backup ID"
//	@Success		200	{object}	domain.BackupInfo	"Backup details"
//	@Failure		404	{object}	map[string]string	"Backup not found"
//	@Router			/admin/api/backups/{id} [get]
func (h *BackupHandler) GetBackup(w http.ResponseWriter, r *http.Request) {
	id := h.backupID(r, "/admin/api/backups/")
	if id == "" {
		h.writeError(w, "Backup ID is required", http.StatusBadRequest)
		return
	}

	info, err := h.backups.GetDetails(r.Context(), id)
	if err != nil {
		h.log.Error("failed to get backup details", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Backup not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, info, http.StatusOK)
}

// DeleteBackup удаляет резервную копию
//
//	@Summary		Delete a backup
//	@Tags			Backups
//	@Produce		json
//	@Param			id	path		string				true	"Backup ID"
//	@Success		200	{object}	map[string]string	"Backup deleted"
//	@Failure		404	{object}	map[string]string	"Backup not found"
//	@Router			/admin/api/backups/{id} [delete]
func (h *BackupHandler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	id := h.backupID(r, "/admin/api/backups/")
	if id == "" {
		h.writeError(w, "Backup ID is required", http.StatusBadRequest)
		return
	}

	if err := h.backups.Delete(r.Context(), id); err != nil {
		h.log.Error("failed to delete backup", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Failed to delete backup", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// RestoreBackup восстанавливает систему из резервной копии
//
//	@Summary		Restore from a backup
//	@Tags			Backups
//	@Produce		json
//	@Param			id	path		string				true	"Backup ID"
//	@Success		202	{object}	map[string]string	"Restore started"
//	@Failure		404	{object}	map[string]string	"Backup not found"
//	@Router			/admin/api/backups/{id}/restore [post]
func (h *BackupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	id := h.backupID(r, "/admin/api/backups/")
	id = strings.TrimSuffix(id, "/restore")
	if id == "" {
		h.writeError(w, "Backup ID is required", http.StatusBadRequest)
		return
	}

	identity, _ := auth.GetIdentityFromContext(r.Context())
	h.log.Info("backup restore requested",
		zap.String("id", id),
		zap.String("admin", identity.Username))

	if err := h.backups.Restore(r.Context(), id); err != nil {
		h.log.Error("failed to restore backup", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Failed to restore backup", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "restoring", "id": id}, http.StatusAccepted)
}

// VerifyBackup проверяет целостность резервной копии
//
//	@Summary		Verify backup integrity
//	@Tags			Backups
//	@Produce		json
//	@Param			id	path		string					true	"Backup ID"
//	@Success		200	{object}	VerifyBackupResponse	"Verification result"
//	@Failure		404	{object}	map[string]string		"Backup not found"
//	@Router			/admin/api/backups/{id}/verify [post]
func (h *BackupHandler) VerifyBackup(w http.ResponseWriter, r *http.Request) {
	id := h.backupID(r, "/admin/api/backups/")
	id = strings.TrimSuffix(id, "/verify")
	if id == "" {
		h.writeError(w, "Backup ID is required", http.StatusBadRequest)
		return
	}

	valid, err := h.backups.Verify(r.Context(), id)
	if err != nil {
		h.log.Error("failed to verify backup", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Failed to verify backup", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, VerifyBackupResponse{ID: id, Valid: valid}, http.StatusOK)
}

// GetStorageStats возвращает статистику хранилища резервных копий
//
//	@Summary		Backup storage statistics
//	@Tags			Backups
//	@Produce		json
//	@Success		200	{object}	domain.BackupStorageStats	"Storage statistics"
//	@Router			/admin/api/backups/stats [get]
func (h *BackupHandler) GetStorageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backups.GetStorageStats(r.Context())
	if err != nil {
		h.log.Error("failed to get backup storage stats", zap.Error(err))
		h.writeError(w, "Failed to get storage stats", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, stats, http.StatusOK)
}

// ListSchedules возвращает расписания резервного копирования
//
//	@Summary		List backup schedules
//	@Tags			Backups
//	@Produce		json
//	@Success		200	{array}	domain.BackupSchedule	"Schedules"
//	@Router			/admin/api/backups/schedules [get]
func (h *BackupHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.backups.ListSchedules(r.Context())
	if err != nil {
		h.log.Error("failed to list backup schedules", zap.Error(err))
		h.writeError(w, "Failed to list schedules", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, schedules, http.StatusOK)
}

// CreateSchedule создает расписание резервного копирования
//
//	@Summary		Create a backup schedule
//	@Tags			Backups
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ScheduleBackupRequest	true	"Schedule request"
//	@Success		201		{object}	domain.BackupSchedule	"Schedule created"
//	@Failure		400		{object}	map[string]string		"Invalid request data"
//	@Router			/admin/api/backups/schedules [post]
func (h *BackupHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create schedule request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	identity, _ := auth.GetIdentityFromContext(r.Context())

	schedule := &domain.BackupSchedule{
		Name:       req.Name,
		CronExpr:   req.CronExpr,
		Components: strings.Join(req.Components, ","),
		Retention:  req.Retention,
		Enabled:    req.Enabled,
		CreatedBy:  identity.Username,
	}

	if err := h.backups.Schedule(r.Context(), schedule); err != nil {
		if errors.Is(err, service.ErrInvalidSchedule) || errors.Is(err, service.ErrInvalidComponent) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("failed to create backup schedule", zap.String("name", req.Name), zap.Error(err))
		h.writeError(w, "Failed to create schedule", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, schedule, http.StatusCreated)
}

// DeleteSchedule удаляет расписание резервного копирования
//
//	@Summary		Delete a backup schedule
//	@Tags			Backups
//	@Produce		json
//	@Param			id	path		string				true	"Schedule ID"
//	@Success		200	{object}	map[string]string	"Schedule deleted"
//	@Failure		404	{object}	map[string]string	"Schedule not found"
//	@Router			/admin/api/backups/schedules/{id} [delete]
func (h *BackupHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := h.backupID(r, "/admin/api/backups/schedules/")
	if id == "" {
		h.writeError(w, "Schedule ID is required", http.StatusBadRequest)
		return
	}

	if err := h.backups.DeleteSchedule(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			h.writeError(w, "Schedule not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete backup schedule", zap.String("id", id), zap.Error(err))
		h.writeError(w, "Failed to delete schedule", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "deleted", "id": id}, http.StatusOK)
}

// backupID извлекает идентификатор из пути запроса
func (h *BackupHandler) backupID(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// Helper methods

func (h *BackupHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *BackupHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
