package http

import (
	"FlexPBX-Admin/internal/auth"
	"FlexPBX-Admin/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// StoragePathHandler обработчик конфигурации путей хранения
type StoragePathHandler struct {
	paths *service.StoragePathService
	log   *zap.Logger
}

// NewStoragePathHandler создает новый обработчик путей хранения
func NewStoragePathHandler(paths *service.StoragePathService, log *zap.Logger) *StoragePathHandler {
	return &StoragePathHandler{
		paths: paths,
		log:   log,
	}
}

// GetStoragePaths возвращает текущие пути хранения
//
//	@Summary		Get storage paths
//	@Description	Current mapping of storage purposes to filesystem paths
//	@Tags			Storage
//	@Produce		json
//	@Success		200	{object}	service.StoragePaths	"Storage paths"
//	@Failure		401	{object}	map[string]string		"Authentication required"
//	@Router			/admin/api/storage-paths [get]
func (h *StoragePathHandler) GetStoragePaths(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.paths.Get(), http.StatusOK)
}

// UpdateStoragePaths обновляет пути хранения
//
//	@Summary		Update storage paths
//	@Tags			Storage
//	@Accept			json
//	@Produce		json
//	@Param			request	body		service.StoragePaths	true	"New storage paths"
//	@Success		200		{object}	service.StoragePaths	"Updated storage paths"
//	@Failure		400		{object}	map[string]string		"Invalid storage path"
//	@Failure		401		{object}	map[string]string		"Authentication required"
//	@Router			/admin/api/storage-paths [put]
func (h *StoragePathHandler) UpdateStoragePaths(w http.ResponseWriter, r *http.Request) {
	var paths service.StoragePaths
	if err := json.NewDecoder(r.Body).Decode(&paths); err != nil {
		h.log.Debug("invalid storage paths request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.paths.Update(paths); err != nil {
		if errors.Is(err, service.ErrInvalidStoragePath) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("failed to update storage paths", zap.Error(err))
		h.writeError(w, "Failed to update storage paths", http.StatusInternalServerError)
		return
	}

	identity, _ := auth.GetIdentityFromContext(r.Context())
	h.log.Info("storage paths changed", zap.String("admin", identity.Username))

	h.writeJSON(w, h.paths.Get(), http.StatusOK)
}

// Helper methods

func (h *StoragePathHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *StoragePathHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
