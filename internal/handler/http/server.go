package http

import (
	"FlexPBX-Admin/internal/auth"
	"FlexPBX-Admin/internal/config"
	"FlexPBX-Admin/internal/network"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/internal/securitylog"
	"FlexPBX-Admin/internal/service"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер панели администратора
type Server struct {
	authHandlers       *auth.AuthHandlers
	backupHandler      *BackupHandler
	supervisorHandler  *SupervisorHandler
	storagePathHandler *StoragePathHandler
	securityHandler    *SecurityHandler
	healthHandler      *HealthHandler
	authMiddleware     *auth.Middleware
	log                *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	guard *auth.Guard,
	classifier *network.Classifier,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	limiter *auth.IPRateLimiter,
	recorder *securitylog.Recorder,
	backupService *service.BackupService,
	supervisorService *service.SupervisorService,
	storagePathService *service.StoragePathService,
	sessionCfg *config.Session,
	log *zap.Logger,
) *Server {
	// Создаем handlers
	authHandlers := auth.NewAuthHandlers(storage, passwordService, jwtService, limiter, recorder, sessionCfg, log)
	backupHandler := NewBackupHandler(backupService, log)
	supervisorHandler := NewSupervisorHandler(supervisorService, log)
	storagePathHandler := NewStoragePathHandler(storagePathService, log)
	securityHandler := NewSecurityHandler(storage, log)
	healthHandler := NewHealthHandler(storage, log)

	// Создаем middleware
	authMiddleware := auth.NewMiddleware(storage, guard, classifier, jwtService, recorder, sessionCfg.CookieName, log)

	return &Server{
		authHandlers:       authHandlers,
		backupHandler:      backupHandler,
		supervisorHandler:  supervisorHandler,
		storagePathHandler: storagePathHandler,
		securityHandler:    securityHandler,
		healthHandler:      healthHandler,
		authMiddleware:     authMiddleware,
		log:                log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger документация
	mux.Handle("/api/v1/", httpSwagger.WrapHandler)

	// Auth endpoints (вход без аутентификации, rate limit внутри handler)
	mux.HandleFunc("/admin/api/auth/login", s.withCORS(s.authHandlers.Login))
	mux.HandleFunc("/admin/api/auth/logout", s.guarded(s.authHandlers.Logout))
	mux.HandleFunc("/admin/api/auth/token", s.guarded(s.authHandlers.IssueAPIToken))

	// Состояние сессии (сетевая зона, тип сессии, CSRF)
	mux.HandleFunc("/admin/api/session", s.guarded(s.authHandlers.SessionInfo))

	// Журнал безопасности
	mux.HandleFunc("/admin/api/security-events", s.guarded(s.securityHandler.ListEvents))

	// Backup endpoints
	mux.HandleFunc("/admin/api/backups", s.guarded(s.handleBackupsAPI))
	mux.HandleFunc("/admin/api/backups/", s.guarded(s.handleBackupAPI))

	// Supervisor endpoints (сессия или Bearer токен)
	mux.HandleFunc("/admin/api/supervisor/agents", s.guardedOrToken(s.supervisorHandler.ListAgents))
	mux.HandleFunc("/admin/api/supervisor/calls", s.guardedOrToken(s.supervisorHandler.ListActiveCalls))
	mux.HandleFunc("/admin/api/supervisor/monitor", s.guardedCSRF(s.supervisorHandler.Monitor))

	// Broadcast endpoint
	mux.HandleFunc("/admin/api/broadcast", s.guardedCSRF(s.supervisorHandler.Broadcast))

	// Storage paths endpoints
	mux.HandleFunc("/admin/api/storage-paths", s.guarded(s.handleStoragePathsAPI))

	return mux
}

// handleBackupsAPI обрабатывает /admin/api/backups с разными HTTP методами
func (s *Server) handleBackupsAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.backupHandler.ListBackups(w, r)
	case http.MethodPost:
		s.authMiddleware.RequireCSRF(s.backupHandler.CreateBackup)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBackupAPI обрабатывает /admin/api/backups/* endpoints
func (s *Server) handleBackupAPI(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case path == "/admin/api/backups/stats":
		s.backupHandler.GetStorageStats(w, r)
	case path == "/admin/api/backups/schedules":
		switch r.Method {
		case http.MethodGet:
			s.backupHandler.ListSchedules(w, r)
		case http.MethodPost:
			s.authMiddleware.RequireCSRF(s.backupHandler.CreateSchedule)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(path, "/admin/api/backups/schedules/"):
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.authMiddleware.RequireCSRF(s.backupHandler.DeleteSchedule)(w, r)
	case strings.HasSuffix(path, "/restore"):
		s.authMiddleware.RequireCSRF(s.backupHandler.RestoreBackup)(w, r)
	case strings.HasSuffix(path, "/verify"):
		s.authMiddleware.RequireCSRF(s.backupHandler.VerifyBackup)(w, r)
	default:
		switch r.Method {
		case http.MethodGet:
			s.backupHandler.GetBackup(w, r)
		case http.MethodDelete:
			s.authMiddleware.RequireCSRF(s.backupHandler.DeleteBackup)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleStoragePathsAPI обрабатывает /admin/api/storage-paths
func (s *Server) handleStoragePathsAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.storagePathHandler.GetStoragePaths(w, r)
	case http.MethodPut:
		s.authMiddleware.RequireCSRF(s.storagePathHandler.UpdateStoragePaths)(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// guarded цепочка CORS + session guard
func (s *Server) guarded(handler http.HandlerFunc) http.HandlerFunc {
	return s.withCORS(s.authMiddleware.RequireSession(handler))
}

// guardedOrToken цепочка CORS + session guard с поддержкой Bearer токенов
func (s *Server) guardedOrToken(handler http.HandlerFunc) http.HandlerFunc {
	return s.withCORS(s.authMiddleware.RequireSessionOrToken(handler))
}

// guardedCSRF цепочка CORS + session guard + CSRF проверка
func (s *Server) guardedCSRF(handler http.HandlerFunc) http.HandlerFunc {
	return s.withCORS(s.authMiddleware.RequireSession(s.authMiddleware.RequireCSRF(handler)))
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}
