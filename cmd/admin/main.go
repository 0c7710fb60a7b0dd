// Package main provides the entry point for the FlexPBX admin panel service.
//
//	@title			FlexPBX Admin API
//	@version		1.0.0
//	@description	Administration panel backend for the FlexPBX telephony system.
//
//	@contact.name	FlexPBX Support
//	@contact.email	support@flexpbx.local
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
//
//	@externalDocs.description	OpenAPI Specification
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main

import (
	"FlexPBX-Admin/internal/auth"
	"FlexPBX-Admin/internal/config"
	"FlexPBX-Admin/internal/database"
	"FlexPBX-Admin/internal/domain"
	httpHandler "FlexPBX-Admin/internal/handler/http"
	"FlexPBX-Admin/internal/network"
	"FlexPBX-Admin/internal/pbx"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/internal/repository/memory"
	"FlexPBX-Admin/internal/repository/postgres"
	"FlexPBX-Admin/internal/securitylog"
	"FlexPBX-Admin/internal/service"
	"FlexPBX-Admin/pkg/logger"
	"FlexPBX-Admin/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "FlexPBX-Admin/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting FlexPBX admin panel service", zap.String("env", cfg.Env))

	passwordService := auth.NewPasswordService(cfg.Auth.BcryptCost)

	// Initialize storage (postgres by default, in-memory for development)
	var storage repository.Storage
	if cfg.Database.InMemory {
		log.Info("using in-memory storage (db.in_memory: true)")
		storage = memory.New()
		if err := seedMemoryAdmin(storage, passwordService, log); err != nil {
			log.Fatal("failed to seed default admin", zap.Error(err))
		}
	} else {
		db, err := database.NewConnection(&cfg.Database, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := database.Close(db, log); err != nil {
				log.Error("failed to close database connection", zap.Error(err))
			}
		}()

		if cfg.Database.AutoMigrate {
			log.Info("running database migrations (auto_migrate: true)")
			if err := database.AutoMigrate(db, log); err != nil {
				log.Fatal("failed to run database migrations", zap.Error(err))
			}
		} else {
			log.Info("skipping database migrations (auto_migrate: false)")
		}

		defaultAdmin, err := defaultAdminAccount(passwordService)
		if err != nil {
			log.Fatal("failed to prepare default admin", zap.Error(err))
		}
		if defaultAdmin != nil {
			if err := database.SeedData(db, log, defaultAdmin); err != nil {
				log.Fatal("failed to seed database", zap.Error(err))
			}
		}

		storage = postgres.New(db, log)
	}

	// Initialize User-Agent parser for security event enrichment
	if err := useragent.InitGlobalParser(cfg.Auth.UARegexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using fallback", zap.Error(err))
	}

	// Async security event recorder
	recorder := securitylog.NewRecorder(storage, log, securitylog.DefaultConfig())
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start security event recorder", zap.Error(err))
	}
	defer func() {
		if err := recorder.Stop(); err != nil {
			log.Error("failed to stop security event recorder", zap.Error(err))
		}
	}()

	// Session guard and network classifier
	classifier := network.NewClassifier(cfg.Network.WireguardCIDR)
	guard := auth.NewGuard(auth.GuardPolicy{
		ExtendedTrusted: time.Duration(cfg.Session.ExtendedTrustedDays) * 24 * time.Hour,
		ExtendedPublic:  time.Duration(cfg.Session.ExtendedPublicDays) * 24 * time.Hour,
	})

	// JWT service for headless API clients
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:        []byte(cfg.Auth.JWTSecret),
		APITokenDuration: time.Duration(cfg.Auth.APITokenTTLMinutes) * time.Minute,
		Issuer:           "FlexPBX-Admin",
	})

	// Login rate limiter (per client IP)
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.Auth.LoginRatePerMinute/60.0), cfg.Auth.LoginRateBurst)

	// Storage paths with hot reload
	storagePathService, err := service.NewStoragePathService(cfg.Storage.PathsFile, log)
	if err != nil {
		log.Fatal("failed to initialize storage paths", zap.Error(err))
	}
	defer func() {
		if err := storagePathService.Close(); err != nil {
			log.Error("failed to close storage paths watcher", zap.Error(err))
		}
	}()

	// Domain services
	backupEngine := service.NewLocalEngine(storagePathService, log)
	backupService := service.NewBackupService(backupEngine, storage, log)
	pbxClient := pbx.NewClient(&cfg.PBX, log)
	supervisorService := service.NewSupervisorService(pbxClient, log)

	// HTTP server
	apiServer := httpHandler.NewServer(
		storage,
		guard,
		classifier,
		jwtService,
		passwordService,
		limiter,
		recorder,
		backupService,
		supervisorService,
		storagePathService,
		&cfg.Session,
		log,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  time.Duration(cfg.HTTPServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTPServer.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.HTTPServer.IdleTimeout) * time.Second,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Background sweep of expired sessions (expiry itself is lazy;
	// the sweep only keeps the table from growing)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweepExpiredSessions(sweepCtx, storage, log, time.Duration(cfg.Session.SweepIntervalSeconds)*time.Second)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down FlexPBX admin panel service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTPServer.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}

// defaultAdminAccount строит начальную учетную запись из переменных
// окружения; без ADMIN_INITIAL_PASSWORD ничего не создается
func defaultAdminAccount(passwords *auth.PasswordService) (*domain.Admin, error) {
	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		return nil, nil
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	username := os.Getenv("ADMIN_INITIAL_USERNAME")
	if username == "" {
		username = "admin"
	}

	return &domain.Admin{
		Username:     username,
		Email:        username + "@flexpbx.local",
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	}, nil
}

func seedMemoryAdmin(storage repository.Storage, passwords *auth.PasswordService, log *zap.Logger) error {
	admin, err := defaultAdminAccount(passwords)
	if err != nil {
		return err
	}
	if admin == nil {
		log.Warn("ADMIN_INITIAL_PASSWORD not set, in-memory storage has no accounts")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return storage.CreateAdmin(ctx, admin)
}

// sweepExpiredSessions периодически удаляет истекшие сессии
func sweepExpiredSessions(ctx context.Context, storage repository.Storage, log *zap.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep, cancel := context.WithTimeout(ctx, 30*time.Second)
			removed, err := storage.DeleteExpiredSessions(sweep, time.Now())
			cancel()
			if err != nil {
				log.Error("session sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				log.Info("expired sessions removed", zap.Int64("count", removed))
			}
		}
	}
}
