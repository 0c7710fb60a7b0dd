package repository

import (
	"FlexPBX-Admin/internal/domain"
	"context"
	"errors"
	"time"
)

var (
	ErrAdminNotFound    = errors.New("admin not found")
	ErrAdminExists      = errors.New("admin already exists")
	ErrSessionNotFound  = errors.New("session not found")
	ErrScheduleNotFound = errors.New("backup schedule not found")
)

type Storage interface {
	// Admin methods
	GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	UpdateAdmin(ctx context.Context, admin *domain.Admin) error

	// Session methods
	CreateSession(ctx context.Context, session *domain.AdminSession) error
	GetSessionByToken(ctx context.Context, token string) (*domain.AdminSession, error)
	SaveSession(ctx context.Context, session *domain.AdminSession) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Security event methods
	RecordSecurityEvent(ctx context.Context, event *domain.SecurityEvent) error
	ListSecurityEvents(ctx context.Context, limit int) ([]*domain.SecurityEvent, error)

	// Backup schedule methods
	SaveBackupSchedule(ctx context.Context, schedule *domain.BackupSchedule) error
	GetBackupSchedule(ctx context.Context, id string) (*domain.BackupSchedule, error)
	ListBackupSchedules(ctx context.Context) ([]*domain.BackupSchedule, error)
	DeleteBackupSchedule(ctx context.Context, id string) error
}
