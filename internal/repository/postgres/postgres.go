package postgres

import (
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostgresStorage реализует интерфейс Storage для PostgreSQL
type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

// New создает новый экземпляр PostgreSQL storage
func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- Admin Methods ---

// GetAdminByUsername получает администратора по имени пользователя
func (s *PostgresStorage) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var admin domain.Admin

	err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrAdminNotFound
	}
	if err != nil {
		s.log.Error("failed to get admin by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}

	return &admin, nil
}

// CreateAdmin создает нового администратора
func (s *PostgresStorage) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	var existing domain.Admin
	err := s.db.WithContext(ctx).Where("username = ?", admin.Username).First(&existing).Error
	if err == nil {
		return repository.ErrAdminExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("failed to check admin existence", zap.String("username", admin.Username), zap.Error(err))
		return fmt.Errorf("failed to check admin: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		s.log.Error("failed to create admin", zap.String("username", admin.Username), zap.Error(err))
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info("created new admin", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return nil
}

// UpdateAdmin обновляет данные администратора
func (s *PostgresStorage) UpdateAdmin(ctx context.Context, admin *domain.Admin) error {
	if err := s.db.WithContext(ctx).Save(admin).Error; err != nil {
		s.log.Error("failed to update admin", zap.Int64("admin_id", admin.ID), zap.Error(err))
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

// --- Session Methods ---

// CreateSession сохраняет новую сессию администратора
func (s *PostgresStorage) CreateSession(ctx context.Context, session *domain.AdminSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		s.log.Error("failed to create session", zap.String("session_id", session.ID), zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSessionByToken получает сессию по токену из cookie
func (s *PostgresStorage) GetSessionByToken(ctx context.Context, token string) (*domain.AdminSession, error) {
	var session domain.AdminSession

	err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrSessionNotFound
	}
	if err != nil {
		s.log.Error("failed to get session by token", zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// SaveSession записывает обратно состояние сессии после прохождения guard
func (s *PostgresStorage) SaveSession(ctx context.Context, session *domain.AdminSession) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		s.log.Error("failed to save session", zap.String("session_id", session.ID), zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// DeleteSession необратимо уничтожает сессию
func (s *PostgresStorage) DeleteSession(ctx context.Context, token string) error {
	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.AdminSession{})
	if result.Error != nil {
		s.log.Error("failed to delete session", zap.Error(result.Error))
		return fmt.Errorf("failed to delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions удаляет просроченные сессии (гигиеническая
// очистка; истечение детектируется лениво самим guard)
func (s *PostgresStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("session_expires_at IS NOT NULL AND session_expires_at < ?", now).
		Delete(&domain.AdminSession{})
	if result.Error != nil {
		s.log.Error("failed to delete expired sessions", zap.Error(result.Error))
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.log.Info("removed expired sessions", zap.Int64("count", result.RowsAffected))
	}
	return result.RowsAffected, nil
}

// --- Security Event Methods ---

// RecordSecurityEvent добавляет запись в журнал безопасности
func (s *PostgresStorage) RecordSecurityEvent(ctx context.Context, event *domain.SecurityEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		s.log.Error("failed to record security event",
			zap.String("event_type", event.EventType), zap.Error(err))
		return fmt.Errorf("failed to record security event: %w", err)
	}
	return nil
}

// ListSecurityEvents возвращает последние события безопасности
func (s *PostgresStorage) ListSecurityEvents(ctx context.Context, limit int) ([]*domain.SecurityEvent, error) {
	var events []*domain.SecurityEvent

	query := s.db.WithContext(ctx).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		s.log.Error("failed to list security events", zap.Error(err))
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}

	return events, nil
}

// --- Backup Schedule Methods ---

// SaveBackupSchedule создает или обновляет расписание резервного копирования
func (s *PostgresStorage) SaveBackupSchedule(ctx context.Context, schedule *domain.BackupSchedule) error {
	if err := s.db.WithContext(ctx).Save(schedule).Error; err != nil {
		s.log.Error("failed to save backup schedule", zap.String("schedule_id", schedule.ID), zap.Error(err))
		return fmt.Errorf("failed to save backup schedule: %w", err)
	}
	return nil
}

// GetBackupSchedule получает расписание по идентификатору
func (s *PostgresStorage) GetBackupSchedule(ctx context.Context, id string) (*domain.BackupSchedule, error) {
	var schedule domain.BackupSchedule

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrScheduleNotFound
	}
	if err != nil {
		s.log.Error("failed to get backup schedule", zap.String("schedule_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get backup schedule: %w", err)
	}

	return &schedule, nil
}

// ListBackupSchedules возвращает все расписания резервного копирования
func (s *PostgresStorage) ListBackupSchedules(ctx context.Context) ([]*domain.BackupSchedule, error) {
	var schedules []*domain.BackupSchedule

	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&schedules).Error; err != nil {
		s.log.Error("failed to list backup schedules", zap.Error(err))
		return nil, fmt.Errorf("failed to list backup schedules: %w", err)
	}

	return schedules, nil
}

// DeleteBackupSchedule удаляет расписание резервного копирования
func (s *PostgresStorage) DeleteBackupSchedule(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.BackupSchedule{})
	if result.Error != nil {
		s.log.Error("failed to delete backup schedule", zap.String("schedule_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete backup schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrScheduleNotFound
	}
	return nil
}
