package service

import (
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidSchedule  = errors.New("invalid backup schedule")
	ErrInvalidComponent = errors.New("invalid backup component")
)

// Компоненты, включаемые в резервную копию
var validComponents = map[string]bool{
	"config":     true,
	"recordings": true,
	"voicemail":  true,
	"moh":        true,
	"database":   true,
}

// BackupEngine интерфейс внешнего движка резервного копирования.
// Фактическая работа с файлами выполняется вне этого сервиса.
type BackupEngine interface {
	List(ctx context.Context) ([]domain.BackupInfo, error)
	Create(ctx context.Context, name string, components []string) (*domain.BackupInfo, error)
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Verify(ctx context.Context, id string) (bool, error)
	GetDetails(ctx context.Context, id string) (*domain.BackupInfo, error)
	GetStorageStats(ctx context.Context) (*domain.BackupStorageStats, error)
}

// BackupService оборачивает движок резервного копирования и хранит
// расписания
type BackupService struct {
	engine  BackupEngine
	storage repository.Storage
	log     *zap.Logger
}

// NewBackupService создает новый backup сервис
func NewBackupService(engine BackupEngine, storage repository.Storage, log *zap.Logger) *BackupService {
	return &BackupService{
		engine:  engine,
		storage: storage,
		log:     log,
	}
}

// List возвращает список резервных копий
func (s *BackupService) List(ctx context.Context) ([]domain.BackupInfo, error) {
	backups, err := s.engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return backups, nil
}

// Create запускает создание резервной копии
func (s *BackupService) Create(ctx context.Context, name string, components []string) (*domain.BackupInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidSchedule)
	}
	if err := validateComponents(components); err != nil {
		return nil, err
	}

	info, err := s.engine.Create(ctx, name, components)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}

	s.log.Info("backup created",
		zap.String("backup_id", info.ID),
		zap.String("name", name),
		zap.Strings("components", components))
	return info, nil
}

// Restore восстанавливает систему из резервной копии
func (s *BackupService) Restore(ctx context.Context, id string) error {
	if err := s.engine.Restore(ctx, id); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", id, err)
	}
	s.log.Warn("backup restored", zap.String("backup_id", id))
	return nil
}

// Delete удаляет резервную копию
func (s *BackupService) Delete(ctx context.Context, id string) error {
	if err := s.engine.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", id, err)
	}
	s.log.Info("backup deleted", zap.String("backup_id", id))
	return nil
}

// Verify проверяет целостность резервной копии
func (s *BackupService) Verify(ctx context.Context, id string) (bool, error) {
	ok, err := s.engine.Verify(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to verify backup %s: %w", id, err)
	}
	return ok, nil
}

// GetDetails возвращает подробности резервной копии
func (s *BackupService) GetDetails(ctx context.Context, id string) (*domain.BackupInfo, error) {
	info, err := s.engine.GetDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get backup details %s: %w", id, err)
	}
	return info, nil
}

// GetStorageStats возвращает статистику хранилища резервных копий
func (s *BackupService) GetStorageStats(ctx context.Context) (*domain.BackupStorageStats, error) {
	stats, err := s.engine.GetStorageStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage stats: %w", err)
	}
	return stats, nil
}

// Schedule создает или обновляет расписание резервного копирования
func (s *BackupService) Schedule(ctx context.Context, schedule *domain.BackupSchedule) error {
	if strings.TrimSpace(schedule.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSchedule)
	}
	if err := validateCronExpr(schedule.CronExpr); err != nil {
		return err
	}
	if schedule.Components != "" {
		if err := validateComponents(strings.Split(schedule.Components, ",")); err != nil {
			return err
		}
	}
	if schedule.Retention <= 0 {
		schedule.Retention = 30
	}
	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}

	if err := s.storage.SaveBackupSchedule(ctx, schedule); err != nil {
		return err
	}

	s.log.Info("backup schedule saved",
		zap.String("schedule_id", schedule.ID),
		zap.String("cron", schedule.CronExpr))
	return nil
}

// ListSchedules возвращает все расписания
func (s *BackupService) ListSchedules(ctx context.Context) ([]*domain.BackupSchedule, error) {
	return s.storage.ListBackupSchedules(ctx)
}

// DeleteSchedule удаляет расписание
func (s *BackupService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.storage.DeleteBackupSchedule(ctx, id); err != nil {
		return err
	}
	s.log.Info("backup schedule deleted", zap.String("schedule_id", id))
	return nil
}

func validateComponents(components []string) error {
	for _, component := range components {
		component = strings.TrimSpace(component)
		if !validComponents[component] {
			return fmt.Errorf("%w: %s", ErrInvalidComponent, component)
		}
	}
	return nil
}

// validateCronExpr проверяет базовую форму cron-выражения: пять полей
func validateCronExpr(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("%w: cron expression must have 5 fields, got %d", ErrInvalidSchedule, len(fields))
	}
	return nil
}
