package database

import (
	"FlexPBX-Admin/internal/domain"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate выполняет автоматические миграции для всех доменных моделей
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("starting database auto-migration")

	// Порядок миграций важен из-за внешних ключей
	models := []interface{}{
		&domain.Admin{},          // Сначала администраторы
		&domain.AdminSession{},   // Сессии (зависят от администраторов)
		&domain.SecurityEvent{},  // Журнал безопасности
		&domain.BackupSchedule{}, // Расписания резервного копирования
	}

	for i, model := range models {
		modelName := fmt.Sprintf("%T", model)

		if err := db.AutoMigrate(model); err != nil {
			log.Error("failed to migrate model",
				zap.String("model", modelName),
				zap.Error(err))
			return fmt.Errorf("failed to migrate model %s: %w", modelName, err)
		}

		log.Debug("model migrated",
			zap.String("model", modelName),
			zap.Int("step", i+1),
			zap.Int("total", len(models)))
	}

	log.Info("database auto-migration completed", zap.Int("migrated_models", len(models)))
	return nil
}

// SeedData создает начальную учетную запись администратора, если
// таблица администраторов пуста
func SeedData(db *gorm.DB, log *zap.Logger, defaultAdmin *domain.Admin) error {
	var count int64
	if err := db.Model(&domain.Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		log.Info("admins already exist, skipping seeding", zap.Int64("existing_count", count))
		return nil
	}

	if err := db.Create(defaultAdmin).Error; err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	log.Info("seeded default admin account", zap.String("username", defaultAdmin.Username))
	return nil
}
