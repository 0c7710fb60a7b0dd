package domain

import "time"

// Статусы резервных копий
const (
	BackupStatusPending   = "pending"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)

// BackupSchedule представляет расписание автоматического резервного копирования
type BackupSchedule struct {
	ID         string     `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name       string     `gorm:"column:name;size:128;not null" json:"name"`
	CronExpr   string     `gorm:"column:cron_expr;size:64;not null" json:"cron_expr"`
	Components string     `gorm:"column:components;size:255" json:"components"` // csv: config,recordings,voicemail
	Retention  int        `gorm:"column:retention_days;not null;default:30" json:"retention_days"`
	Enabled    bool       `gorm:"column:enabled;not null;default:true" json:"enabled"`
	LastRunAt  *time.Time `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	CreatedBy  string     `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName возвращает название таблицы для GORM
func (BackupSchedule) TableName() string {
	return "backup_schedules"
}

// BackupInfo описание резервной копии, возвращаемое движком резервного копирования
type BackupInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum,omitempty"`
}

// BackupStorageStats статистика хранилища резервных копий
type BackupStorageStats struct {
	TotalBytes     int64 `json:"total_bytes"`
	UsedBytes      int64 `json:"used_bytes"`
	AvailableBytes int64 `json:"available_bytes"`
	BackupCount    int   `json:"backup_count"`
}
