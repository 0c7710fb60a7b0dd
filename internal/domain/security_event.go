package domain

import "time"

// Типы событий безопасности
const (
	EventIPChanged      = "ip_changed"
	EventUAChanged      = "ua_changed"
	EventSessionTimeout = "session_timeout"
	EventLoginFailed    = "login_failed"
	EventLoginSuccess   = "login_success"
	EventLogout         = "logout"
)

// SecurityEvent представляет запись в журнале безопасности (append-only)
type SecurityEvent struct {
	ID            string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	Timestamp     time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	ClientIP      string    `gorm:"column:client_ip;size:45;not null" json:"client_ip"`
	AdminUsername string    `gorm:"column:admin_username;size:64" json:"admin_username"`
	EventType     string    `gorm:"column:event_type;size:32;not null;index" json:"event_type"`
	Detail        string    `gorm:"column:detail;type:text" json:"detail"`

	// Сведения об устройстве из User-Agent (браузер, ОС, тип устройства)
	Browser    string `gorm:"column:browser;size:64" json:"browser,omitempty"`
	OS         string `gorm:"column:os;size:64" json:"os,omitempty"`
	DeviceType string `gorm:"column:device_type;size:16" json:"device_type,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (SecurityEvent) TableName() string {
	return "security_events"
}
