package domain

import "time"

// Виды сессий по политике таймаута
const (
	SessionKindIdleTimeout = "idle_timeout"
	SessionKindExtended    = "extended"
)

// AdminSession представляет сессию администратора, сохраняемую между запросами.
//
// Поля LoginIP, LoginUserAgent, LastActivity и CSRFToken принадлежат
// session guard: обработчики страниц читают их, но не изменяют напрямую.
type AdminSession struct {
	ID             string `gorm:"primaryKey;column:id;size:36" json:"id"`
	Token          string `gorm:"column:token;size:64;uniqueIndex;not null" json:"-"`
	AdminID        int64  `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Authenticated  bool   `gorm:"column:authenticated;not null;default:false" json:"authenticated"`
	AdminUsername  string `gorm:"column:admin_username;size:64" json:"admin_username"`
	AdminRole      string `gorm:"column:admin_role;size:32" json:"admin_role"`
	AdminEmail     string `gorm:"column:admin_email;size:255" json:"admin_email"`
	LoginIP        string `gorm:"column:login_ip;size:45" json:"login_ip"`
	LoginUserAgent string `gorm:"column:login_user_agent;type:text" json:"login_user_agent"`

	LastActivity   *time.Time `gorm:"column:last_activity" json:"last_activity,omitempty"`
	RememberLogin  bool       `gorm:"column:remember_login;not null;default:false" json:"remember_login"`
	IdleTimeoutSec int        `gorm:"column:idle_timeout;not null;default:0" json:"idle_timeout"`
	CSRFToken      string     `gorm:"column:csrf_token;size:64" json:"-"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Производные поля текущего запроса: заполняются guard для отображения,
	// решения по ним не принимаются.
	ClientIP         string     `gorm:"column:client_ip;size:45" json:"client_ip"`
	PublicIP         string     `gorm:"column:public_ip;size:45" json:"public_ip"`
	NetworkType      string     `gorm:"column:network_type;size:16" json:"network_type"`
	NetworkName      string     `gorm:"column:network_name;size:64" json:"network_name"`
	NetworkTrusted   bool       `gorm:"column:network_trusted" json:"network_trusted"`
	NetworkColor     string     `gorm:"column:network_color;size:16" json:"network_color"`
	SessionType      string     `gorm:"column:session_type;size:16" json:"session_type"`
	SessionTypeLabel string     `gorm:"column:session_type_label;size:64" json:"session_type_label"`
	SessionRemaining int64      `gorm:"column:session_time_remaining" json:"session_time_remaining"`
	SessionExpiresAt *time.Time `gorm:"column:session_expires_at" json:"session_expires_at,omitempty"`

	// Relationships
	Admin *Admin `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (AdminSession) TableName() string {
	return "admin_sessions"
}

// Identity возвращает идентификацию администратора из сессии
func (s *AdminSession) Identity() AdminIdentity {
	return AdminIdentity{
		Username: s.AdminUsername,
		Role:     s.AdminRole,
		Email:    s.AdminEmail,
	}
}

// HasLoginBinding проверяет, привязана ли сессия к IP первого входа
func (s *AdminSession) HasLoginBinding() bool {
	return s.LoginIP != ""
}
