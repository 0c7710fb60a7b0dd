package domain

import "time"

// Роли администраторов FlexPBX
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
)

// Admin представляет учетную запись администратора панели управления
type Admin struct {
	ID           int64      `gorm:"primaryKey;column:id" json:"id"`
	Username     string     `gorm:"column:username;size:64;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"` // скрываем хеш в JSON
	Role         string     `gorm:"column:role;size:32;not null;default:admin" json:"role"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Sessions []AdminSession `gorm:"foreignKey:AdminID" json:"sessions,omitempty"`
}

// TableName возвращает название таблицы для GORM
func (Admin) TableName() string {
	return "admins"
}

// Identity возвращает идентификацию администратора для сессии и журнала безопасности
func (a *Admin) Identity() AdminIdentity {
	return AdminIdentity{
		Username: a.Username,
		Role:     a.Role,
		Email:    a.Email,
	}
}

// AdminIdentity идентификация администратора, хранимая в сессии
type AdminIdentity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}
