package models

import (
	"time"
)

// User status values. Disabled users keep their rows for referential
// integrity with audit and access records.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// User represents an end-user identity managed by the provider
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"                       json:"id"`
	EmployeeID   string `gorm:"uniqueIndex;type:varchar(100)"                     json:"employee_id"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(255)"            json:"email"` // stored lowercase
	Name         string `gorm:"not null;type:varchar(255)"                        json:"name"`
	Status       string `gorm:"not null;default:'active';index;type:varchar(20)"  json:"status"`
	PasswordHash string `gorm:"type:text"                                         json:"-"` // empty means password login is disabled

	UnitID     string `gorm:"index;type:varchar(36)" json:"unit_id,omitempty"`
	Department string `gorm:"type:varchar(255)"      json:"department,omitempty"`
	Position   string `gorm:"type:varchar(255)"      json:"position,omitempty"`
	AvatarURL  string `gorm:"type:text"              json:"avatar_url,omitempty"`

	RoleID   string `gorm:"type:varchar(50)"  json:"role_id,omitempty"`
	RoleName string `gorm:"type:varchar(100)" json:"role_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the user may authenticate or be issued tokens
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsAdmin reports whether the user holds the built-in admin role
func (u *User) IsAdmin() bool {
	return u.RoleID == "admin"
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
