package models

import (
	"time"
)

// Site is the top of the organizational tree (one physical or legal entity)
type Site struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Code         string `gorm:"uniqueIndex;not null;type:varchar(50)"`
	Name         string `gorm:"not null;type:varchar(255)"`
	Description  string `gorm:"type:text"`
	Address      string `gorm:"type:text"`
	UseDivisions bool   `gorm:"not null;default:false"`
	UseUnits     bool   `gorm:"not null;default:false"`
	IsActive     bool   `gorm:"not null;default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Site) TableName() string {
	return "sites"
}

// Division groups units within a site
type Division struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	SiteID      string `gorm:"not null;index;type:varchar(36)"`
	Code        string `gorm:"uniqueIndex;not null;type:varchar(50)"`
	Name        string `gorm:"not null;type:varchar(255)"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Division) TableName() string {
	return "divisions"
}

// Unit is the leaf organizational node users attach to
type Unit struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	SiteID      string `gorm:"not null;index;type:varchar(36)"`
	DivisionID  string `gorm:"not null;index;type:varchar(36)"`
	Code        string `gorm:"uniqueIndex;not null;type:varchar(50)"`
	Name        string `gorm:"not null;type:varchar(255)"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Unit) TableName() string {
	return "units"
}

// Role is a named permission set, optionally scoped to a site
type Role struct {
	ID          string      `gorm:"primaryKey;type:varchar(36)"`
	Name        string      `gorm:"uniqueIndex;not null;type:varchar(100)"`
	Description string      `gorm:"type:text"`
	Permissions StringArray `gorm:"type:json"`
	SiteID      string      `gorm:"index;type:varchar(36)"` // empty = global role
	IsSystem    bool        `gorm:"not null;default:false"` // system roles cannot be deleted
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Role) TableName() string {
	return "roles"
}

// UserRole is the user-to-role join row
type UserRole struct {
	UserID    string `gorm:"primaryKey;type:varchar(36)"`
	RoleID    string `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time
}

func (UserRole) TableName() string {
	return "user_roles"
}
