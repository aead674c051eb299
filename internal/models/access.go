package models

import (
	"time"
)

// AccessGrant is an explicit permission for a user to use a client
// (admin-managed, distinct from OAuth consent).
type AccessGrant struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"not null;index;type:varchar(36)"`
	ClientID  string `gorm:"not null;index;type:varchar(36)"` // FK to Client.ClientID
	GrantedBy string `gorm:"type:varchar(36)"`                // empty for system grants
	GrantedAt time.Time
	ExpiresAt *time.Time // nil = never expires
	IsActive  bool       `gorm:"not null;default:true;index"`
	Notes     string     `gorm:"type:text"`
}

// IsLive reports whether the grant currently confers access
func (g *AccessGrant) IsLive(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

func (AccessGrant) TableName() string {
	return "user_app_access"
}

// AccessGroup bundles users and clients; membership of both grants access
type AccessGroup struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string `gorm:"uniqueIndex;not null;type:varchar(255)"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AccessGroup) TableName() string {
	return "access_groups"
}

// AccessGroupUser is the group-to-user membership row
type AccessGroupUser struct {
	GroupID   string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey;index;type:varchar(36)"`
	CreatedAt time.Time
}

func (AccessGroupUser) TableName() string {
	return "access_group_users"
}

// AccessGroupClient is the group-to-client membership row
type AccessGroupClient struct {
	GroupID   string `gorm:"primaryKey;type:varchar(36)"`
	ClientID  string `gorm:"primaryKey;index;type:varchar(36)"`
	CreatedAt time.Time
}

func (AccessGroupClient) TableName() string {
	return "access_group_clients"
}
