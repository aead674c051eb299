package store

import (
	"context"

	"github.com/mitradev/ssogate/internal/models"
)

// DashboardStats holds the admin dashboard counters
type DashboardStats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	TotalClients      int64 `json:"total_clients"`
	ActiveClients     int64 `json:"active_clients"`
	LiveRefreshTokens int64 `json:"live_refresh_tokens"`
	AccessGrants      int64 `json:"access_grants"`
}

// GetDashboardStats counts the entities shown on the admin dashboard.
// Results are cached by the stats service; this always hits the DB.
func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("status = ?", models.UserStatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Client{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveClients).Error; err != nil {
		return nil, err
	}

	liveTokens, err := s.CountArtifacts(ctx, models.ArtifactRefreshToken)
	if err != nil {
		return nil, err
	}
	stats.LiveRefreshTokens = liveTokens

	if err := db.Model(&models.AccessGrant{}).
		Where("is_active = ?", true).
		Count(&stats.AccessGrants).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
