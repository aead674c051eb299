package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mitradev/ssogate/internal/hris"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"
)

// HRISSyncResult summarizes one roster sync run
type HRISSyncResult struct {
	Fetched  int
	Upserted int
	Disabled int64
	Failed   int
	Duration time.Duration
}

// HRISService reconciles the user table against the HRIS roster. Each
// run upserts every fetched employee and disables HRIS-managed users
// the feed no longer contains. Password hashes are never touched by a
// sync.
type HRISService struct {
	store        *store.Store
	client       *hris.Client
	auditService *AuditService
}

func NewHRISService(
	s *store.Store,
	client *hris.Client,
	auditService *AuditService,
) *HRISService {
	return &HRISService{
		store:        s,
		client:       client,
		auditService: auditService,
	}
}

// Sync runs one full roster reconciliation
func (s *HRISService) Sync(ctx context.Context) (*HRISSyncResult, error) {
	start := time.Now()

	employees, err := s.client.FetchEmployees(ctx)
	if err != nil {
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventHRISSyncFailed,
			Severity:     models.SeverityError,
			ResourceType: models.ResourceUser,
			Action:       "HRIS sync failed",
			Success:      false,
			ErrorMessage: err.Error(),
		})
		return nil, fmt.Errorf("HRIS fetch failed: %w", err)
	}

	result := &HRISSyncResult{Fetched: len(employees)}

	for _, emp := range employees {
		if emp.EmployeeID == "" || emp.Email == "" {
			result.Failed++
			continue
		}

		status := models.UserStatusActive
		if !emp.Active {
			status = models.UserStatusDisabled
		}

		_, err := s.store.UpsertEmployee(ctx, &models.User{
			EmployeeID: emp.EmployeeID,
			Email:      emp.Email,
			Name:       emp.Name,
			UnitID:     emp.UnitID,
			Department: emp.Department,
			Position:   emp.Position,
			Status:     status,
		})
		if err != nil {
			log.Printf("[HRIS] Upsert failed for employee=%s: %v", emp.EmployeeID, err)
			result.Failed++
			continue
		}
		result.Upserted++
	}

	// Anything the feed no longer mentions was not refreshed above.
	// Only disable when the fetch itself succeeded, otherwise a feed
	// outage would deactivate the whole company.
	if result.Fetched > 0 {
		disabled, err := s.store.DisableEmployeesNotSeenSince(ctx, start)
		if err != nil {
			log.Printf("[HRIS] Disable pass failed: %v", err)
		} else {
			result.Disabled = disabled
		}
	}

	result.Duration = time.Since(start)

	s.auditService.Log(ctx, AuditLogEntry{
		EventType:    models.EventHRISSyncCompleted,
		Severity:     models.SeverityInfo,
		ResourceType: models.ResourceUser,
		Action:       "HRIS sync completed",
		Details: models.AuditDetails{
			"fetched":  result.Fetched,
			"upserted": result.Upserted,
			"disabled": result.Disabled,
			"failed":   result.Failed,
			"duration": result.Duration.String(),
		},
		Success: true,
	})

	return result, nil
}
