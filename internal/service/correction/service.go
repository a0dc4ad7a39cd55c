package correction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
	"github.com/google/uuid"
)

// CacheInvalidator is notified whenever a staff member's corrections change.
type CacheInvalidator interface {
	InvalidateCorrections(staffID string)
}

type CorrectionServiceImpl struct {
	tx             database.Transactor
	correctionRepo attendance.CorrectionRepository
	staffRepo      staff.StaffRepository
	invalidator    CacheInvalidator
	now            func() time.Time
}

// List implements attendance.CorrectionService.
func (c *CorrectionServiceImpl) List(ctx context.Context, filter attendance.CorrectionFilter) ([]attendance.CorrectionRequest, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	from, err := timeutil.ParseDate(filter.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrInvalidDateRange, err)
	}
	to, err := timeutil.ParseDate(filter.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", attendance.ErrInvalidDateRange, err)
	}

	corrections, err := c.correctionRepo.List(ctx, filter.StaffID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list corrections: %w", err)
	}

	result := make([]attendance.CorrectionRequest, 0, len(corrections))
	for _, cr := range corrections {
		if filter.Status != nil && string(cr.EffectiveStatus()) != *filter.Status {
			continue
		}
		result = append(result, cr)
	}

	return result, nil
}

// Create implements attendance.CorrectionService.
func (c *CorrectionServiceImpl) Create(ctx context.Context, req attendance.CreateCorrectionRequest) (attendance.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionRequest{}, err
	}

	if _, err := c.staffRepo.GetByID(ctx, req.StaffID); err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return attendance.CorrectionRequest{}, staff.ErrStaffNotFound
		}
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to get staff: %w", err)
	}

	clock, err := timeutil.NormalizeClock(req.RequestedTime)
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to normalize requested time: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to generate correction id: %w", err)
	}

	created, err := c.correctionRepo.Create(ctx, attendance.CorrectionRequest{
		ID:                id.String(),
		StaffID:           req.StaffID,
		Date:              req.Date,
		Type:              attendance.CorrectionType(req.Type),
		RequestedTime:     clock,
		RequestedWorkCode: req.RequestedWorkCode,
		Reason:            strings.TrimSpace(req.Reason),
		OriginalPunchID:   req.OriginalPunchID,
		Status:            attendance.CorrectionPending,
		CreatedAt:         c.now().UTC(),
	})
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to create correction: %w", err)
	}

	c.invalidate(created.StaffID)
	return created, nil
}

// Approve implements attendance.CorrectionService.
func (c *CorrectionServiceImpl) Approve(ctx context.Context, req attendance.ReviewCorrectionRequest) (attendance.CorrectionRequest, error) {
	return c.review(ctx, req, attendance.CorrectionApproved)
}

// Reject implements attendance.CorrectionService.
func (c *CorrectionServiceImpl) Reject(ctx context.Context, req attendance.ReviewCorrectionRequest) (attendance.CorrectionRequest, error) {
	return c.review(ctx, req, attendance.CorrectionRejected)
}

// Delete implements attendance.CorrectionService.
func (c *CorrectionServiceImpl) Delete(ctx context.Context, id string) error {
	var staffID string
	err := c.withinTx(ctx, func(txCtx context.Context) error {
		existing, err := c.correctionRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		staffID = existing.StaffID
		return c.correctionRepo.Delete(txCtx, id)
	})
	if err != nil {
		if errors.Is(err, attendance.ErrCorrectionNotFound) {
			return attendance.ErrCorrectionNotFound
		}
		return fmt.Errorf("failed to delete correction: %w", err)
	}

	c.invalidate(staffID)
	return nil
}

// review moves a pending correction to status. Reviewed corrections are final.
func (c *CorrectionServiceImpl) review(ctx context.Context, req attendance.ReviewCorrectionRequest, status attendance.CorrectionStatus) (attendance.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionRequest{}, err
	}

	var reviewed attendance.CorrectionRequest
	err := c.withinTx(ctx, func(txCtx context.Context) error {
		existing, err := c.correctionRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if existing.EffectiveStatus() != attendance.CorrectionPending {
			return attendance.ErrCorrectionAlreadyReviewed
		}

		now := c.now().UTC()
		reviewer := req.ReviewedBy
		existing.Status = status
		existing.ReviewedBy = &reviewer
		existing.ReviewedAt = &now

		if err := c.correctionRepo.Update(txCtx, existing); err != nil {
			return err
		}
		reviewed = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, attendance.ErrCorrectionNotFound) || errors.Is(err, attendance.ErrCorrectionAlreadyReviewed) {
			return attendance.CorrectionRequest{}, err
		}
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to review correction: %w", err)
	}

	slog.Info("correction reviewed", "id", reviewed.ID, "staff_id", reviewed.StaffID, "status", reviewed.Status)
	c.invalidate(reviewed.StaffID)
	return reviewed, nil
}

func (c *CorrectionServiceImpl) invalidate(staffID string) {
	if c.invalidator != nil {
		c.invalidator.InvalidateCorrections(staffID)
	}
}

func (c *CorrectionServiceImpl) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.tx == nil {
		return fn(ctx)
	}
	return c.tx.WithinTransaction(ctx, fn)
}

func NewCorrectionService(
	tx database.Transactor,
	correctionRepo attendance.CorrectionRepository,
	staffRepo staff.StaffRepository,
	invalidator CacheInvalidator,
) attendance.CorrectionService {
	return &CorrectionServiceImpl{
		tx:             tx,
		correctionRepo: correctionRepo,
		staffRepo:      staffRepo,
		invalidator:    invalidator,
		now:            time.Now,
	}
}
