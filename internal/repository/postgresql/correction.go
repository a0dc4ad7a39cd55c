package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

const correctionColumns = `
	id, staff_id, to_char(date, 'YYYY-MM-DD'), correction_type, requested_time,
	requested_work_code, reason, original_punch_id, status,
	reviewed_by, reviewed_at, created_at
`

func scanCorrection(row pgx.Row) (attendance.CorrectionRequest, error) {
	var c attendance.CorrectionRequest
	var correctionType, status string
	err := row.Scan(
		&c.ID, &c.StaffID, &c.Date, &correctionType, &c.RequestedTime,
		&c.RequestedWorkCode, &c.Reason, &c.OriginalPunchID, &status,
		&c.ReviewedBy, &c.ReviewedAt, &c.CreatedAt,
	)
	c.Type = attendance.CorrectionType(correctionType)
	c.Status = attendance.CorrectionStatus(status)
	return c, err
}

// List implements attendance.CorrectionRepository.
func (r *correctionRepository) List(ctx context.Context, staffID string, from time.Time, to time.Time) ([]attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + `
		FROM attendance_corrections
		WHERE staff_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC, requested_time ASC
	`

	rows, err := q.Query(ctx, query, staffID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []attendance.CorrectionRequest
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corrections: %w", err)
	}

	return corrections, nil
}

// GetByID implements attendance.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + `
		FROM attendance_corrections
		WHERE id = $1
		FOR UPDATE
	`

	c, err := scanCorrection(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
		}
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to get correction: %w", err)
	}

	return c, nil
}

// Create implements attendance.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, c attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_corrections (
			id, staff_id, date, correction_type, requested_time,
			requested_work_code, reason, original_punch_id, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		c.ID,
		c.StaffID,
		c.Date,
		string(c.Type),
		c.RequestedTime,
		c.RequestedWorkCode,
		c.Reason,
		c.OriginalPunchID,
		string(c.EffectiveStatus()),
		c.CreatedAt,
	).Scan(&c.CreatedAt)
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to create correction: %w", err)
	}

	return c, nil
}

// Update implements attendance.CorrectionRepository.
func (r *correctionRepository) Update(ctx context.Context, c attendance.CorrectionRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_corrections
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, c.ID, string(c.EffectiveStatus()), c.ReviewedBy, c.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCorrectionNotFound
	}

	return nil
}

// Delete implements attendance.CorrectionRepository.
func (r *correctionRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_corrections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrCorrectionNotFound
	}

	return nil
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}
