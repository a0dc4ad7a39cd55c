package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

// ListByStaff implements attendance.LeaveRepository.
func (r *leaveRepository) ListByStaff(ctx context.Context, staffID string, from time.Time, to time.Time) ([]attendance.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT staff_id, to_char(date, 'YYYY-MM-DD'), category
		FROM leave_records
		WHERE staff_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND status = 'approved'
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, staffID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []attendance.LeaveRecord
	for rows.Next() {
		var rec attendance.LeaveRecord
		var category string
		if err := rows.Scan(&rec.StaffID, &rec.Date, &category); err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		rec.Category = attendance.LeaveCategory(category)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave records: %w", err)
	}

	return records, nil
}

func NewLeaveRepository(db *database.DB) attendance.LeaveRepository {
	return &leaveRepository{db: db}
}
