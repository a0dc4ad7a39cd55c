package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type punchRepository struct {
	db *database.DB
}

// ListByStaff implements attendance.PunchRepository.
// Device timestamps are epoch seconds; the range covers whole UTC days.
func (p *punchRepository) ListByStaff(ctx context.Context, staffID string, from time.Time, to time.Time) ([]attendance.DeviceRecord, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, staff_id, timestamp, work_code
		FROM attendance_logs
		WHERE staff_id = $1
		  AND timestamp >= $2
		  AND timestamp < $3
		ORDER BY timestamp ASC
	`

	start := from.UTC().Truncate(24 * time.Hour).Unix()
	end := to.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1).Unix()

	rows, err := q.Query(ctx, query, staffID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance logs: %w", err)
	}
	defer rows.Close()

	var records []attendance.DeviceRecord
	for rows.Next() {
		var rec attendance.DeviceRecord
		if err := rows.Scan(&rec.ID, &rec.StaffID, &rec.Timestamp, &rec.WorkCode); err != nil {
			return nil, fmt.Errorf("failed to scan attendance log: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance logs: %w", err)
	}

	return records, nil
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepository{db: db}
}
