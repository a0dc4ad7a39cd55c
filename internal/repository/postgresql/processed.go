package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type processedRepository struct {
	db *database.DB
}

// Upsert implements attendance.ProcessedRepository.
func (r *processedRepository) Upsert(ctx context.Context, days []attendance.ProcessedAttendance) error {
	if len(days) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO processed_attendance (
			staff_id, date, day, scheduled_in, first_check_in, last_check_out, breaks,
			missing_check_in, missing_check_out, is_weekend, is_holiday,
			late_minutes, late_fine, break_minutes, excess_break_minutes, break_fine,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW()
		)
		ON CONFLICT (staff_id, date) DO UPDATE SET
			day = EXCLUDED.day,
			scheduled_in = EXCLUDED.scheduled_in,
			first_check_in = EXCLUDED.first_check_in,
			last_check_out = EXCLUDED.last_check_out,
			breaks = EXCLUDED.breaks,
			missing_check_in = EXCLUDED.missing_check_in,
			missing_check_out = EXCLUDED.missing_check_out,
			is_weekend = EXCLUDED.is_weekend,
			is_holiday = EXCLUDED.is_holiday,
			late_minutes = EXCLUDED.late_minutes,
			late_fine = EXCLUDED.late_fine,
			break_minutes = EXCLUDED.break_minutes,
			excess_break_minutes = EXCLUDED.excess_break_minutes,
			break_fine = EXCLUDED.break_fine,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, d := range days {
		breaks, err := json.Marshal(d.Breaks)
		if err != nil {
			return fmt.Errorf("failed to encode breaks for %s %s: %w", d.StaffID, d.Date, err)
		}
		batch.Queue(query,
			d.StaffID, d.Date, d.Day, d.ScheduledIn, d.FirstCheckIn, d.LastCheckOut, breaks,
			d.MissingCheckIn, d.MissingCheckOut, d.IsWeekend, d.IsHoliday,
			d.LateMinutes, d.LateFine, d.BreakMinutes, d.ExcessBreakMinutes, d.BreakFine,
		)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for range days {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert processed attendance: %w", err)
		}
	}

	return nil
}

// ListByStaff implements attendance.ProcessedRepository.
func (r *processedRepository) ListByStaff(ctx context.Context, staffID string, from time.Time, to time.Time) ([]attendance.ProcessedAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT staff_id, to_char(date, 'YYYY-MM-DD'), day, scheduled_in, first_check_in, last_check_out, breaks,
			   missing_check_in, missing_check_out, is_weekend, is_holiday,
			   late_minutes, late_fine, break_minutes, excess_break_minutes, break_fine
		FROM processed_attendance
		WHERE staff_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, staffID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query processed attendance: %w", err)
	}
	defer rows.Close()

	var days []attendance.ProcessedAttendance
	for rows.Next() {
		var d attendance.ProcessedAttendance
		var breaks []byte
		if err := rows.Scan(
			&d.StaffID, &d.Date, &d.Day, &d.ScheduledIn, &d.FirstCheckIn, &d.LastCheckOut, &breaks,
			&d.MissingCheckIn, &d.MissingCheckOut, &d.IsWeekend, &d.IsHoliday,
			&d.LateMinutes, &d.LateFine, &d.BreakMinutes, &d.ExcessBreakMinutes, &d.BreakFine,
		); err != nil {
			return nil, fmt.Errorf("failed to scan processed attendance: %w", err)
		}
		if err := json.Unmarshal(breaks, &d.Breaks); err != nil {
			return nil, fmt.Errorf("failed to decode breaks for %s %s: %w", d.StaffID, d.Date, err)
		}
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processed attendance: %w", err)
	}

	return days, nil
}

func NewProcessedRepository(db *database.DB) attendance.ProcessedRepository {
	return &processedRepository{db: db}
}
