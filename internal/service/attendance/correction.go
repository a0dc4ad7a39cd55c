package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

// CorrectionsToPunches turns every non-rejected correction into a synthetic punch.
// A wrongWorkcode correction uses its requested work code when one is given.
func CorrectionsToPunches(corrections []attendance.CorrectionRequest, table attendance.CorrectionTable, codes attendance.WorkCodeTable) ([]attendance.Punch, error) {
	punches := make([]attendance.Punch, 0, len(corrections))
	for _, c := range corrections {
		if c.EffectiveStatus() == attendance.CorrectionRejected {
			continue
		}

		role, ok := table.Role(c.Type)
		if !ok {
			return nil, fmt.Errorf("correction %s: %w %q", c.ID, attendance.ErrUnknownCorrectionType, c.Type)
		}
		if c.Type == attendance.CorrectionWrongWorkcode && c.RequestedWorkCode != nil {
			role = codes.Role(*c.RequestedWorkCode)
		}

		if _, err := timeutil.ParseDate(c.Date); err != nil {
			return nil, fmt.Errorf("correction %s: %w", c.ID, err)
		}
		clock, err := timeutil.NormalizeClock(c.RequestedTime)
		if err != nil {
			return nil, fmt.Errorf("correction %s: %w", c.ID, err)
		}

		punches = append(punches, attendance.Punch{
			StaffID: c.StaffID,
			Date:    c.Date,
			Time:    clock,
			Role:    role,
			Source:  attendance.SourceCorrection,
			Ref:     c.ID,
		})
	}
	return punches, nil
}

// DeviceRecordsToPunches converts raw device rows into punches in loc.
func DeviceRecordsToPunches(records []attendance.DeviceRecord, codes attendance.WorkCodeTable, loc *time.Location) ([]attendance.Punch, error) {
	punches := make([]attendance.Punch, 0, len(records))
	for _, rec := range records {
		date, clock, err := timeutil.SplitTimestamp(rec.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("device record %s: %w", rec.ID, err)
		}
		punches = append(punches, attendance.Punch{
			StaffID: rec.StaffID,
			Date:    date,
			Time:    clock,
			Role:    codes.Role(rec.WorkCode),
			Source:  attendance.SourceDevice,
			Ref:     rec.ID,
		})
	}
	return punches, nil
}
