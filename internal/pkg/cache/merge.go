package cache

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// MergeByRange replaces the part of held that falls inside [from, to] with
// fresh. Records outside the range are left untouched. When two records share
// a key the fresh one wins and takes the held one's position. Dates are
// YYYY-MM-DD strings.
func MergeByRange[T any](held, fresh []T, from, to string, dateOf func(T) string, keyOf func(T) string) []T {
	out := make([]T, 0, len(held)+len(fresh))
	index := make(map[string]int, len(held)+len(fresh))

	for _, r := range held {
		d := dateOf(r)
		if d >= from && d <= to {
			continue
		}
		k := keyOf(r)
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}

	for _, r := range fresh {
		k := keyOf(r)
		if i, ok := index[k]; ok {
			out[i] = r
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}

// PunchKey identifies a punch by staff, date, time and role.
func PunchKey(p attendance.Punch) string {
	return strings.Join([]string{p.StaffID, p.Date, p.Time, string(p.Role)}, "_")
}

func PunchDate(p attendance.Punch) string {
	return p.Date
}

// CorrectionKey uses the correction id, falling back to staff, date, time and status.
func CorrectionKey(c attendance.CorrectionRequest) string {
	if c.ID != "" {
		return c.ID
	}
	return strings.Join([]string{c.StaffID, c.Date, c.RequestedTime, string(c.EffectiveStatus())}, "_")
}

func CorrectionDate(c attendance.CorrectionRequest) string {
	return c.Date
}
