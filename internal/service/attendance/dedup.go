package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type DedupResult struct {
	Deduplicated []attendance.Punch
	Removed      []attendance.RemovedPunch
}

// DeduplicatePunches collapses punches of the same staff, date and role that
// lie within threshold of each other (inclusive). Exit roles keep the later
// punch; entry and unknown roles keep the earlier one.
func DeduplicatePunches(punches []attendance.Punch, threshold time.Duration) (DedupResult, error) {
	sorted, err := toTimed(punches)
	if err != nil {
		return DedupResult{}, err
	}

	kept := make([]timedPunch, 0, len(sorted))
	result := DedupResult{}
	last := make(map[string]int)

	for _, p := range sorted {
		key := p.dayKey() + "|" + string(p.Role)
		idx, seen := last[key]
		if !seen || !withinThreshold(p.secs, kept[idx].secs, threshold) {
			last[key] = len(kept)
			kept = append(kept, p)
			continue
		}

		if p.Role.IsExit() {
			result.Removed = append(result.Removed, removed(kept[idx].Punch, attendance.ReasonDuplicate))
			kept[idx] = p
			continue
		}
		result.Removed = append(result.Removed, removed(p.Punch, attendance.ReasonDuplicate))
	}

	// A replaced exit punch can move past its neighbours.
	resorted, err := toTimed(fromTimed(kept))
	if err != nil {
		return DedupResult{}, err
	}
	result.Deduplicated = fromTimed(resorted)
	return result, nil
}
