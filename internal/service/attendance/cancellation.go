package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type CancellationResult struct {
	Kept      []attendance.Punch
	FinePairs []attendance.PunchPair
	Removed   []attendance.RemovedPunch
}

// closers maps each cancellable opener to the role that closes it.
var closers = map[attendance.Role]attendance.Role{
	attendance.RoleCheckIn:  attendance.RoleCheckOut,
	attendance.RoleBreakOut: attendance.RoleBreakIn,
}

func isOpener(r attendance.Role) bool {
	_, ok := closers[r]
	return ok
}

func isCloser(r attendance.Role) bool {
	return r == attendance.RoleCheckOut || r == attendance.RoleBreakIn
}

// RemoveCancelledPairs drops opener/closer pairs of the same category that
// follow each other within threshold on the same day. A pair is kept when
// the opener just before it is still waiting for a closer, or the closer just
// after it is still waiting for an opener. Overtime and unknown punches are
// never cancelled.
func RemoveCancelledPairs(punches []attendance.Punch, threshold time.Duration) (CancellationResult, error) {
	sorted, err := toTimed(punches)
	if err != nil {
		return CancellationResult{}, err
	}

	groups := make(map[string][]int)
	var order []string
	for i, p := range sorted {
		cat := p.Role.Category()
		if cat != attendance.CategoryCheck && cat != attendance.CategoryBreak {
			continue
		}
		key := p.dayKey() + "|" + string(cat)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	dropped := make([]bool, len(sorted))
	result := CancellationResult{}

	for _, key := range order {
		idxs := groups[key]
		for i := 0; i < len(idxs); i++ {
			a := sorted[idxs[i]]
			if dropped[idxs[i]] || !isOpener(a.Role) {
				continue
			}

			j := nextAlive(idxs, dropped, i)
			if j < 0 {
				break
			}
			b := sorted[idxs[j]]
			if b.Role != closers[a.Role] || !withinThreshold(b.secs, a.secs, threshold) {
				continue
			}

			if k := prevAlive(idxs, dropped, i); k >= 0 && isOpener(sorted[idxs[k]].Role) {
				continue
			}
			if k := nextAlive(idxs, dropped, j); k >= 0 && isCloser(sorted[idxs[k]].Role) {
				continue
			}

			dropped[idxs[i]] = true
			dropped[idxs[j]] = true
			result.FinePairs = append(result.FinePairs, attendance.PunchPair{Opener: a.Punch, Closer: b.Punch})
			result.Removed = append(result.Removed,
				removed(a.Punch, attendance.ReasonCancellation),
				removed(b.Punch, attendance.ReasonCancellation),
			)
			i = j
		}
	}

	result.Kept = make([]attendance.Punch, 0, len(sorted)-len(result.Removed))
	for i, p := range sorted {
		if !dropped[i] {
			result.Kept = append(result.Kept, p.Punch)
		}
	}
	return result, nil
}

func nextAlive(idxs []int, dropped []bool, from int) int {
	for k := from + 1; k < len(idxs); k++ {
		if !dropped[idxs[k]] {
			return k
		}
	}
	return -1
}

func prevAlive(idxs []int, dropped []bool, from int) int {
	for k := from - 1; k >= 0; k-- {
		if !dropped[idxs[k]] {
			return k
		}
	}
	return -1
}
