package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

type BreakSequenceMode string

const (
	BreakSequenceStrict  BreakSequenceMode = "strict"
	BreakSequenceLenient BreakSequenceMode = "lenient"
)

func ParseBreakSequenceMode(s string) (BreakSequenceMode, error) {
	switch BreakSequenceMode(s) {
	case "", BreakSequenceStrict:
		return BreakSequenceStrict, nil
	case BreakSequenceLenient:
		return BreakSequenceLenient, nil
	}
	return "", fmt.Errorf("unknown break sequence mode %q", s)
}

type BreakSequenceResult struct {
	Kept    []attendance.Punch
	Removed []attendance.RemovedPunch
}

// FilterBreakSequence enforces OUT, IN, OUT... ordering of break punches per
// staff-day. In strict mode an out-of-turn punch is dropped as noise; in
// lenient mode it is kept and the expectation restarts from it.
func FilterBreakSequence(punches []attendance.Punch, mode BreakSequenceMode) (BreakSequenceResult, error) {
	sorted, err := toTimed(punches)
	if err != nil {
		return BreakSequenceResult{}, err
	}

	expect := make(map[string]attendance.Role)
	result := BreakSequenceResult{Kept: make([]attendance.Punch, 0, len(sorted))}

	for _, p := range sorted {
		if !p.Role.IsBreak() {
			result.Kept = append(result.Kept, p.Punch)
			continue
		}

		key := p.dayKey()
		want, ok := expect[key]
		if !ok {
			want = attendance.RoleBreakOut
		}

		if p.Role != want && mode != BreakSequenceLenient {
			result.Removed = append(result.Removed, removed(p.Punch, attendance.ReasonNoise))
			continue
		}

		result.Kept = append(result.Kept, p.Punch)
		expect[key] = oppositeBreak(p.Role)
	}
	return result, nil
}

func oppositeBreak(r attendance.Role) attendance.Role {
	if r == attendance.RoleBreakOut {
		return attendance.RoleBreakIn
	}
	return attendance.RoleBreakOut
}
