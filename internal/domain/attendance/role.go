package attendance

import "fmt"

// Role is the semantic type of a punch.
type Role string

const (
	RoleCheckIn     Role = "CHECK_IN"
	RoleCheckOut    Role = "CHECK_OUT"
	RoleBreakIn     Role = "BREAK_IN"
	RoleBreakOut    Role = "BREAK_OUT"
	RoleOvertimeIn  Role = "OVERTIME_IN"
	RoleOvertimeOut Role = "OVERTIME_OUT"
	RoleUnknown     Role = "UNKNOWN"
)

type Category string

const (
	CategoryCheck    Category = "check"
	CategoryBreak    Category = "break"
	CategoryOvertime Category = "overtime"
	CategoryUnknown  Category = "unknown"
)

var allRoles = []Role{RoleCheckIn, RoleCheckOut, RoleBreakIn, RoleBreakOut, RoleOvertimeIn, RoleOvertimeOut, RoleUnknown}

func ParseRole(s string) (Role, error) {
	for _, r := range allRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// IsEntry reports whether the role starts presence (staff arriving or returning).
func (r Role) IsEntry() bool {
	return r == RoleCheckIn || r == RoleBreakIn || r == RoleOvertimeIn
}

func (r Role) IsExit() bool {
	return r == RoleCheckOut || r == RoleBreakOut || r == RoleOvertimeOut
}

func (r Role) IsBreak() bool {
	return r == RoleBreakIn || r == RoleBreakOut
}

func (r Role) Category() Category {
	switch r {
	case RoleCheckIn, RoleCheckOut:
		return CategoryCheck
	case RoleBreakIn, RoleBreakOut:
		return CategoryBreak
	case RoleOvertimeIn, RoleOvertimeOut:
		return CategoryOvertime
	default:
		return CategoryUnknown
	}
}

// WorkCodeTable maps device work codes to roles for one firmware revision.
type WorkCodeTable struct {
	Version string
	Codes   map[int]Role
}

func (t WorkCodeTable) Role(code int) Role {
	if r, ok := t.Codes[code]; ok {
		return r
	}
	return RoleUnknown
}

var (
	WorkCodesV1 = WorkCodeTable{
		Version: "v1",
		Codes: map[int]Role{
			0: RoleCheckIn,
			1: RoleCheckOut,
			2: RoleBreakOut,
			3: RoleBreakIn,
		},
	}
	WorkCodesV2 = WorkCodeTable{
		Version: "v2",
		Codes: map[int]Role{
			0: RoleCheckIn,
			1: RoleCheckOut,
			2: RoleBreakOut,
			3: RoleBreakIn,
			4: RoleOvertimeIn,
			5: RoleOvertimeOut,
		},
	}
)

// CorrectionTable maps correction request types to roles.
type CorrectionTable struct {
	Version string
	Types   map[CorrectionType]Role
}

// Role returns the mapped role and whether the type is known.
func (t CorrectionTable) Role(ct CorrectionType) (Role, bool) {
	r, ok := t.Types[ct]
	return r, ok
}

var (
	// CorrectionsV1 folds overtime corrections into plain check punches.
	CorrectionsV1 = CorrectionTable{
		Version: "v1",
		Types: map[CorrectionType]Role{
			CorrectionCheckIn:       RoleCheckIn,
			CorrectionCheckOut:      RoleCheckOut,
			CorrectionBreakIn:       RoleBreakIn,
			CorrectionBreakOut:      RoleBreakOut,
			CorrectionOvertimeIn:    RoleCheckIn,
			CorrectionOvertimeOut:   RoleCheckOut,
			CorrectionWrongWorkcode: RoleCheckIn,
		},
	}
	CorrectionsV2 = CorrectionTable{
		Version: "v2",
		Types: map[CorrectionType]Role{
			CorrectionCheckIn:       RoleCheckIn,
			CorrectionCheckOut:      RoleCheckOut,
			CorrectionBreakIn:       RoleBreakIn,
			CorrectionBreakOut:      RoleBreakOut,
			CorrectionOvertimeIn:    RoleOvertimeIn,
			CorrectionOvertimeOut:   RoleOvertimeOut,
			CorrectionWrongWorkcode: RoleCheckIn,
		},
	}
)

func WorkCodeTableByVersion(version string) (WorkCodeTable, error) {
	switch version {
	case "", WorkCodesV2.Version:
		return WorkCodesV2, nil
	case WorkCodesV1.Version:
		return WorkCodesV1, nil
	}
	return WorkCodeTable{}, fmt.Errorf("unknown work code table %q", version)
}

func CorrectionTableByVersion(version string) (CorrectionTable, error) {
	switch version {
	case "", CorrectionsV2.Version:
		return CorrectionsV2, nil
	case CorrectionsV1.Version:
		return CorrectionsV1, nil
	}
	return CorrectionTable{}, fmt.Errorf("unknown correction table %q", version)
}
