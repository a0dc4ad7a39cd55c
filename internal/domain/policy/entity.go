package policy

import "time"

const DefaultDuplicateThreshold = time.Minute

type MissingPunchPolicy string

const (
	MissingPunchFlag     MissingPunchPolicy = "flag"
	MissingPunchIgnore   MissingPunchPolicy = "ignore"
	MissingPunchAutoFill MissingPunchPolicy = "auto-fill"
	MissingPunchNotify   MissingPunchPolicy = "notify"
)

type LatePolicy struct {
	FinePerMinute      float64 `json:"fine_per_minute" yaml:"fine_per_minute"`
	GracePeriodMinutes int     `json:"grace_period_minutes" yaml:"grace_period_minutes"`
}

type BreakPolicy struct {
	MaxMinutes         int  `json:"max_minutes" yaml:"max_minutes"`
	ApplyFineForExcess bool `json:"apply_fine_for_excess" yaml:"apply_fine_for_excess"`
}

type PunchPolicy struct {
	DuplicateThreshold time.Duration      `json:"duplicate_threshold" yaml:"duplicate_threshold"`
	MissingPunchPolicy MissingPunchPolicy `json:"missing_punch_policy" yaml:"missing_punch_policy"`
}

// LeaveLimits caps each leave category per period. A nil limit is unlimited.
type LeaveLimits struct {
	SickForm     *int `json:"sl_form,omitempty" yaml:"sl_form"`
	SickMC       *int `json:"sl_mc,omitempty" yaml:"sl_mc"`
	FRL          *int `json:"frl,omitempty" yaml:"frl"`
	Annual       *int `json:"annual_leave,omitempty" yaml:"annual_leave"`
	Hajju        *int `json:"hajju_leave,omitempty" yaml:"hajju_leave"`
	Umra         *int `json:"umra_leave,omitempty" yaml:"umra_leave"`
	NoPay        *int `json:"nopay_leave,omitempty" yaml:"nopay_leave"`
	Special      *int `json:"special_leave,omitempty" yaml:"special_leave"`
	Absents      *int `json:"absents,omitempty" yaml:"absents"`
	DaysAttended *int `json:"days_attended,omitempty" yaml:"days_attended"`
}

type AttendancePolicy struct {
	Late        LatePolicy  `json:"late" yaml:"late"`
	Break       BreakPolicy `json:"break" yaml:"break"`
	Punch       PunchPolicy `json:"punch" yaml:"punch"`
	LeaveLimits LeaveLimits `json:"leave_limits" yaml:"leave_limits"`
}

// Default returns the policy used when no reference file is configured.
func Default() AttendancePolicy {
	return AttendancePolicy{
		Late: LatePolicy{
			GracePeriodMinutes: 10,
		},
		Break: BreakPolicy{
			MaxMinutes: 60,
		},
		Punch: PunchPolicy{
			DuplicateThreshold: DefaultDuplicateThreshold,
			MissingPunchPolicy: MissingPunchFlag,
		},
	}
}

// Threshold returns the duplicate threshold, falling back to the default.
func (p AttendancePolicy) Threshold() time.Duration {
	if p.Punch.DuplicateThreshold > 0 {
		return p.Punch.DuplicateThreshold
	}
	return DefaultDuplicateThreshold
}
