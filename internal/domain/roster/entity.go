package roster

// Duty types known to the roster.
const (
	DutyDefault  = "DefaultSchedule"
	DutyEarly    = "EarlyDuty"
	DutyAcademic = "AcademicDuty"

	// FallbackTime is used when the roster has no usable entry at all.
	FallbackTime = "07:00:00"
)

type DutyTime struct {
	Type string `json:"type" yaml:"type"`
	Time string `json:"time" yaml:"time"`
}

type DailyOverride struct {
	Date      string   `json:"date" yaml:"date"`
	EarlyDuty []string `json:"early_duty" yaml:"early_duty"`
}

type SpecialDuty struct {
	Name string `json:"name" yaml:"name"`
	Time string `json:"time" yaml:"time"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type Holiday struct {
	Name string `json:"name" yaml:"name"`
	Date string `json:"date" yaml:"date"`
}

// DutyRoster is read-only reference data for schedule resolution and day flags.
type DutyRoster struct {
	DutyTimes       []DutyTime      `json:"duty_times" yaml:"duty_times"`
	DailyOverrides  []DailyOverride `json:"daily_overrides" yaml:"daily_overrides"`
	SpecialDuties   []SpecialDuty   `json:"special_duties" yaml:"special_duties"`
	PublicHolidays  []Holiday       `json:"public_holidays" yaml:"public_holidays"`
	SpecialHolidays []Holiday       `json:"special_holidays" yaml:"special_holidays"`
}

// DutyTime returns the configured time for a duty type.
func (r DutyRoster) DutyTime(dutyType string) (string, bool) {
	for _, d := range r.DutyTimes {
		if d.Type == dutyType && d.Time != "" {
			return d.Time, true
		}
	}
	return "", false
}

// IsEarlyDuty reports whether staffID is listed on the EarlyDuty override for date.
func (r DutyRoster) IsEarlyDuty(staffID, date string) bool {
	for _, o := range r.DailyOverrides {
		if o.Date != date {
			continue
		}
		for _, id := range o.EarlyDuty {
			if id == staffID {
				return true
			}
		}
	}
	return false
}

// SpecialDutyOn returns the first special duty whose inclusive range contains date.
func (r DutyRoster) SpecialDutyOn(date string) (SpecialDuty, bool) {
	for _, s := range r.SpecialDuties {
		if s.Time != "" && date >= s.From && date <= s.To {
			return s, true
		}
	}
	return SpecialDuty{}, false
}

func (r DutyRoster) IsHoliday(date string) bool {
	for _, h := range r.PublicHolidays {
		if h.Date == date {
			return true
		}
	}
	for _, h := range r.SpecialHolidays {
		if h.Date == date {
			return true
		}
	}
	return false
}
