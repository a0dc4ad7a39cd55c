package attendance

import (
	"time"
)

type Source string

const (
	SourceDevice     Source = "device"
	SourceCorrection Source = "correction"
)

// Punch is a single attendance event. Date is YYYY-MM-DD and Time is HH:mm:ss.
type Punch struct {
	StaffID string `json:"staff_id"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Role    Role   `json:"role"`
	Source  Source `json:"source"`
	Ref     string `json:"ref,omitempty"`
}

// SortKey orders punches by calendar date then clock time.
func (p Punch) SortKey() string {
	return p.Date + " " + p.Time
}

// DeviceRecord is a raw row from the biometric clock.
type DeviceRecord struct {
	ID        string `json:"id"`
	StaffID   string `json:"staff_id"`
	Timestamp int64  `json:"timestamp"`
	WorkCode  int    `json:"work_code"`
}

type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
)

type CorrectionType string

const (
	CorrectionCheckIn       CorrectionType = "checkIn"
	CorrectionCheckOut      CorrectionType = "checkOut"
	CorrectionBreakIn       CorrectionType = "breakIn"
	CorrectionBreakOut      CorrectionType = "breakOut"
	CorrectionOvertimeIn    CorrectionType = "otIn"
	CorrectionOvertimeOut   CorrectionType = "otOut"
	CorrectionWrongWorkcode CorrectionType = "wrongWorkcode"
)

type CorrectionRequest struct {
	ID                string           `json:"id"`
	StaffID           string           `json:"staff_id"`
	Date              string           `json:"date"`
	Type              CorrectionType   `json:"correction_type"`
	RequestedTime     string           `json:"requested_time"`
	RequestedWorkCode *int             `json:"requested_work_code,omitempty"`
	Reason            string           `json:"reason"`
	OriginalPunchID   *string          `json:"original_punch_id,omitempty"`
	Status            CorrectionStatus `json:"status"`
	ReviewedBy        *string          `json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time       `json:"reviewed_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// EffectiveStatus treats an empty status as pending.
func (c CorrectionRequest) EffectiveStatus() CorrectionStatus {
	if c.Status == "" {
		return CorrectionPending
	}
	return c.Status
}

type RemovalReason string

const (
	ReasonDuplicate    RemovalReason = "duplicate"
	ReasonCancellation RemovalReason = "cancellation"
	ReasonNoise        RemovalReason = "noise"
)

// RemovedPunch is an audit entry for a punch dropped by one of the filters.
type RemovedPunch struct {
	Punch
	Reason RemovalReason `json:"reason"`
}

// PunchPair is an opener/closer pair removed as an accidental double tap.
type PunchPair struct {
	Opener Punch `json:"opener"`
	Closer Punch `json:"closer"`
}

type BreakType string

const (
	BreakOutEntry BreakType = "(OUT)"
	BreakInEntry  BreakType = "(IN)"
)

type BreakEntry struct {
	Time    string    `json:"time"`
	Type    BreakType `json:"type"`
	Missing bool      `json:"missing"`
}

type LastBreakTimes struct {
	BreakIn  string `json:"break_in,omitempty"`
	BreakOut string `json:"break_out,omitempty"`
}

// ProcessedAttendance is the reconciled picture of one staff member on one date.
type ProcessedAttendance struct {
	StaffID            string         `json:"staff_id"`
	Date               string         `json:"date"`
	Day                string         `json:"day"`
	ScheduledIn        string         `json:"scheduled_in"`
	FirstCheckIn       string         `json:"first_check_in"`
	LastCheckOut       string         `json:"last_check_out"`
	Breaks             []BreakEntry   `json:"breaks"`
	MissingCheckIn     bool           `json:"missing_check_in"`
	MissingCheckOut    bool           `json:"missing_check_out"`
	IsWeekend          bool           `json:"is_weekend"`
	IsHoliday          bool           `json:"is_holiday"`
	LateMinutes        int            `json:"late_minutes"`
	LateFine           float64        `json:"late_fine"`
	BreakMinutes       int            `json:"break_minutes"`
	ExcessBreakMinutes int            `json:"excess_break_minutes"`
	BreakFine          float64        `json:"break_fine"`
	LastBreakTimes     LastBreakTimes `json:"last_break_times"`
}

// Present reports whether any check punch was recorded for the day.
func (p ProcessedAttendance) Present() bool {
	return p.FirstCheckIn != "" || p.LastCheckOut != ""
}

type LeaveCategory string

const (
	LeaveSickForm    LeaveCategory = "sl_form"
	LeaveSickMC      LeaveCategory = "sl_mc"
	LeaveFRL         LeaveCategory = "frl"
	LeaveAnnual      LeaveCategory = "annual_leave"
	LeaveHajju       LeaveCategory = "hajju_leave"
	LeaveUmra        LeaveCategory = "umra_leave"
	LeaveNoPay       LeaveCategory = "nopay_leave"
	LeaveSpecial     LeaveCategory = "special_leave"
	LeaveAbsent      LeaveCategory = "absents"
	LeaveDaysPresent LeaveCategory = "days_attended"
)

// LeaveRecord marks a date on which a staff member was on an approved leave.
type LeaveRecord struct {
	StaffID  string        `json:"staff_id"`
	Date     string        `json:"date"`
	Category LeaveCategory `json:"category"`
}

type LeaveUsage struct {
	Used     int  `json:"used"`
	Limit    *int `json:"limit,omitempty"`
	Exceeded bool `json:"exceeded"`
}

type Summary struct {
	StaffID          string                       `json:"staff_id"`
	StartDate        string                       `json:"start_date"`
	EndDate          string                       `json:"end_date"`
	WorkingDays      int                          `json:"working_days"`
	DaysAttended     int                          `json:"days_attended"`
	Absents          int                          `json:"absents"`
	LateDays         int                          `json:"late_days"`
	TotalLateMinutes int                          `json:"total_late_minutes"`
	TotalLateFine    float64                      `json:"total_late_fine"`
	TotalBreakFine   float64                      `json:"total_break_fine"`
	MissingPunches   int                          `json:"missing_punches"`
	Leaves           map[LeaveCategory]LeaveUsage `json:"leaves"`
}
