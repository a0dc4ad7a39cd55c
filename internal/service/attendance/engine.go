package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
)

// Options configures one deployment of the reconciliation pipeline.
// A zero DuplicateThreshold defers to the policy threshold.
type Options struct {
	DuplicateThreshold time.Duration
	EnableCancellation bool
	BreakMode          BreakSequenceMode
	Windows            NormalizeWindows
	WorkCodes          attendance.WorkCodeTable
	Corrections        attendance.CorrectionTable
	Location           *time.Location
	Weekend            []time.Weekday
}

func DefaultOptions() Options {
	return Options{
		EnableCancellation: true,
		BreakMode:          BreakSequenceStrict,
		Windows:            DefaultWindows(),
		WorkCodes:          attendance.WorkCodesV2,
		Corrections:        attendance.CorrectionsV2,
		Location:           time.UTC,
		Weekend:            DefaultWeekend,
	}
}

// Engine runs the pure reconciliation pipeline. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.BreakMode == "" {
		opts.BreakMode = def.BreakMode
	}
	if opts.Windows == (NormalizeWindows{}) {
		opts.Windows = def.Windows
	}
	if opts.WorkCodes.Codes == nil {
		opts.WorkCodes = def.WorkCodes
	}
	if opts.Corrections.Types == nil {
		opts.Corrections = def.Corrections
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if len(opts.Weekend) == 0 {
		opts.Weekend = def.Weekend
	}
	return &Engine{opts: opts}
}

func (e *Engine) Options() Options {
	return e.opts
}

type CleanInput struct {
	Staff            staff.Staff
	Roster           roster.DutyRoster
	Policy           policy.AttendancePolicy
	SkipCancellation bool
}

type ReconcileInput struct {
	CleanInput
	Start       time.Time
	End         time.Time
	Device      []attendance.Punch
	Corrections []attendance.CorrectionRequest
}

type ReconcileResult struct {
	Days    []attendance.ProcessedAttendance
	Cleaned attendance.CleanedPunches
}

// DevicePunches converts raw device rows using the configured work code table and location.
func (e *Engine) DevicePunches(records []attendance.DeviceRecord) ([]attendance.Punch, error) {
	return DeviceRecordsToPunches(records, e.opts.WorkCodes, e.opts.Location)
}

// Threshold resolves the duplicate threshold for a policy.
func (e *Engine) Threshold(p policy.AttendancePolicy) time.Duration {
	if e.opts.DuplicateThreshold > 0 {
		return e.opts.DuplicateThreshold
	}
	return p.Threshold()
}

// Clean normalizes device punches, merges corrections and runs the
// duplicate, cancellation and break-sequence filters in that order.
func (e *Engine) Clean(device []attendance.Punch, corrections []attendance.CorrectionRequest, in CleanInput) (attendance.CleanedPunches, error) {
	normalized, err := NormalizePunches(device, in.Staff, in.Roster, e.opts.Windows)
	if err != nil {
		return attendance.CleanedPunches{}, err
	}

	synthetic, err := CorrectionsToPunches(corrections, e.opts.Corrections, e.opts.WorkCodes)
	if err != nil {
		return attendance.CleanedPunches{}, fmt.Errorf("failed to merge corrections: %w", err)
	}

	all := make([]attendance.Punch, 0, len(normalized)+len(synthetic))
	all = append(all, normalized...)
	all = append(all, synthetic...)

	threshold := e.Threshold(in.Policy)
	result := attendance.CleanedPunches{
		DeviceLogs:     normalized,
		CorrectionLogs: synthetic,
		Removed:        []attendance.RemovedPunch{},
		FinePairs:      []attendance.PunchPair{},
	}

	dedup, err := DeduplicatePunches(all, threshold)
	if err != nil {
		return attendance.CleanedPunches{}, fmt.Errorf("failed to deduplicate punches: %w", err)
	}
	result.Removed = append(result.Removed, dedup.Removed...)
	stream := dedup.Deduplicated

	if e.opts.EnableCancellation && !in.SkipCancellation {
		cancelled, err := RemoveCancelledPairs(stream, threshold)
		if err != nil {
			return attendance.CleanedPunches{}, fmt.Errorf("failed to remove cancelled pairs: %w", err)
		}
		result.Removed = append(result.Removed, cancelled.Removed...)
		result.FinePairs = append(result.FinePairs, cancelled.FinePairs...)
		stream = cancelled.Kept
	}

	breaks, err := FilterBreakSequence(stream, e.opts.BreakMode)
	if err != nil {
		return attendance.CleanedPunches{}, fmt.Errorf("failed to filter break sequence: %w", err)
	}
	result.Removed = append(result.Removed, breaks.Removed...)
	result.Cleaned = breaks.Kept

	return result, nil
}

// Reconcile cleans the inputs and aggregates them over [Start, End].
func (e *Engine) Reconcile(in ReconcileInput) (ReconcileResult, error) {
	if timeutil.TruncateDay(in.End).Before(timeutil.TruncateDay(in.Start)) {
		return ReconcileResult{}, attendance.ErrInvalidDateRange
	}

	cleaned, err := e.Clean(in.Device, in.Corrections, in.CleanInput)
	if err != nil {
		return ReconcileResult{}, err
	}

	pol := in.Policy
	pol.Punch.DuplicateThreshold = e.Threshold(in.Policy)

	days, err := ProcessAttendance(cleaned.Cleaned, ProcessInput{
		Staff:   in.Staff,
		Start:   in.Start,
		End:     in.End,
		Roster:  in.Roster,
		Policy:  pol,
		Weekend: e.opts.Weekend,
	})
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	return ReconcileResult{Days: days, Cleaned: cleaned}, nil
}
