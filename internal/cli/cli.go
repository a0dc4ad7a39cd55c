// Package cli exposes the reconciliation pipeline as an offline command line tool.
//
//	attendance-engine
//	├── process   reconcile device punches and corrections into daily attendance
//	└── clean     print the cleaned punch log and the removal report
//
// Both commands read a YAML reference file (roster, policy, staff), a JSON
// array of device records and an optional JSON array of correction requests,
// and write JSON to stdout.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/config"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

type options struct {
	reference        string
	punches          string
	corrections      string
	staffID          string
	staffType        string
	start            string
	end              string
	timezone         string
	workCodeTable    string
	threshold        time.Duration
	skipCancellation bool
	lenient          bool
}

func BuildCLI() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "attendance-engine",
		Short: "Reconcile biometric punches into daily attendance",
		Long: `attendance-engine cleans raw device punches, merges correction requests
and produces per-day attendance with lateness and break accounting.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.reference, "reference", "r", "", "YAML reference file with roster, policy and staff")
	flags.StringVar(&opts.punches, "punches", "", "JSON file with an array of device records")
	flags.StringVar(&opts.corrections, "corrections", "", "JSON file with an array of correction requests")
	flags.StringVar(&opts.staffID, "staff-id", "", "staff member to reconcile")
	flags.StringVar(&opts.staffType, "staff-type", "", "override the staff type from the reference file")
	flags.StringVar(&opts.start, "start", "", "first date, YYYY-MM-DD")
	flags.StringVar(&opts.end, "end", "", "last date, YYYY-MM-DD")
	flags.StringVar(&opts.timezone, "timezone", "UTC", "location used to convert device timestamps")
	flags.StringVar(&opts.workCodeTable, "workcode-table", "v2", "device work code table version")
	flags.DurationVar(&opts.threshold, "threshold", 0, "duplicate threshold, overrides the policy value")
	flags.BoolVar(&opts.skipCancellation, "skip-cancellation", false, "do not remove mistaken opposite-role punches")
	flags.BoolVar(&opts.lenient, "lenient", false, "keep out-of-order break punches")

	rootCmd.AddCommand(buildProcessCommand(opts))
	rootCmd.AddCommand(buildCleanCommand(opts))

	return rootCmd
}

func buildProcessCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Reconcile punches into daily attendance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(opts, cmd.OutOrStdout())
		},
	}
}

func buildCleanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Print cleaned punches and the removal report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(opts, cmd.OutOrStdout())
		},
	}
}

func runProcess(opts *options, w io.Writer) error {
	engine, in, err := opts.load()
	if err != nil {
		return err
	}

	result, err := engine.Reconcile(in)
	if err != nil {
		return fmt.Errorf("failed to reconcile attendance: %w", err)
	}

	return writeJSON(w, attendance.StaffAttendanceResponse{
		StaffID:   in.Staff.ID,
		StaffName: in.Staff.Name,
		StartDate: opts.start,
		EndDate:   opts.end,
		Days:      result.Days,
		Removed:   result.Cleaned.Removed,
		FinePairs: result.Cleaned.FinePairs,
	})
}

func runClean(opts *options, w io.Writer) error {
	engine, in, err := opts.load()
	if err != nil {
		return err
	}

	cleaned, err := engine.Clean(in.Device, in.Corrections, in.CleanInput)
	if err != nil {
		return fmt.Errorf("failed to clean punches: %w", err)
	}

	return writeJSON(w, cleaned)
}

// load validates the flags and reads every input file. Records belonging to
// other staff members or falling outside [start, end] are dropped.
func (o *options) load() (*attendanceService.Engine, attendanceService.ReconcileInput, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(o.staffID) {
		errs = append(errs, validator.ValidationError{Field: "staff-id", Message: "staff-id is required"})
	}
	if o.punches == "" {
		errs = append(errs, validator.ValidationError{Field: "punches", Message: "punches file is required"})
	}
	if o.staffType != "" && !validator.IsInSlice(o.staffType, staff.TypeValues) {
		errs = append(errs, validator.ValidationError{Field: "staff-type", Message: "staff-type must be one of: Admin, Academic, Labor, Unknown"})
	}
	start, okStart := validator.IsValidDate(o.start)
	end, okEnd := validator.IsValidDate(o.end)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be in YYYY-MM-DD format"})
	}
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be in YYYY-MM-DD format"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must not be before start"})
	}
	if len(errs) > 0 {
		return nil, attendanceService.ReconcileInput{}, errs
	}

	ref, err := config.LoadReference(o.reference)
	if err != nil {
		return nil, attendanceService.ReconcileInput{}, err
	}

	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, attendanceService.ReconcileInput{}, fmt.Errorf("invalid timezone: %w", err)
	}
	workCodes, err := attendance.WorkCodeTableByVersion(o.workCodeTable)
	if err != nil {
		return nil, attendanceService.ReconcileInput{}, err
	}
	mode := attendanceService.BreakSequenceStrict
	if o.lenient {
		mode = attendanceService.BreakSequenceLenient
	}

	engine := attendanceService.NewEngine(attendanceService.Options{
		DuplicateThreshold: o.threshold,
		EnableCancellation: true,
		BreakMode:          mode,
		WorkCodes:          workCodes,
		Location:           loc,
	})

	var records []attendance.DeviceRecord
	if err := readJSON(o.punches, &records); err != nil {
		return nil, attendanceService.ReconcileInput{}, err
	}
	own := records[:0]
	for _, r := range records {
		if r.StaffID == "" {
			r.StaffID = o.staffID
		}
		if r.StaffID == o.staffID {
			own = append(own, r)
		}
	}
	device, err := engine.DevicePunches(own)
	if err != nil {
		return nil, attendanceService.ReconcileInput{}, fmt.Errorf("failed to convert device records: %w", err)
	}

	var corrections []attendance.CorrectionRequest
	if o.corrections != "" {
		if err := readJSON(o.corrections, &corrections); err != nil {
			return nil, attendanceService.ReconcileInput{}, err
		}
	}

	from, to := timeutil.FormatDate(start), timeutil.FormatDate(end)
	inRange := func(date string) bool { return date >= from && date <= to }

	var devicePunches []attendance.Punch
	for _, p := range device {
		if inRange(p.Date) {
			devicePunches = append(devicePunches, p)
		}
	}
	var ownCorrections []attendance.CorrectionRequest
	for _, c := range corrections {
		if c.StaffID == "" {
			c.StaffID = o.staffID
		}
		if c.StaffID == o.staffID && inRange(c.Date) {
			ownCorrections = append(ownCorrections, c)
		}
	}

	st, _ := ref.StaffByID(o.staffID)
	if o.staffType != "" {
		st.Type = staff.Type(o.staffType)
	}

	return engine, attendanceService.ReconcileInput{
		CleanInput: attendanceService.CleanInput{
			Staff:            st,
			Roster:           ref.Roster,
			Policy:           ref.Policy,
			SkipCancellation: o.skipCancellation,
		},
		Start:       start,
		End:         end,
		Device:      devicePunches,
		Corrections: ownCorrections,
	}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
