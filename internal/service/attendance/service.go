package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/metrics"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
	"golang.org/x/sync/errgroup"
)

const DefaultBatchLimit = 8

// ServiceConfig carries the reference data and tuning knobs of the service.
type ServiceConfig struct {
	Roster     roster.DutyRoster
	Policy     policy.AttendancePolicy
	BatchLimit int
	MaxPeriods int
}

type AttendanceServiceImpl struct {
	tx             database.Transactor
	punchRepo      attendance.PunchRepository
	correctionRepo attendance.CorrectionRepository
	leaveRepo      attendance.LeaveRepository
	processedRepo  attendance.ProcessedRepository
	staffRepo      staff.StaffRepository
	engine         *Engine
	roster         roster.DutyRoster
	policy         policy.AttendancePolicy
	punches        *cache.Store[attendance.Punch]
	corrections    *cache.Store[attendance.CorrectionRequest]
	metrics        *metrics.Collector
	now            func() time.Time
	batchLimit     int
}

// Process implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Process(ctx context.Context, req attendance.ProcessRequest) (attendance.StaffAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	st := staff.Unknown(req.StaffID)
	if req.StaffType != "" {
		st.Type = staff.Type(req.StaffType)
	}

	device, err := s.engine.DevicePunches(req.DeviceRecords)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, fmt.Errorf("failed to convert device records: %w", err)
	}
	for _, p := range req.Punches {
		if p.StaffID == "" {
			p.StaffID = req.StaffID
		}
		if p.Source == "" {
			p.Source = attendance.SourceDevice
		}
		device = append(device, p)
	}

	corrections := make([]attendance.CorrectionRequest, 0, len(req.Corrections))
	for _, c := range req.Corrections {
		if c.StaffID == "" {
			c.StaffID = req.StaffID
		}
		corrections = append(corrections, c)
	}

	result, err := s.reconcile(st, start, end, device, corrections, req.SkipCancellation)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	return toResponse(st, req.StartDate, req.EndDate, result), nil
}

// GetStaffAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStaffAttendance(ctx context.Context, req attendance.StaffAttendanceRequest) (attendance.StaffAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	return s.staffAttendance(ctx, req.StaffID, start, end, req.Force)
}

// GetCleanedPunches implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetCleanedPunches(ctx context.Context, req attendance.StaffAttendanceRequest) (attendance.CleanedPunches, error) {
	if err := req.Validate(); err != nil {
		return attendance.CleanedPunches{}, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return attendance.CleanedPunches{}, err
	}

	st, err := s.loadStaff(ctx, req.StaffID)
	if err != nil {
		return attendance.CleanedPunches{}, err
	}

	device, corrections, err := s.loadInputs(ctx, st.ID, start, end, req.Force)
	if err != nil {
		return attendance.CleanedPunches{}, err
	}

	cleaned, err := s.engine.Clean(device, corrections, CleanInput{
		Staff:  st,
		Roster: s.roster,
		Policy: s.policy,
	})
	if err != nil {
		return attendance.CleanedPunches{}, fmt.Errorf("failed to clean punches: %w", err)
	}

	return cleaned, nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, req attendance.StaffAttendanceRequest) (attendance.Summary, error) {
	if err := req.Validate(); err != nil {
		return attendance.Summary{}, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return attendance.Summary{}, err
	}

	resp, err := s.staffAttendance(ctx, req.StaffID, start, end, req.Force)
	if err != nil {
		return attendance.Summary{}, err
	}

	leaves, err := s.leaveRepo.ListByStaff(ctx, req.StaffID, start, end)
	if err != nil {
		return attendance.Summary{}, fmt.Errorf("failed to list leave records: %w", err)
	}

	summary := Summarize(req.StaffID, resp.Days, leaves, s.policy.LeaveLimits)
	summary.StartDate = req.StartDate
	summary.EndDate = req.EndDate

	return summary, nil
}

// ProcessBatch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ProcessBatch(ctx context.Context, req attendance.BatchAttendanceRequest) (attendance.BatchAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	ids := req.StaffIDs
	if len(ids) == 0 {
		active, err := s.staffRepo.ListActive(ctx)
		if err != nil {
			return attendance.BatchAttendanceResponse{}, fmt.Errorf("failed to list active staff: %w", err)
		}
		for _, st := range active {
			ids = append(ids, st.ID)
		}
	}

	results := make([]attendance.StaffAttendanceResponse, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for i, id := range ids {
		i, id := i, id // per-iteration copies (go directive is pre-1.22)
		g.Go(func() error {
			resp, err := s.staffAttendance(gctx, id, start, end, req.Force)
			if err != nil {
				return fmt.Errorf("staff %s: %w", id, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return attendance.BatchAttendanceResponse{}, err
	}

	return attendance.BatchAttendanceResponse{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Results:   results,
	}, nil
}

// RefreshDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RefreshDay(ctx context.Context, date time.Time) (int, error) {
	day := timeutil.FormatDate(date)

	batch, err := s.ProcessBatch(ctx, attendance.BatchAttendanceRequest{
		StartDate: day,
		EndDate:   day,
		Force:     true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile %s: %w", day, err)
	}

	var days []attendance.ProcessedAttendance
	for _, r := range batch.Results {
		days = append(days, r.Days...)
	}

	err = s.withinTx(ctx, func(txCtx context.Context) error {
		return s.processedRepo.Upsert(txCtx, days)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store processed attendance for %s: %w", day, err)
	}

	s.metrics.SetRefreshStaff(len(batch.Results))
	slog.Info("processed attendance refreshed", "date", day, "staff", len(batch.Results), "days", len(days))

	return len(batch.Results), nil
}

// PruneCache implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PruneCache(now time.Time) int {
	return s.punches.Prune(now) + s.corrections.Prune(now)
}

// InvalidateCorrections implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) InvalidateCorrections(staffID string) {
	s.corrections.Reset(staffID)
}

func (s *AttendanceServiceImpl) staffAttendance(ctx context.Context, staffID string, start, end time.Time, force bool) (attendance.StaffAttendanceResponse, error) {
	st, err := s.loadStaff(ctx, staffID)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	device, corrections, err := s.loadInputs(ctx, st.ID, start, end, force)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	result, err := s.reconcile(st, start, end, device, corrections, false)
	if err != nil {
		return attendance.StaffAttendanceResponse{}, err
	}

	return toResponse(st, timeutil.FormatDate(start), timeutil.FormatDate(end), result), nil
}

func (s *AttendanceServiceImpl) loadStaff(ctx context.Context, staffID string) (staff.Staff, error) {
	st, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			slog.Warn("staff not found, reconciling with unknown type", "staff_id", staffID)
			return staff.Unknown(staffID), nil
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff: %w", err)
	}
	return st, nil
}

// loadInputs serves device punches and corrections for [start, end] from the
// period cache, fetching only what the coverage window is missing.
func (s *AttendanceServiceImpl) loadInputs(ctx context.Context, staffID string, start, end time.Time, force bool) ([]attendance.Punch, []attendance.CorrectionRequest, error) {
	today := timeutil.TruncateDay(s.now().In(s.engine.Options().Location))

	plan := s.punches.Coverage(staffID).Plan(start, end, today, force)
	s.metrics.RecordCacheLookup(plan.ShouldFetch)
	if plan.ShouldFetch {
		// Local dates can straddle UTC days, so read one extra day each side.
		records, err := s.punchRepo.ListByStaff(ctx, staffID, plan.From.AddDate(0, 0, -1), plan.To.AddDate(0, 0, 1))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list device punches: %w", err)
		}
		converted, err := s.engine.DevicePunches(records)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to convert device records: %w", err)
		}
		from, to := timeutil.FormatDate(plan.From), timeutil.FormatDate(plan.To)
		fresh := converted[:0]
		for _, p := range converted {
			if timeutil.InDateRange(p.Date, from, to) {
				fresh = append(fresh, p)
			}
		}
		s.punches.Apply(staffID, plan, fresh)
	}

	cplan := s.corrections.Coverage(staffID).Plan(start, end, today, force)
	s.metrics.RecordCacheLookup(cplan.ShouldFetch)
	if cplan.ShouldFetch {
		fresh, err := s.correctionRepo.List(ctx, staffID, cplan.From, cplan.To)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list corrections: %w", err)
		}
		s.corrections.Apply(staffID, cplan, fresh)
	}

	return s.punches.Range(staffID, start, end), s.corrections.Range(staffID, start, end), nil
}

func (s *AttendanceServiceImpl) reconcile(st staff.Staff, start, end time.Time, device []attendance.Punch, corrections []attendance.CorrectionRequest, skipCancellation bool) (ReconcileResult, error) {
	began := time.Now()

	result, err := s.engine.Reconcile(ReconcileInput{
		CleanInput: CleanInput{
			Staff:            st,
			Roster:           s.roster,
			Policy:           s.policy,
			SkipCancellation: skipCancellation,
		},
		Start:       start,
		End:         end,
		Device:      device,
		Corrections: corrections,
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	s.metrics.RecordPipeline(result.Cleaned, len(result.Days), time.Since(began).Seconds())
	return result, nil
}

func (s *AttendanceServiceImpl) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := timeutil.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", attendance.ErrInvalidDateRange, err)
	}
	end, err := timeutil.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", attendance.ErrInvalidDateRange, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, attendance.ErrInvalidDateRange
	}
	return start, end, nil
}

func toResponse(st staff.Staff, startDate, endDate string, result ReconcileResult) attendance.StaffAttendanceResponse {
	return attendance.StaffAttendanceResponse{
		StaffID:   st.ID,
		StaffName: st.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      result.Days,
		Removed:   result.Cleaned.Removed,
		FinePairs: result.Cleaned.FinePairs,
	}
}

func NewAttendanceService(
	tx database.Transactor,
	punchRepo attendance.PunchRepository,
	correctionRepo attendance.CorrectionRepository,
	leaveRepo attendance.LeaveRepository,
	processedRepo attendance.ProcessedRepository,
	staffRepo staff.StaffRepository,
	engine *Engine,
	cfg ServiceConfig,
	collector *metrics.Collector,
) attendance.AttendanceService {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultBatchLimit
	}
	return &AttendanceServiceImpl{
		tx:             tx,
		punchRepo:      punchRepo,
		correctionRepo: correctionRepo,
		leaveRepo:      leaveRepo,
		processedRepo:  processedRepo,
		staffRepo:      staffRepo,
		engine:         engine,
		roster:         cfg.Roster,
		policy:         cfg.Policy,
		punches:        cache.NewStore(cache.PunchDate, cache.PunchKey, cfg.MaxPeriods),
		corrections:    cache.NewStore(cache.CorrectionDate, cache.CorrectionKey, cfg.MaxPeriods),
		metrics:        collector,
		now:            time.Now,
		batchLimit:     cfg.BatchLimit,
	}
}
