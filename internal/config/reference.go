package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/policy"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/roster"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/staff"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/timeutil"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

// Reference is the read-only reference data shared by the server and the CLI.
type Reference struct {
	Roster roster.DutyRoster       `yaml:"roster"`
	Policy policy.AttendancePolicy `yaml:"policy"`
	Staff  []staff.Staff           `yaml:"staff"`
}

// DefaultReference has an empty roster and the default policy.
func DefaultReference() Reference {
	return Reference{Policy: policy.Default()}
}

// LoadReference reads the YAML reference file at path. An empty path yields DefaultReference.
func LoadReference(path string) (Reference, error) {
	if path == "" {
		return DefaultReference(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Reference{}, fmt.Errorf("failed to read reference file: %w", err)
	}

	ref, err := ParseReference(bytes.NewReader(data))
	if err != nil {
		return Reference{}, fmt.Errorf("reference file %s: %w", path, err)
	}
	return ref, nil
}

// ParseReference decodes YAML reference data. Policy fields absent from the
// document keep their default values.
func ParseReference(r io.Reader) (Reference, error) {
	ref := DefaultReference()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ref); err != nil && !errors.Is(err, io.EOF) {
		return Reference{}, fmt.Errorf("failed to decode reference data: %w", err)
	}

	if err := ref.Validate(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Validate checks clock times, dates and policy values.
func (r Reference) Validate() error {
	var errs validator.ValidationErrors

	for i, d := range r.Roster.DutyTimes {
		if _, err := timeutil.NormalizeClock(d.Time); err != nil {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("roster.duty_times[%d].time", i), Message: "must be a valid clock time"})
		}
	}
	for i, o := range r.Roster.DailyOverrides {
		if _, ok := validator.IsValidDate(o.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("roster.daily_overrides[%d].date", i), Message: "must be in YYYY-MM-DD format"})
		}
	}
	for i, s := range r.Roster.SpecialDuties {
		field := fmt.Sprintf("roster.special_duties[%d]", i)
		if _, err := timeutil.NormalizeClock(s.Time); err != nil {
			errs = append(errs, validator.ValidationError{Field: field + ".time", Message: "must be a valid clock time"})
		}
		from, okFrom := validator.IsValidDate(s.From)
		to, okTo := validator.IsValidDate(s.To)
		if !okFrom || !okTo || to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "from and to must form a valid date range"})
		}
	}
	for i, h := range append(append([]roster.Holiday{}, r.Roster.PublicHolidays...), r.Roster.SpecialHolidays...) {
		if _, ok := validator.IsValidDate(h.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("roster.holidays[%d].date", i), Message: "must be in YYYY-MM-DD format"})
		}
	}

	switch r.Policy.Punch.MissingPunchPolicy {
	case "", policy.MissingPunchFlag, policy.MissingPunchIgnore, policy.MissingPunchAutoFill, policy.MissingPunchNotify:
	default:
		errs = append(errs, validator.ValidationError{Field: "policy.punch.missing_punch_policy", Message: "must be one of flag, ignore, auto-fill, notify"})
	}
	if r.Policy.Punch.DuplicateThreshold < 0 {
		errs = append(errs, validator.ValidationError{Field: "policy.punch.duplicate_threshold", Message: "must not be negative"})
	}

	seen := make(map[string]bool, len(r.Staff))
	for i, s := range r.Staff {
		field := fmt.Sprintf("staff[%d].id", i)
		if validator.IsEmpty(s.ID) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "id is required"})
			continue
		}
		if seen[s.ID] {
			errs = append(errs, validator.ValidationError{Field: field, Message: "duplicate staff id"})
		}
		seen[s.ID] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StaffByID returns the staff record for id, or a placeholder when it is not listed.
func (r Reference) StaffByID(id string) (staff.Staff, bool) {
	for _, s := range r.Staff {
		if s.ID == id {
			return s, true
		}
	}
	return staff.Unknown(id), false
}
