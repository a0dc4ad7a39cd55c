package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	ClockLayout  = "15:04:05"
	SecondsInDay = 24 * 60 * 60
)

// ErrInvalidTimestamp is returned for any clock or date string that cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// ParseClock converts "HH:mm" or "HH:mm:ss" into seconds since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: clock %q", ErrInvalidTimestamp, clock)
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("%w: clock %q", ErrInvalidTimestamp, clock)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > limits[i] {
			return 0, fmt.Errorf("%w: clock %q", ErrInvalidTimestamp, clock)
		}
		values[i] = n
	}

	return values[0]*3600 + values[1]*60 + values[2], nil
}

// NormalizeClock returns the clock formatted as HH:mm:ss.
func NormalizeClock(clock string) (string, error) {
	secs, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatSeconds(secs), nil
}

// ToMinutes returns whole minutes since midnight, dropping seconds.
func ToMinutes(clock string) (int, error) {
	secs, err := ParseClock(clock)
	if err != nil {
		return 0, err
	}
	return secs / 60, nil
}

// FormatSeconds formats seconds since midnight as HH:mm:ss, wrapping past 24h.
func FormatSeconds(secs int) string {
	secs = ((secs % SecondsInDay) + SecondsInDay) % SecondsInDay
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// AddMinutesWrapped adds minutes to a clock time modulo 24h.
func AddMinutesWrapped(clock string, minutes int) (string, error) {
	secs, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatSeconds(secs + minutes*60), nil
}

func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidTimestamp, date)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange lists every calendar date in [start, end] as YYYY-MM-DD.
func DateRange(start, end time.Time) ([]string, error) {
	start = TruncateDay(start)
	end = TruncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", FormatDate(end), FormatDate(start))
	}

	dates := make([]string, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates, nil
}

// TruncateDay drops the clock part while keeping the calendar date of t's location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InDateRange reports whether date lies within [from, to]. All values are YYYY-MM-DD.
func InDateRange(date, from, to string) bool {
	return date >= from && date <= to
}

// PeriodKey returns the "YYYY-MM" bucket of a YYYY-MM-DD date.
func PeriodKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// SplitTimestamp converts epoch seconds into a date and a clock in loc.
func SplitTimestamp(epochSeconds int64, loc *time.Location) (string, string, error) {
	if epochSeconds <= 0 {
		return "", "", fmt.Errorf("%w: epoch %d", ErrInvalidTimestamp, epochSeconds)
	}
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(epochSeconds, 0).In(loc)
	return t.Format(DateLayout), t.Format(ClockLayout), nil
}
