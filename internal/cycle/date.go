package cycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-cycle/internal/config"
)

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New(config.ErrInvalidDate)

// FormatDate builds the YYYY-MM-DD key used by the backend for a calendar day.
func FormatDate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(config.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// DateOf returns the calendar date of t in its own location.
func DateOf(t time.Time) string {
	return FormatDate(t.Year(), t.Month(), t.Day())
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(config.DateLayout), nil
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns 28..31.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// FirstWeekday returns the weekday index (0=Sunday..6=Saturday) of day 1.
func FirstWeekday(year int, month time.Month) int {
	return int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// Month identifies a displayed calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Add shifts the month by n, rolling the year over at the boundaries.
func (m Month) Add(n int) Month {
	total := m.Year*12 + int(m.Month) - 1 + n
	year, idx := total/12, total%12
	if idx < 0 {
		idx += 12
		year--
	}
	return Month{Year: year, Month: time.Month(idx + 1)}
}

// Contains reports whether a YYYY-MM-DD date falls inside the month.
func (m Month) Contains(date string) bool {
	t, err := ParseDate(date)
	if err != nil {
		return false
	}
	return t.Year() == m.Year && t.Month() == m.Month
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return DaysInMonth(m.Year, m.Month)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
