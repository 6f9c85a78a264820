package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used for TimeLog dates.
const DateLayout = "2006-01-02"

var weekIDPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// WeekID returns the ISO-8601 week identifier ("2026-W05") of the calendar
// day containing t.
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeekID splits a "YYYY-Www" identifier into its ISO year and week,
// rejecting weeks that do not exist in that year.
func ParseWeekID(id string) (year, week int, err error) {
	m := weekIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: week id %q must look like 2026-W05", ErrValidation, id)
	}
	year, _ = strconv.Atoi(m[1])
	week, _ = strconv.Atoi(m[2])
	if week < 1 || week > weeksInYear(year) {
		return 0, 0, fmt.Errorf("%w: week %d does not exist in ISO year %d", ErrValidation, week, year)
	}
	return year, week, nil
}

// WeekBounds returns Monday 00:00:00 and Sunday 23:59:59 (UTC) of an ISO week.
func WeekBounds(id string) (start, end time.Time, err error) {
	year, week, err := ParseWeekID(id)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = isoWeekMonday(year, week)
	end = start.AddDate(0, 0, 7).Add(-time.Second)
	return start, end, nil
}

// WeekDay returns the calendar date of dayIndex (0=Monday .. 6=Sunday)
// inside the given ISO week.
func WeekDay(id string, dayIndex int) (time.Time, error) {
	if dayIndex < 0 || dayIndex > 6 {
		return time.Time{}, fmt.Errorf("%w: day index %d must be between 0 (Monday) and 6 (Sunday)", ErrValidation, dayIndex)
	}
	start, _, err := WeekBounds(id)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 0, dayIndex), nil
}

// DayIndex returns the 0-based Monday-first weekday of t.
func DayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return d, nil
}

// isoWeekMonday finds the Monday of ISO week 1 (the week holding January 4th)
// and steps forward.
func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1 := jan4.AddDate(0, 0, -DayIndex(jan4))
	return week1.AddDate(0, 0, (week-1)*7)
}

func weeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
