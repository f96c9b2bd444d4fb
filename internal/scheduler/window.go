// Package scheduler implements the notification scheduling engine for
// TaskStudy: the hourly urgent-reminder sweep, the daily digest batch, the
// weekly and monthly report batches, and the orchestrator that decides which
// of them a given invocation should run.
//
// All jobs take an explicit reference instant rather than reading the system
// clock, so tests can simulate arbitrary calendar positions.
package scheduler

import "time"

// StartOfDay returns midnight of the given instant's day, in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the most recent Monday at midnight (ISO week start).
// For a Sunday instant this goes back six days.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// EndOfWeek returns the last day of the week starting at weekStart, i.e.
// weekStart plus six days. The week's half-open query window is
// [weekStart, weekStart+7d); EndOfWeek is the inclusive display boundary.
func EndOfWeek(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// StartOfMonth returns the first day of the instant's month at midnight.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfNextMonth returns the first day of the following month at midnight.
// time.Date normalizes month overflow, so December rolls into January.
func StartOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}
