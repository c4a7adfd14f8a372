// Package payrun determines the Friday pay-run date for an approved
// commission. The rule is fixed: submissions landing strictly before Tuesday
// 3:00 PM in the reference timezone make this week's Friday run; everything
// later rolls to next week's. The functions here are referentially
// transparent and carry no persistence or notification dependencies.
package payrun

import "time"

const (
	cutoffHour = 15 // Tuesday 3:00 PM local

	// DateLayout is the canonical YYYY-MM-DD representation of a pay date.
	// Round-tripping through it is lossless because pay dates are always
	// local midnight.
	DateLayout = "2006-01-02"
)

// NextPayDate maps an instant to its payable Friday in the reference
// location. The result is always a Friday at local midnight, and is never the
// same day as the input: a Friday instant rolls to the following Friday.
func NextPayDate(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	wd := lt.Weekday()

	var days int
	switch wd {
	case time.Friday:
		days = 7
	case time.Saturday:
		days = 6
	default:
		days = int(time.Friday - wd)
		if !beforeCutoff(lt) {
			days += 7
		}
	}

	return time.Date(lt.Year(), lt.Month(), lt.Day()+days, 0, 0, 0, 0, loc)
}

// beforeCutoff reports whether lt is strictly before Tuesday 15:00 of its
// week. Only Sunday, Monday, and Tuesday-before-3PM qualify.
func beforeCutoff(lt time.Time) bool {
	switch lt.Weekday() {
	case time.Sunday, time.Monday:
		return true
	case time.Tuesday:
		return lt.Hour() < cutoffHour
	default:
		return false
	}
}

// FormatDate renders a pay date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate restores a pay date from its YYYY-MM-DD form at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
