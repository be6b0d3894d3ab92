package calendar

import "time"

// Calendar decides whether a calendar date is a working day. It is a pure
// value object: callers load the configured weekend weekdays and the public
// holiday table (see Store) and pass the result around explicitly, so the
// same Calendar always yields the same answers.
type Calendar struct {
	weekend  map[time.Weekday]bool
	holidays map[string]bool
}

const dayKeyFormat = "2006-01-02"

func New(weekendDays []time.Weekday, holidays []time.Time) Calendar {
	weekend := make(map[time.Weekday]bool, len(weekendDays))
	for _, day := range weekendDays {
		weekend[day] = true
	}
	holidaySet := make(map[string]bool, len(holidays))
	for _, holiday := range holidays {
		holidaySet[holiday.Format(dayKeyFormat)] = true
	}
	return Calendar{weekend: weekend, holidays: holidaySet}
}

func (c Calendar) IsWorkingDay(date time.Time) bool {
	if c.weekend[date.Weekday()] {
		return false
	}
	return !c.holidays[date.Format(dayKeyFormat)]
}

// CountWorkingDays counts working days in the inclusive range [start, end].
// An inverted range counts as zero; callers treat a zero count as a
// business outcome, never an error.
func (c Calendar) CountWorkingDays(start, end time.Time) int {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0
	}
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if c.IsWorkingDay(day) {
			count++
		}
	}
	return count
}

// WorkingDays enumerates the working days in the inclusive range [start, end].
func (c Calendar) WorkingDays(start, end time.Time) []time.Time {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if c.IsWorkingDay(day) {
			days = append(days, day)
		}
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseWeekday maps a stored weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	switch name {
	case "Sunday":
		return time.Sunday, true
	case "Monday":
		return time.Monday, true
	case "Tuesday":
		return time.Tuesday, true
	case "Wednesday":
		return time.Wednesday, true
	case "Thursday":
		return time.Thursday, true
	case "Friday":
		return time.Friday, true
	case "Saturday":
		return time.Saturday, true
	default:
		return time.Sunday, false
	}
}
