// Package hours decides whether a workspace is currently inside its
// configured business hours.
package hours

import (
	"strings"
	"time"
)

// DaySchedule is one entry of a weekly working-hours table.
type DaySchedule struct {
	Day       string `json:"day"` // weekday name, e.g. "Monday"
	Open      bool   `json:"open"`
	StartTime string `json:"start_time"` // "HH:MM", 24h wall clock
	EndTime   string `json:"end_time"`
}

// IsWorkingHours reports whether the current instant falls inside the
// given weekly schedule. Holiday mode overrides everything.
func IsWorkingHours(holidayMode bool, days []DaySchedule) bool {
	return IsWorkingHoursAt(holidayMode, days, time.Now())
}

// IsWorkingHoursAt is IsWorkingHours with an explicit clock.
//
// Times are compared as "HH:MM" strings against the process-local wall
// clock; there is no per-workspace timezone. Both bounds are inclusive.
func IsWorkingHoursAt(holidayMode bool, days []DaySchedule, now time.Time) bool {
	if holidayMode {
		return false
	}

	weekday := now.Weekday().String()
	current := now.Format("15:04")

	for _, d := range days {
		if !strings.EqualFold(d.Day, weekday) {
			continue
		}
		if !d.Open {
			return false
		}
		return current >= d.StartTime && current <= d.EndTime
	}

	// No entry for today means closed.
	return false
}

// DefaultWeek returns the schedule a workspace starts with: weekdays
// 09:00-17:00, weekend closed.
func DefaultWeek() []DaySchedule {
	week := []DaySchedule{
		{Day: "Monday", Open: true},
		{Day: "Tuesday", Open: true},
		{Day: "Wednesday", Open: true},
		{Day: "Thursday", Open: true},
		{Day: "Friday", Open: true},
		{Day: "Saturday", Open: false},
		{Day: "Sunday", Open: false},
	}
	for i := range week {
		week[i].StartTime = "09:00"
		week[i].EndTime = "17:00"
	}
	return week
}
