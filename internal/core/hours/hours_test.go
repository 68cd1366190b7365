package hours

import (
	"testing"
	"time"
)

// Monday 2025-06-02, 10:30 local time.
var monMorning = time.Date(2025, 6, 2, 10, 30, 0, 0, time.Local)

func TestHolidayModeAlwaysClosed(t *testing.T) {
	days := DefaultWeek()
	if IsWorkingHoursAt(true, days, monMorning) {
		t.Error("expected closed when holiday mode is on")
	}
	// Even with an always-open schedule.
	for i := range days {
		days[i].Open = true
		days[i].StartTime = "00:00"
		days[i].EndTime = "23:59"
	}
	if IsWorkingHoursAt(true, days, monMorning) {
		t.Error("holiday mode must override the schedule")
	}
}

func TestClosedDay(t *testing.T) {
	days := DefaultWeek()
	for i := range days {
		if days[i].Day == "Monday" {
			days[i].Open = false
		}
	}
	if IsWorkingHoursAt(false, days, monMorning) {
		t.Error("expected closed when today is marked closed")
	}
}

func TestInsideAndOutsideWindow(t *testing.T) {
	days := DefaultWeek()

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"mid morning", monMorning, true},
		{"before open", time.Date(2025, 6, 2, 8, 59, 0, 0, time.Local), false},
		{"exactly open", time.Date(2025, 6, 2, 9, 0, 0, 0, time.Local), true},
		{"exactly close", time.Date(2025, 6, 2, 17, 0, 0, 0, time.Local), true},
		{"after close", time.Date(2025, 6, 2, 17, 1, 0, 0, time.Local), false},
		{"saturday", time.Date(2025, 6, 7, 10, 30, 0, 0, time.Local), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWorkingHoursAt(false, days, tc.at); got != tc.want {
				t.Errorf("IsWorkingHoursAt(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestMissingDayMeansClosed(t *testing.T) {
	days := []DaySchedule{{Day: "Friday", Open: true, StartTime: "09:00", EndTime: "17:00"}}
	if IsWorkingHoursAt(false, days, monMorning) {
		t.Error("expected closed when today has no schedule entry")
	}
}

func TestDayNameCaseInsensitive(t *testing.T) {
	days := []DaySchedule{{Day: "monday", Open: true, StartTime: "09:00", EndTime: "17:00"}}
	if !IsWorkingHoursAt(false, days, monMorning) {
		t.Error("weekday names should match case-insensitively")
	}
}
