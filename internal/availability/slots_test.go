package availability

import (
	"testing"
	"time"

	"github.com/unifyhq/unify/internal/model"
)

func mins(m int) *int { return &m }

// 2026-01-05 is a Monday.
var monday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestDayWindowsFiltersWeekdayAndUnset(t *testing.T) {
	schedules := []model.WorkSchedule{
		{Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)},
		{Weekday: 2, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)},
		{Weekday: 1, StartMinute: nil, EndMinute: nil},
	}

	got := DayWindows(schedules, nil, monday)
	if len(got) != 1 {
		t.Fatalf("want 1 window for Monday, got %d", len(got))
	}
	if got[0].StartMinute != 9*60 || got[0].EndMinute != 17*60 {
		t.Fatalf("unexpected window %+v", got[0])
	}
}

func TestDayWindowsLeaveDaySuppressesAll(t *testing.T) {
	schedules := []model.WorkSchedule{
		{Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)},
	}
	leave := []model.LeaveDay{{Day: monday}}

	if got := DayWindows(schedules, leave, monday); len(got) != 0 {
		t.Fatalf("leave day should yield no windows, got %d", len(got))
	}

	tuesday := monday.AddDate(0, 0, 1)
	schedules[0].Weekday = 2
	if got := DayWindows(schedules, leave, tuesday); len(got) != 1 {
		t.Fatal("leave on Monday should not affect Tuesday")
	}
}

func TestSlotsSkipBookedRanges(t *testing.T) {
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 11 * 60}}
	appts := []model.Appointment{
		{
			Start: monday.Add(9*time.Hour + 30*time.Minute),
			End:   monday.Add(10 * time.Hour),
		},
	}

	got := Slots(monday, windows, appts, 30, monday)
	want := []time.Time{
		monday.Add(9 * time.Hour),
		monday.Add(10 * time.Hour),
		monday.Add(10*time.Hour + 30*time.Minute),
	}
	if len(got) != len(want) {
		t.Fatalf("want %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("slot %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSlotsRejectNonPositiveDuration(t *testing.T) {
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 17 * 60}}
	if got := Slots(monday, windows, nil, 0, monday); got != nil {
		t.Fatal("zero slot duration should produce no slots")
	}
}

func TestSlotsDoNotSpillPastWindowEnd(t *testing.T) {
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 9*60 + 45}}
	got := Slots(monday, windows, nil, 30, monday)
	if len(got) != 1 {
		t.Fatalf("only one 30-minute slot fits in 45 minutes, got %d", len(got))
	}
	if !got[0].Equal(monday.Add(9 * time.Hour)) {
		t.Fatalf("unexpected slot %s", got[0])
	}
}

func TestSlotsSkipStartsBeforeNow(t *testing.T) {
	windows := []Window{{StartMinute: 9 * 60, EndMinute: 11 * 60}}
	now := monday.Add(10 * time.Hour)

	got := Slots(monday, windows, nil, 30, now)
	if len(got) != 2 {
		t.Fatalf("want 2 remaining slots after 10:00, got %d: %v", len(got), got)
	}
	for _, s := range got {
		if s.Before(now) {
			t.Errorf("slot %s is in the past", s)
		}
	}
	if !got[0].Equal(now) {
		t.Fatalf("first slot should be 10:00, got %s", got[0])
	}
}
