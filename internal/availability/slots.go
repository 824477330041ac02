// Package availability computes free booking slots for an employee on a
// given day from their weekly schedule, leave days and existing appointments.
package availability

import (
	"time"

	"github.com/unifyhq/unify/internal/model"
	"github.com/unifyhq/unify/internal/scheduling"
)

// Window is a bookable minute range within one day, half-open.
type Window struct {
	StartMinute int
	EndMinute   int
}

// DayWindows selects the schedule windows that apply on the given calendar
// date. A leave day on that date suppresses all windows; rows with unset
// hours contribute nothing.
func DayWindows(schedules []model.WorkSchedule, leave []model.LeaveDay, day time.Time) []Window {
	for _, ld := range leave {
		if sameDate(ld.Day, day) {
			return nil
		}
	}

	weekday := int(day.Weekday())
	out := []Window{}
	for _, ws := range schedules {
		if ws.Weekday != weekday || ws.StartMinute == nil || ws.EndMinute == nil {
			continue
		}
		if *ws.StartMinute >= *ws.EndMinute {
			continue
		}
		out = append(out, Window{StartMinute: *ws.StartMinute, EndMinute: *ws.EndMinute})
	}
	return out
}

// Slots returns the start times within the given windows where a booking of
// slotMinutes would fit without overlapping an existing appointment.
// Candidates advance in slotMinutes steps from each window's start; starts
// before now are skipped.
func Slots(day time.Time, windows []Window, appts []model.Appointment, slotMinutes int, now time.Time) []time.Time {
	if slotMinutes <= 0 {
		return nil
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dur := time.Duration(slotMinutes) * time.Minute

	out := []time.Time{}
	for _, w := range windows {
		for m := w.StartMinute; m+slotMinutes <= w.EndMinute; m += slotMinutes {
			start := midnight.Add(time.Duration(m) * time.Minute)
			if start.Before(now) {
				continue
			}
			if scheduling.FindConflict(appts, start, start.Add(dur), "") == nil {
				out = append(out, start)
			}
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
