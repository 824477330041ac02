// Package scheduling validates and persists appointments. The validation
// rules are pure functions over in-memory slices; the Engine wires them to
// storage inside a transaction.
package scheduling

import (
	"time"

	"github.com/unifyhq/unify/internal/model"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflict returns the first existing appointment whose interval overlaps
// [start, end), skipping excludeID so an update does not conflict with itself.
// Status is deliberately ignored: a cancelled appointment still holds its slot.
func FindConflict(existing []model.Appointment, start, end time.Time, excludeID string) *model.Appointment {
	for i := range existing {
		if existing[i].ID == excludeID {
			continue
		}
		if Overlaps(existing[i].Start, existing[i].End, start, end) {
			return &existing[i]
		}
	}
	return nil
}

// FindDuplicate returns true when an existing appointment has the identical
// (client, service, employee, start) tuple. A coarser guard than the overlap
// check, mirrored by a unique constraint in the store.
func FindDuplicate(existing []model.Appointment, cand model.Appointment, excludeID string) bool {
	for i := range existing {
		if existing[i].ID == excludeID {
			continue
		}
		if existing[i].ClientID == cand.ClientID &&
			existing[i].ServiceID == cand.ServiceID &&
			existing[i].EmployeeID == cand.EmployeeID &&
			existing[i].Start.Equal(cand.Start) {
			return true
		}
	}
	return false
}

// ScheduleConflict returns the first existing work-schedule row on the same
// weekday whose [start, end) minute window intersects the candidate's.
// Rows with unset hours never conflict. The candidate's own ID is skipped.
func ScheduleConflict(existing []model.WorkSchedule, cand model.WorkSchedule) *model.WorkSchedule {
	if cand.StartMinute == nil || cand.EndMinute == nil {
		return nil
	}
	cs, ce := *cand.StartMinute, *cand.EndMinute
	for i := range existing {
		ws := &existing[i]
		if ws.ID == cand.ID || ws.Weekday != cand.Weekday {
			continue
		}
		if ws.StartMinute == nil || ws.EndMinute == nil {
			continue
		}
		es, ee := *ws.StartMinute, *ws.EndMinute
		switch {
		case es <= cs && cs < ee:
			return ws
		case es < ce && ce <= ee:
			return ws
		case cs <= es && ce >= ee:
			return ws
		}
	}
	return nil
}
