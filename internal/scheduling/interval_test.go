package scheduling

import (
	"testing"
	"time"

	"github.com/unifyhq/unify/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 1, 5, hour, min, 0, 0, time.UTC)
}

func TestFindConflictRejectsOverlap(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", EmployeeID: "e1", Start: at(9, 0), End: at(9, 30)},
	}

	if c := FindConflict(existing, at(9, 15), at(9, 45), ""); c == nil {
		t.Fatal("expected 09:15-09:45 to conflict with 09:00-09:30")
	}
}

func TestFindConflictAcceptsTouchingBoundary(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", EmployeeID: "e1", Start: at(9, 0), End: at(9, 30)},
	}

	if c := FindConflict(existing, at(9, 30), at(10, 0), ""); c != nil {
		t.Fatalf("expected 09:30 start to be accepted against 09:00-09:30, got conflict with %s-%s", c.Start, c.End)
	}
	if c := FindConflict(existing, at(8, 30), at(9, 0), ""); c != nil {
		t.Fatal("expected 08:30-09:00 to be accepted against 09:00-09:30")
	}
}

func TestFindConflictContainment(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", Start: at(9, 0), End: at(12, 0)},
	}
	if c := FindConflict(existing, at(10, 0), at(10, 30), ""); c == nil {
		t.Fatal("expected contained interval to conflict")
	}
	if c := FindConflict(existing, at(8, 0), at(13, 0), ""); c == nil {
		t.Fatal("expected containing interval to conflict")
	}
}

func TestFindConflictIgnoresStatus(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", Start: at(9, 0), End: at(9, 30), Status: model.StatusCancelled},
	}
	if c := FindConflict(existing, at(9, 0), at(9, 30), ""); c == nil {
		t.Fatal("cancelled appointment should still block its slot")
	}
}

func TestFindConflictExcludesSelf(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", Start: at(9, 0), End: at(9, 30)},
	}
	if c := FindConflict(existing, at(9, 0), at(9, 30), "a1"); c != nil {
		t.Fatal("an update must not conflict with its own row")
	}
}

func TestFindConflictZeroLengthCandidate(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", Start: at(9, 0), End: at(9, 30)},
	}
	// Zero-duration service yields an empty interval, which never overlaps.
	if c := FindConflict(existing, at(9, 15), at(9, 15), ""); c != nil {
		t.Fatal("empty interval should not conflict")
	}
}

func TestFindDuplicate(t *testing.T) {
	existing := []model.Appointment{
		{ID: "a1", ClientID: "c1", ServiceID: "s1", EmployeeID: "e1", Start: at(9, 0), End: at(9, 30)},
	}
	cand := model.Appointment{ClientID: "c1", ServiceID: "s1", EmployeeID: "e1", Start: at(9, 0)}

	if !FindDuplicate(existing, cand, "") {
		t.Fatal("identical tuple should be a duplicate")
	}
	if FindDuplicate(existing, cand, "a1") {
		t.Fatal("self-exclusion should clear the duplicate")
	}

	cand.ServiceID = "s2"
	if FindDuplicate(existing, cand, "") {
		t.Fatal("different service should not be a duplicate")
	}
}

func TestConflictMessageNamesEmployeeAndWindow(t *testing.T) {
	got := ConflictMessage("John Smith", model.Appointment{Start: at(9, 0), End: at(9, 30)})
	want := "John Smith is already booked from 2026-01-05 09:00:00 to 2026-01-05 09:30:00"
	if got != want {
		t.Fatalf("ConflictMessage = %q, want %q", got, want)
	}
}

func mins(m int) *int { return &m }

func TestScheduleConflict(t *testing.T) {
	monday := []model.WorkSchedule{
		{ID: "w1", EmployeeID: "e1", Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)},
	}

	overlap := model.WorkSchedule{EmployeeID: "e1", Weekday: 1, StartMinute: mins(16 * 60), EndMinute: mins(18 * 60)}
	if c := ScheduleConflict(monday, overlap); c == nil {
		t.Fatal("16:00-18:00 should conflict with 09:00-17:00")
	}

	touching := model.WorkSchedule{EmployeeID: "e1", Weekday: 1, StartMinute: mins(17 * 60), EndMinute: mins(18 * 60)}
	if c := ScheduleConflict(monday, touching); c != nil {
		t.Fatal("17:00-18:00 should not conflict with 09:00-17:00")
	}

	otherDay := model.WorkSchedule{EmployeeID: "e1", Weekday: 2, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)}
	if c := ScheduleConflict(monday, otherDay); c != nil {
		t.Fatal("a different weekday never conflicts")
	}

	containing := model.WorkSchedule{EmployeeID: "e1", Weekday: 1, StartMinute: mins(8 * 60), EndMinute: mins(18 * 60)}
	if c := ScheduleConflict(monday, containing); c == nil {
		t.Fatal("08:00-18:00 should conflict with the contained 09:00-17:00")
	}
}

func TestScheduleConflictUnsetHours(t *testing.T) {
	rows := []model.WorkSchedule{
		{ID: "w1", Weekday: 1, StartMinute: nil, EndMinute: nil},
	}
	cand := model.WorkSchedule{Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)}
	if c := ScheduleConflict(rows, cand); c != nil {
		t.Fatal("a row with unset hours should never conflict")
	}

	unset := model.WorkSchedule{Weekday: 1}
	full := []model.WorkSchedule{
		{ID: "w2", Weekday: 1, StartMinute: mins(0), EndMinute: mins(1440)},
	}
	if c := ScheduleConflict(full, unset); c != nil {
		t.Fatal("a candidate with unset hours should never conflict")
	}
}

func TestScheduleConflictExcludesSelf(t *testing.T) {
	rows := []model.WorkSchedule{
		{ID: "w1", Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)},
	}
	cand := model.WorkSchedule{ID: "w1", Weekday: 1, StartMinute: mins(9 * 60), EndMinute: mins(17 * 60)}
	if c := ScheduleConflict(rows, cand); c != nil {
		t.Fatal("updating a row must not conflict with itself")
	}
}
