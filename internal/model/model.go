// Package model defines the entities shared by the directories and the
// scheduling engine. Every entity carries the ID of the account that owns it;
// repositories never return rows across tenant boundaries without it.
package model

import "time"

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Company is the tenant's public profile. One per account; the slug is a pure
// function of the name and is recomputed on every save, so renaming changes it.
type Company struct {
	ID        string
	OwnerID   string
	Name      string
	Slug      string
	CreatedAt time.Time
}

type ServiceCategory struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

// Service duration feeds appointment end-time derivation. CategoryID is nil
// for uncategorized services; name uniqueness is scoped to (owner, category).
type Service struct {
	ID              string
	OwnerID         string
	CategoryID      *string
	Name            string
	Slug            string
	DurationMinutes int
	CreatedAt       time.Time
}

type Employee struct {
	ID          string
	OwnerID     string
	Name        string
	CategoryIDs []string
	CreatedAt   time.Time
}

// WorkSchedule is one recurring weekly availability window. Both minute fields
// are nil when the row exists but the hours are not set yet.
type WorkSchedule struct {
	ID          string
	OwnerID     string
	EmployeeID  string
	Weekday     int // 0-6, Sunday = 0
	StartMinute *int
	EndMinute   *int
}

// LeaveDay blocks scheduling for one employee on one calendar date.
type LeaveDay struct {
	ID         string
	EmployeeID string
	Day        time.Time
}

type Client struct {
	ID        string
	OwnerID   string
	Name      string
	Email     string
	CreatedAt time.Time
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment end time is derived: End = Start + service duration at the
// moment of the last save. All statuses occupy the employee's calendar.
type Appointment struct {
	ID         string
	OwnerID    string
	ClientID   string
	ServiceID  string
	EmployeeID string
	Start      time.Time
	End        time.Time
	Status     AppointmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
