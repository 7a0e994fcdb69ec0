package appointment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/pkg/timeofday"
)

// ErrSlotConflict is returned when a write collides with another
// appointment occupying the same slot, either logically or through the
// storage-level uniqueness constraint.
var ErrSlotConflict = errors.New("appointment slot conflict")

// ErrNotFound is returned by repository lookups when no appointment
// matches the given id.
var ErrNotFound = errors.New("appointment not found")

// Status is the appointment workflow state. Transitions only move forward;
// see CanTransitionTo.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const DefaultDurationMinutes = 30

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	DoctorID        uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID           `db:"patient_id" json:"patient_id"`
	Date            time.Time           `db:"appointment_date" json:"date"`
	StartTime       timeofday.TimeOfDay `db:"start_min" json:"start_time"`
	DurationMinutes int                 `db:"duration_minutes" json:"duration_minutes"`
	Status          Status              `db:"status" json:"status"`
	Notes           *string             `db:"notes" json:"notes,omitempty"`
	CreatedBy       string              `db:"created_by" json:"created_by"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`
}

// End returns the exclusive end of the appointment's interval.
func (a *Appointment) End() timeofday.TimeOfDay {
	return a.StartTime.Add(a.DurationMinutes)
}

// Overlaps reports whether [start, start+duration) intersects this
// appointment's interval. Both intervals are half-open, so two
// appointments that merely touch at an endpoint do not overlap.
func (a *Appointment) Overlaps(start timeofday.TimeOfDay, durationMinutes int) bool {
	end := start.Add(durationMinutes)
	return a.StartTime.Before(end) && start.Before(a.End())
}
