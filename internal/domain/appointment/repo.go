package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForDay returns the doctor's non-cancelled appointments on a date,
	// optionally excluding one appointment (the one being edited).
	ListForDay(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) ([]*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
