package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/directory"
	"github.com/clinichq/clinic/internal/domain/schedule"
	"github.com/clinichq/clinic/pkg/timeofday"
)

// ErrDoctorNotFound is returned when a booking call references a doctor
// that does not exist.
var ErrDoctorNotFound = errors.New("doctor not found")

// ReasonStorageTimeout marks an Unavailable outcome: the attempt timed out
// against storage and the caller should retry the whole call.
const ReasonStorageTimeout = "storage_timeout"

// ReasonNoFreeSlots is a walk-in rejection: no bookable slot remains today.
const ReasonNoFreeSlots = "no_free_slots"

// Stores consumed by the arbiter. Satisfied by the schedule, appointment
// and directory repositories.

type ScheduleStore interface {
	ListWeekly(ctx context.Context, doctorID uuid.UUID) ([]*schedule.WeeklyEntry, error)
	ListLeaveByDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*schedule.Leave, error)
}

type AppointmentStore interface {
	Insert(ctx context.Context, a *appointment.Appointment) error
	Update(ctx context.Context, a *appointment.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ListForDay(ctx context.Context, doctorID uuid.UUID, date time.Time, excludeID *uuid.UUID) ([]*appointment.Appointment, error)
}

type DoctorStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
}

// Outcome classifies a booking decision.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRejected    Outcome = "rejected"
	OutcomeUnavailable Outcome = "unavailable"
)

// Decision is the arbiter's answer to one booking attempt. Rejections are
// normal outcomes, not errors: they are frequent, must be handled on every
// call path, and carry the reason the caller shows to the user.
type Decision struct {
	Outcome                  Outcome                  `json:"outcome"`
	Reason                   string                   `json:"reason,omitempty"`
	ConflictingAppointmentID *uuid.UUID               `json:"conflicting_appointment_id,omitempty"`
	Appointment              *appointment.Appointment `json:"appointment,omitempty"`
}

func rejected(reason string) *Decision {
	return &Decision{Outcome: OutcomeRejected, Reason: reason}
}

// BookRequest carries one booking or edit attempt.
// ExcludeAppointmentID is set only when re-validating an edit, so the
// appointment being moved does not collide with itself.
type BookRequest struct {
	DoctorID             uuid.UUID
	PatientID            uuid.UUID
	Date                 time.Time
	StartTime            timeofday.TimeOfDay
	DurationMinutes      int
	Notes                *string
	CreatedBy            string
	ExcludeAppointmentID *uuid.UUID
}

type Service struct {
	doctors      DoctorStore
	schedules    ScheduleStore
	appointments AppointmentStore
	slotMinutes  int
}

func NewService(doctors DoctorStore, schedules ScheduleStore, appointments AppointmentStore, slotMinutes int) *Service {
	if slotMinutes <= 0 {
		slotMinutes = appointment.DefaultDurationMinutes
	}
	return &Service{
		doctors:      doctors,
		schedules:    schedules,
		appointments: appointments,
		slotMinutes:  slotMinutes,
	}
}

// ResolveAvailability answers whether the doctor works on date and, if so,
// with which bookable windows.
func (s *Service) ResolveAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) (Availability, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return Availability{}, fmt.Errorf("%w: %s", ErrDoctorNotFound, doctorID)
		}
		return Availability{}, err
	}
	return s.resolve(ctx, doctorID, date)
}

func (s *Service) resolve(ctx context.Context, doctorID uuid.UUID, date time.Time) (Availability, error) {
	entries, err := s.schedules.ListWeekly(ctx, doctorID)
	if err != nil {
		return Availability{}, err
	}
	var entry *schedule.WeeklyEntry
	weekday := int(date.Weekday())
	for _, e := range entries {
		if e.Weekday == weekday {
			entry = e
			break
		}
	}

	leaves, err := s.schedules.ListLeaveByDate(ctx, doctorID, truncateToDate(date))
	if err != nil {
		return Availability{}, err
	}
	return Resolve(entry, leaves)
}

// Slots lists the candidate start times for a date at the given
// granularity; granularity 0 uses the configured default.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, date time.Time, granularityMinutes int) ([]timeofday.TimeOfDay, error) {
	if granularityMinutes <= 0 {
		granularityMinutes = s.slotMinutes
	}
	av, err := s.ResolveAvailability(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	return GenerateSlots(av, granularityMinutes), nil
}

// AttemptBook decides one booking or edit attempt. Availability and
// conflicts are re-checked here at commit time, not trusted from whatever
// the caller rendered. The overlap check plus the storage uniqueness
// constraint together guard against concurrent writers: when the insert
// loses that race the constraint violation comes back as a slot_taken
// rejection, never a raw storage error. A storage timeout is a distinct
// Unavailable outcome; retrying the whole call with the same arguments is
// safe because every attempt re-reads current state.
func (s *Service) AttemptBook(ctx context.Context, req BookRequest) (*Decision, error) {
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = appointment.DefaultDurationMinutes
	}
	req.Date = truncateToDate(req.Date)

	if _, err := s.doctors.GetByID(ctx, req.DoctorID); err != nil {
		switch {
		case isTimeout(err):
			return &Decision{Outcome: OutcomeUnavailable, Reason: ReasonStorageTimeout}, nil
		case errors.Is(err, directory.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrDoctorNotFound, req.DoctorID)
		}
		return nil, err
	}

	av, err := s.resolve(ctx, req.DoctorID, req.Date)
	if err != nil {
		if isTimeout(err) {
			return &Decision{Outcome: OutcomeUnavailable, Reason: ReasonStorageTimeout}, nil
		}
		return nil, err
	}
	if !av.Available {
		return rejected(av.Reason), nil
	}

	covered := false
	for _, w := range av.Windows {
		if w.Contains(req.StartTime, req.DurationMinutes) {
			covered = true
			break
		}
	}
	if !covered {
		return rejected(ReasonOutsideWorkingHours), nil
	}

	existing, err := s.appointments.ListForDay(ctx, req.DoctorID, req.Date, req.ExcludeAppointmentID)
	if err != nil {
		if isTimeout(err) {
			return &Decision{Outcome: OutcomeUnavailable, Reason: ReasonStorageTimeout}, nil
		}
		return nil, err
	}
	for _, other := range existing {
		if other.Overlaps(req.StartTime, req.DurationMinutes) {
			conflictID := other.ID
			return &Decision{
				Outcome:                  OutcomeRejected,
				Reason:                   ReasonSlotTaken,
				ConflictingAppointmentID: &conflictID,
			}, nil
		}
	}

	appt, err := s.commit(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, appointment.ErrSlotConflict):
			// Lost the race to a concurrent writer; the storage constraint
			// caught what the logical check could not.
			return rejected(ReasonSlotTaken), nil
		case isTimeout(err):
			return &Decision{Outcome: OutcomeUnavailable, Reason: ReasonStorageTimeout}, nil
		}
		return nil, err
	}

	log.Info().
		Str("doctor_id", req.DoctorID.String()).
		Str("date", req.Date.Format("2006-01-02")).
		Str("start", req.StartTime.String()).
		Msg("appointment booked")
	return &Decision{Outcome: OutcomeAccepted, Appointment: appt}, nil
}

func (s *Service) commit(ctx context.Context, req BookRequest) (*appointment.Appointment, error) {
	if req.ExcludeAppointmentID != nil {
		appt, err := s.appointments.GetByID(ctx, *req.ExcludeAppointmentID)
		if err != nil {
			return nil, err
		}
		if appt.Status.Terminal() {
			return nil, fmt.Errorf("cannot reschedule a %s appointment", appt.Status)
		}
		appt.DoctorID = req.DoctorID
		appt.Date = req.Date
		appt.StartTime = req.StartTime
		appt.DurationMinutes = req.DurationMinutes
		if req.Notes != nil {
			appt.Notes = req.Notes
		}
		if err := s.appointments.Update(ctx, appt); err != nil {
			return nil, err
		}
		return appt, nil
	}

	appt := &appointment.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Status:          appointment.StatusScheduled,
		Notes:           req.Notes,
		CreatedBy:       req.CreatedBy,
	}
	if err := s.appointments.Insert(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// BookWalkIn finds the earliest free slot today at or after now and books
// it. Candidates that lose a concurrent race are skipped in favor of the
// next one.
func (s *Service) BookWalkIn(ctx context.Context, doctorID, patientID uuid.UUID, now time.Time, notes *string, createdBy string) (*Decision, error) {
	date := truncateToDate(now)
	nowTod := timeofday.TimeOfDay(now.Hour()*60 + now.Minute())

	av, err := s.ResolveAvailability(ctx, doctorID, date)
	if err != nil {
		if isTimeout(err) {
			return &Decision{Outcome: OutcomeUnavailable, Reason: ReasonStorageTimeout}, nil
		}
		return nil, err
	}
	if !av.Available {
		return rejected(av.Reason), nil
	}

	for _, slot := range GenerateSlots(av, s.slotMinutes) {
		if slot.Before(nowTod) {
			continue
		}
		decision, err := s.AttemptBook(ctx, BookRequest{
			DoctorID:        doctorID,
			PatientID:       patientID,
			Date:            date,
			StartTime:       slot,
			DurationMinutes: s.slotMinutes,
			Notes:           notes,
			CreatedBy:       createdBy,
		})
		if err != nil {
			return nil, err
		}
		if decision.Outcome == OutcomeRejected && decision.Reason == ReasonSlotTaken {
			continue
		}
		return decision, nil
	}
	return rejected(ReasonNoFreeSlots), nil
}

// DayView is the combined calendar payload for one doctor-day.
type DayView struct {
	Date         string                     `json:"date"`
	Availability Availability               `json:"availability"`
	Slots        []timeofday.TimeOfDay      `json:"slots"`
	Appointments []*appointment.Appointment `json:"appointments"`
}

func (s *Service) GetDayView(ctx context.Context, doctorID uuid.UUID, date time.Time) (*DayView, error) {
	av, err := s.ResolveAvailability(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListForDay(ctx, doctorID, truncateToDate(date), nil)
	if err != nil {
		return nil, err
	}
	return &DayView{
		Date:         date.Format("2006-01-02"),
		Availability: av,
		Slots:        GenerateSlots(av, s.slotMinutes),
		Appointments: appts,
	}, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
