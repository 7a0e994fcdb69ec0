package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/pkg/timeofday"
)

// ErrDataIntegrity marks stored schedule or leave rows that violate their
// own invariants. It is a configuration problem, not a user mistake, and is
// surfaced as such.
var ErrDataIntegrity = errors.New("schedule data integrity violation")

// WeeklyEntry maps to the weekly_schedule table: one row per (doctor,
// weekday) describing the recurring availability template. Weekday follows
// time.Weekday numbering, 0 = Sunday.
type WeeklyEntry struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	DoctorID    uuid.UUID            `db:"doctor_id" json:"doctor_id"`
	Weekday     int                  `db:"weekday" json:"weekday"`
	IsAvailable bool                 `db:"is_available" json:"is_available"`
	StartTime   *timeofday.TimeOfDay `db:"start_min" json:"start_time,omitempty"`
	EndTime     *timeofday.TimeOfDay `db:"end_min" json:"end_time,omitempty"`
	BreakStart  *timeofday.TimeOfDay `db:"break_start_min" json:"break_start,omitempty"`
	BreakEnd    *timeofday.TimeOfDay `db:"break_end_min" json:"break_end,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

// Validate checks the entry's internal consistency. A violation means the
// stored row is malformed, so errors wrap ErrDataIntegrity.
func (w *WeeklyEntry) Validate() error {
	if w.Weekday < 0 || w.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d out of range", ErrDataIntegrity, w.Weekday)
	}
	if !w.IsAvailable {
		return nil
	}
	if w.StartTime == nil || w.EndTime == nil {
		return fmt.Errorf("%w: available day missing start or end time", ErrDataIntegrity)
	}
	if !(*w.StartTime).Before(*w.EndTime) {
		return fmt.Errorf("%w: start_time %s not before end_time %s", ErrDataIntegrity, w.StartTime, w.EndTime)
	}
	if (w.BreakStart == nil) != (w.BreakEnd == nil) {
		return fmt.Errorf("%w: break_start and break_end must be set together", ErrDataIntegrity)
	}
	if w.BreakStart != nil {
		if (*w.BreakStart).Before(*w.StartTime) || !(*w.BreakStart).Before(*w.BreakEnd) || (*w.EndTime).Before(*w.BreakEnd) {
			return fmt.Errorf("%w: break %s-%s outside working window %s-%s",
				ErrDataIntegrity, w.BreakStart, w.BreakEnd, w.StartTime, w.EndTime)
		}
	}
	return nil
}

// LeaveType classifies a date-specific leave override.
type LeaveType string

const (
	LeaveFullDay        LeaveType = "full_day"
	LeaveHalfDayMorning LeaveType = "half_day_morning"
	LeaveHalfDayEvening LeaveType = "half_day_evening"
)

func (lt LeaveType) Valid() bool {
	switch lt {
	case LeaveFullDay, LeaveHalfDayMorning, LeaveHalfDayEvening:
		return true
	}
	return false
}

// Leave maps to the leave table: a date-specific override that takes
// precedence over the weekly template.
type Leave struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"leave_date" json:"date"`
	LeaveType LeaveType `db:"leave_type" json:"leave_type"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (l *Leave) Validate() error {
	if l.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if l.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !l.LeaveType.Valid() {
		return fmt.Errorf("invalid leave_type: %s", l.LeaveType)
	}
	return nil
}

// Default working template applied when a doctor's schedule is first viewed.
var (
	defaultStart = timeofday.MustParse("09:00")
	defaultEnd   = timeofday.MustParse("17:00")
)

// DefaultWeek builds the seed template for a doctor: available every day
// 09:00-17:00 with no break.
func DefaultWeek(doctorID uuid.UUID) []*WeeklyEntry {
	week := make([]*WeeklyEntry, 7)
	for day := 0; day < 7; day++ {
		start, end := defaultStart, defaultEnd
		week[day] = &WeeklyEntry{
			DoctorID:    doctorID,
			Weekday:     day,
			IsAvailable: true,
			StartTime:   &start,
			EndTime:     &end,
		}
	}
	return week
}
