package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetWeek returns the doctor's weekly template, seeding the default week
// (every day 09:00-17:00, no break) the first time a schedule is viewed.
func (s *Service) GetWeek(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyEntry, error) {
	entries, err := s.repo.ListWeekly(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}

	week := DefaultWeek(doctorID)
	if err := s.repo.UpsertWeekly(ctx, week); err != nil {
		return nil, fmt.Errorf("seeding default week: %w", err)
	}
	log.Info().Str("doctor_id", doctorID.String()).Msg("seeded default weekly schedule")
	return week, nil
}

// SaveWeek validates and persists a doctor's weekly template. Entries must
// cover distinct weekdays; each entry is checked against the schedule
// invariants before any write happens.
func (s *Service) SaveWeek(ctx context.Context, doctorID uuid.UUID, entries []*WeeklyEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no schedule entries provided")
	}

	seen := make(map[int]bool, len(entries))
	for _, w := range entries {
		w.DoctorID = doctorID
		if err := w.Validate(); err != nil {
			return err
		}
		if seen[w.Weekday] {
			return fmt.Errorf("duplicate entry for weekday %d", w.Weekday)
		}
		seen[w.Weekday] = true
	}
	return s.repo.UpsertWeekly(ctx, entries)
}

func (s *Service) AddLeave(ctx context.Context, l *Leave) error {
	if err := l.Validate(); err != nil {
		return err
	}
	l.Date = truncateToDate(l.Date)
	return s.repo.CreateLeave(ctx, l)
}

// MarkOffTomorrow is the one-click shortcut: a full-day leave for tomorrow.
func (s *Service) MarkOffTomorrow(ctx context.Context, doctorID uuid.UUID, reason *string) (*Leave, error) {
	l := &Leave{
		DoctorID:  doctorID,
		Date:      truncateToDate(time.Now().AddDate(0, 0, 1)),
		LeaveType: LeaveFullDay,
		Reason:    reason,
	}
	if err := s.repo.CreateLeave(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// ListUpcomingLeave returns leave from today onward. Past rows stay in
// storage for historical availability checks but are not listed here.
func (s *Service) ListUpcomingLeave(ctx context.Context, doctorID uuid.UUID) ([]*Leave, error) {
	return s.repo.ListLeaveFrom(ctx, doctorID, truncateToDate(time.Now()))
}

func (s *Service) RemoveLeave(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetLeave(ctx, id); err != nil {
		return fmt.Errorf("leave not found: %w", err)
	}
	return s.repo.DeleteLeave(ctx, id)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
