package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	weekly map[uuid.UUID][]*WeeklyEntry
	leaves map[uuid.UUID]*Leave
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		weekly: make(map[uuid.UUID][]*WeeklyEntry),
		leaves: make(map[uuid.UUID]*Leave),
	}
}

func (m *mockRepo) ListWeekly(_ context.Context, doctorID uuid.UUID) ([]*WeeklyEntry, error) {
	return m.weekly[doctorID], nil
}

func (m *mockRepo) UpsertWeekly(_ context.Context, entries []*WeeklyEntry) error {
	for _, w := range entries {
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		existing := m.weekly[w.DoctorID]
		replaced := false
		for i, e := range existing {
			if e.Weekday == w.Weekday {
				existing[i] = w
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, w)
		}
		m.weekly[w.DoctorID] = existing
	}
	return nil
}

func (m *mockRepo) CreateLeave(_ context.Context, l *Leave) error {
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	m.leaves[l.ID] = l
	return nil
}

func (m *mockRepo) ListLeaveByDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*Leave, error) {
	var result []*Leave
	for _, l := range m.leaves {
		if l.DoctorID == doctorID && l.Date.Equal(date) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockRepo) ListLeaveFrom(_ context.Context, doctorID uuid.UUID, from time.Time) ([]*Leave, error) {
	var result []*Leave
	for _, l := range m.leaves {
		if l.DoctorID == doctorID && !l.Date.Before(from) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockRepo) GetLeave(_ context.Context, id uuid.UUID) (*Leave, error) {
	l, ok := m.leaves[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return l, nil
}

func (m *mockRepo) DeleteLeave(_ context.Context, id uuid.UUID) error {
	delete(m.leaves, id)
	return nil
}

// -- Tests --

func TestGetWeek_SeedsDefaults(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	week, err := svc.GetWeek(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("expected 7 seeded entries, got %d", len(week))
	}
	if len(repo.weekly[doctorID]) != 7 {
		t.Error("expected seeded entries to be persisted")
	}

	// Second view must not re-seed.
	again, err := svc.GetWeek(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("GetWeek: %v", err)
	}
	if len(again) != 7 {
		t.Fatalf("expected 7 entries on second view, got %d", len(again))
	}
	if again[0].ID != week[0].ID {
		t.Error("second view should return the same rows, not a fresh seed")
	}
}

func TestSaveWeek_RejectsInvalidEntry(t *testing.T) {
	svc := NewService(newMockRepo())
	doctorID := uuid.New()

	entries := []*WeeklyEntry{
		{Weekday: 1, IsAvailable: true}, // missing start/end
	}
	if err := svc.SaveWeek(context.Background(), doctorID, entries); err == nil {
		t.Error("expected error for malformed entry")
	}
}

func TestSaveWeek_RejectsDuplicateWeekday(t *testing.T) {
	svc := NewService(newMockRepo())
	doctorID := uuid.New()

	entries := []*WeeklyEntry{
		{Weekday: 1, IsAvailable: true, StartTime: tod("09:00"), EndTime: tod("17:00")},
		{Weekday: 1, IsAvailable: true, StartTime: tod("10:00"), EndTime: tod("18:00")},
	}
	if err := svc.SaveWeek(context.Background(), doctorID, entries); err == nil {
		t.Error("expected error for duplicate weekday")
	}
}

func TestSaveWeek_AssignsDoctorID(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	entries := []*WeeklyEntry{
		{Weekday: 1, IsAvailable: true, StartTime: tod("09:00"), EndTime: tod("13:00")},
	}
	if err := svc.SaveWeek(context.Background(), doctorID, entries); err != nil {
		t.Fatalf("SaveWeek: %v", err)
	}
	if entries[0].DoctorID != doctorID {
		t.Error("expected doctor_id to be set from the path")
	}
}

func TestAddLeave_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	doctorID := uuid.New()

	l := &Leave{DoctorID: doctorID, Date: time.Now(), LeaveType: "long_weekend"}
	if err := svc.AddLeave(context.Background(), l); err == nil {
		t.Error("expected error for invalid leave_type")
	}

	l = &Leave{DoctorID: doctorID, LeaveType: LeaveFullDay}
	if err := svc.AddLeave(context.Background(), l); err == nil {
		t.Error("expected error for missing date")
	}
}

func TestAddLeave_TruncatesToDate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	l := &Leave{
		DoctorID:  uuid.New(),
		Date:      time.Date(2026, 3, 5, 14, 30, 12, 0, time.UTC),
		LeaveType: LeaveHalfDayMorning,
	}
	if err := svc.AddLeave(context.Background(), l); err != nil {
		t.Fatalf("AddLeave: %v", err)
	}
	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !l.Date.Equal(want) {
		t.Errorf("date = %v, want %v", l.Date, want)
	}
}

func TestMarkOffTomorrow(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	l, err := svc.MarkOffTomorrow(context.Background(), doctorID, nil)
	if err != nil {
		t.Fatalf("MarkOffTomorrow: %v", err)
	}
	if l.LeaveType != LeaveFullDay {
		t.Errorf("leave_type = %s, want full_day", l.LeaveType)
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	want := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, time.UTC)
	if !l.Date.Equal(want) {
		t.Errorf("date = %v, want %v", l.Date, want)
	}
}

func TestRemoveLeave_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.RemoveLeave(context.Background(), uuid.New()); err == nil {
		t.Error("expected error for unknown leave")
	}
}

func TestListUpcomingLeave_ExcludesPast(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	past := &Leave{DoctorID: doctorID, Date: truncateToDate(time.Now().AddDate(0, 0, -3)), LeaveType: LeaveFullDay}
	future := &Leave{DoctorID: doctorID, Date: truncateToDate(time.Now().AddDate(0, 0, 3)), LeaveType: LeaveFullDay}
	repo.CreateLeave(context.Background(), past)
	repo.CreateLeave(context.Background(), future)

	leaves, err := svc.ListUpcomingLeave(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("ListUpcomingLeave: %v", err)
	}
	if len(leaves) != 1 || leaves[0].ID != future.ID {
		t.Errorf("expected only the future leave, got %d rows", len(leaves))
	}
}
