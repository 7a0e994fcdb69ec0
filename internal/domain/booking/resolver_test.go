package booking

import (
	"errors"
	"reflect"
	"testing"

	"github.com/clinichq/clinic/internal/domain/schedule"
	"github.com/clinichq/clinic/pkg/timeofday"
)

func tod(s string) *timeofday.TimeOfDay {
	t := timeofday.MustParse(s)
	return &t
}

func workingDay(weekday int) *schedule.WeeklyEntry {
	return &schedule.WeeklyEntry{
		Weekday:     weekday,
		IsAvailable: true,
		StartTime:   tod("09:00"),
		EndTime:     tod("17:00"),
	}
}

func workingDayWithBreak(weekday int) *schedule.WeeklyEntry {
	w := workingDay(weekday)
	w.BreakStart = tod("13:00")
	w.BreakEnd = tod("14:00")
	return w
}

func leave(lt schedule.LeaveType) *schedule.Leave {
	return &schedule.Leave{LeaveType: lt}
}

func TestResolve_NoEntry(t *testing.T) {
	av, err := Resolve(nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if av.Available || av.Reason != ReasonNotWorkingDay {
		t.Errorf("got %+v, want unavailable/not_working_day", av)
	}
}

func TestResolve_DayOff(t *testing.T) {
	entry := &schedule.WeeklyEntry{Weekday: 1, IsAvailable: false}
	av, err := Resolve(entry, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if av.Available || av.Reason != ReasonNotWorkingDay {
		t.Errorf("got %+v, want unavailable/not_working_day", av)
	}
}

func TestResolve_PlainWorkingDay(t *testing.T) {
	av, err := Resolve(workingDay(2), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !av.Available {
		t.Fatal("expected available")
	}
	want := []Window{{Start: *tod("09:00"), End: *tod("17:00")}}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_BreakSplitsWindow(t *testing.T) {
	av, err := Resolve(workingDayWithBreak(2), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Window{
		{Start: *tod("09:00"), End: *tod("13:00")},
		{Start: *tod("14:00"), End: *tod("17:00")},
	}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_FullDayLeaveDominates(t *testing.T) {
	// Full-day leave wins no matter what else is present for the date.
	leaves := []*schedule.Leave{
		leave(schedule.LeaveHalfDayMorning),
		leave(schedule.LeaveFullDay),
	}
	av, err := Resolve(workingDayWithBreak(3), leaves)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if av.Available || av.Reason != ReasonOnLeave {
		t.Errorf("got %+v, want unavailable/on_leave", av)
	}
}

func TestResolve_HalfDayMorningWithBreak(t *testing.T) {
	av, err := Resolve(workingDayWithBreak(2), []*schedule.Leave{leave(schedule.LeaveHalfDayMorning)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Window{{Start: *tod("14:00"), End: *tod("17:00")}}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_HalfDayEveningWithBreak(t *testing.T) {
	av, err := Resolve(workingDayWithBreak(2), []*schedule.Leave{leave(schedule.LeaveHalfDayEvening)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Window{{Start: *tod("09:00"), End: *tod("13:00")}}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_HalfDayMorningNoBreak(t *testing.T) {
	// Without a break the split is the midpoint of 09:00-17:00, which is
	// 13:00 exactly.
	av, err := Resolve(workingDay(2), []*schedule.Leave{leave(schedule.LeaveHalfDayMorning)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Window{{Start: *tod("13:00"), End: *tod("17:00")}}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_HalfDaySplitRoundsDown(t *testing.T) {
	// 09:00-16:30 has midpoint 12:45; the split rounds down to 12:30.
	entry := &schedule.WeeklyEntry{
		Weekday: 2, IsAvailable: true,
		StartTime: tod("09:00"), EndTime: tod("16:30"),
	}
	av, err := Resolve(entry, []*schedule.Leave{leave(schedule.LeaveHalfDayEvening)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []Window{{Start: *tod("09:00"), End: *tod("12:30")}}
	if !reflect.DeepEqual(av.Windows, want) {
		t.Errorf("windows = %v, want %v", av.Windows, want)
	}
}

func TestResolve_BothHalvesUnionToFullDay(t *testing.T) {
	leaves := []*schedule.Leave{
		leave(schedule.LeaveHalfDayMorning),
		leave(schedule.LeaveHalfDayEvening),
	}
	av, err := Resolve(workingDay(2), leaves)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if av.Available || av.Reason != ReasonOnLeave {
		t.Errorf("got %+v, want unavailable/on_leave", av)
	}
}

func TestResolve_MalformedEntry(t *testing.T) {
	entry := &schedule.WeeklyEntry{Weekday: 2, IsAvailable: true} // missing times
	_, err := Resolve(entry, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, schedule.ErrDataIntegrity) {
		t.Errorf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestResolve_Pure(t *testing.T) {
	entry := workingDayWithBreak(2)
	leaves := []*schedule.Leave{leave(schedule.LeaveHalfDayMorning)}

	first, err := Resolve(entry, leaves)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := Resolve(entry, leaves)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("resolver not pure: %+v vs %+v", first, second)
	}
	// Inputs must not be mutated either.
	if entry.StartTime.String() != "09:00" || entry.BreakStart.String() != "13:00" {
		t.Error("resolver mutated its input entry")
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: *tod("09:00"), End: *tod("13:00")}

	tests := []struct {
		start    string
		duration int
		want     bool
	}{
		{"09:00", 30, true},
		{"12:30", 30, true},  // ends exactly at window end
		{"12:45", 30, false}, // spills past the end
		{"08:30", 30, false},
		{"08:45", 30, false}, // straddles the start
		{"13:00", 30, false},
	}
	for _, tt := range tests {
		if got := w.Contains(*tod(tt.start), tt.duration); got != tt.want {
			t.Errorf("Contains(%s, %d) = %v, want %v", tt.start, tt.duration, got, tt.want)
		}
	}
}
