package booking

import (
	"github.com/clinichq/clinic/internal/domain/schedule"
	"github.com/clinichq/clinic/pkg/timeofday"
)

// Rejection reasons surfaced to callers so they can pick another slot.
const (
	ReasonNotWorkingDay       = "not_working_day"
	ReasonOnLeave             = "on_leave"
	ReasonOutsideWorkingHours = "outside_working_hours"
	ReasonSlotTaken           = "slot_taken"
)

// Window is a half-open [Start, End) bookable interval.
type Window struct {
	Start timeofday.TimeOfDay `json:"start"`
	End   timeofday.TimeOfDay `json:"end"`
}

// Contains reports whether [start, start+duration) lies fully inside the
// window.
func (w Window) Contains(start timeofday.TimeOfDay, durationMinutes int) bool {
	end := start.Add(durationMinutes)
	return !start.Before(w.Start) && !w.End.Before(end)
}

// Availability is the resolver's verdict for one (doctor, date).
type Availability struct {
	Available bool     `json:"available"`
	Reason    string   `json:"reason,omitempty"`
	Windows   []Window `json:"windows,omitempty"`
}

// halfDaySplit is the cutoff between the morning and evening halves of a
// working day. With a configured break the break bounds it naturally; a
// morning leave ends at break start and an evening leave begins at break
// end. Without a break the split is the midpoint of the working window,
// rounded down to the nearest half hour.
func halfDaySplit(entry *schedule.WeeklyEntry) (morningEnd, eveningStart timeofday.TimeOfDay) {
	if entry.BreakStart != nil {
		return *entry.BreakStart, *entry.BreakEnd
	}
	mid := entry.StartTime.Minutes() + (entry.EndTime.Minutes()-entry.StartTime.Minutes())/2
	mid -= mid % 30
	split := timeofday.TimeOfDay(mid)
	return split, split
}

// Resolve combines a doctor's weekly template row for the day with that
// date's leave rows into the set of bookable windows. It is a pure function
// of its inputs: identical rows always produce an identical verdict.
//
// Full-day leave always wins. When both half-day leaves are present their
// carve-outs union, which also empties the day. A malformed template row
// is reported as a data integrity failure rather than silently defaulted.
func Resolve(entry *schedule.WeeklyEntry, leaves []*schedule.Leave) (Availability, error) {
	if entry == nil || !entry.IsAvailable {
		return Availability{Available: false, Reason: ReasonNotWorkingDay}, nil
	}
	if err := entry.Validate(); err != nil {
		return Availability{}, err
	}

	var morningOff, eveningOff bool
	for _, l := range leaves {
		switch l.LeaveType {
		case schedule.LeaveFullDay:
			return Availability{Available: false, Reason: ReasonOnLeave}, nil
		case schedule.LeaveHalfDayMorning:
			morningOff = true
		case schedule.LeaveHalfDayEvening:
			eveningOff = true
		}
	}

	start, end := *entry.StartTime, *entry.EndTime
	morningEnd, eveningStart := halfDaySplit(entry)

	var windows []Window
	if !morningOff {
		windows = appendWindow(windows, start, morningEnd)
	}
	if !eveningOff {
		windows = appendWindow(windows, eveningStart, end)
	}
	if !morningOff && !eveningOff && entry.BreakStart == nil {
		// No break and no carve-outs: the day is one uninterrupted window.
		windows = []Window{{Start: start, End: end}}
	}

	if len(windows) == 0 {
		return Availability{Available: false, Reason: ReasonOnLeave}, nil
	}
	return Availability{Available: true, Windows: windows}, nil
}

func appendWindow(windows []Window, start, end timeofday.TimeOfDay) []Window {
	if !start.Before(end) {
		return windows
	}
	return append(windows, Window{Start: start, End: end})
}
