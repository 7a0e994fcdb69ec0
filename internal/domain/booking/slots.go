package booking

import (
	"github.com/clinichq/clinic/pkg/timeofday"
)

// GenerateSlots emits every granularity-aligned start time whose full
// [t, t+granularity) interval fits inside one of the availability windows,
// ascending, concatenated in window order. It is presentation-facing and
// deliberately ignores existing appointments: a listed slot can still lose
// the race at booking time.
func GenerateSlots(av Availability, granularityMinutes int) []timeofday.TimeOfDay {
	if !av.Available || granularityMinutes <= 0 {
		return nil
	}

	var slots []timeofday.TimeOfDay
	for _, w := range av.Windows {
		// First aligned instant at or after the window start.
		first := w.Start.Minutes()
		if rem := first % granularityMinutes; rem != 0 {
			first += granularityMinutes - rem
		}
		for t := first; t+granularityMinutes <= w.End.Minutes(); t += granularityMinutes {
			slots = append(slots, timeofday.TimeOfDay(t))
		}
	}
	return slots
}
