// Package schedule implements the deterministic slot engine and the
// event-type slot selector.
package schedule

import (
	"fmt"
	"time"

	"github.com/eventpilot/eventpilot/internal/types"
)

const dateLayout = "2006-01-02"

// Window bounds the working hours slots are tiled into, as whole hours.
// Slots never straddle End; [Start, End) is tiled back to back.
type Window struct {
	Start int
	End   int
}

// DefaultWindow returns the default 9-18 working window.
func DefaultWindow() Window {
	return Window{Start: 9, End: 18}
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ValidateRange checks the preconditions callers must establish before
// invoking GenerateFeasibleSlots: well-formed dates, start <= end, and a
// positive duration. The engine itself does not re-validate.
func ValidateRange(startDate, endDate string, durationHours int) error {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return fmt.Errorf("%w: bad start_date %q, expected YYYY-MM-DD", types.ErrInvalidRequest, startDate)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return fmt.Errorf("%w: bad end_date %q, expected YYYY-MM-DD", types.ErrInvalidRequest, endDate)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start_date %s after end_date %s", types.ErrInvalidRequest, startDate, endDate)
	}
	if durationHours <= 0 {
		return fmt.Errorf("%w: duration_hours must be positive, got %d", types.ErrInvalidRequest, durationHours)
	}
	return nil
}

// GenerateFeasibleSlots enumerates back-to-back slots of durationHours
// within the working window for every day from startDate to endDate
// inclusive. Output is day-major, time-ascending, and a pure function of
// its inputs. A duration longer than the window yields zero slots for
// every day, which is not an error.
//
// Callers must validate inputs with ValidateRange first; the engine
// assumes well-formed ordered dates.
func GenerateFeasibleSlots(startDate, endDate string, durationHours int, w Window) ([]types.Slot, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("parse end_date: %w", err)
	}

	var slots []types.Slot
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format(dateLayout)
		for slotStart := w.Start; slotStart+durationHours <= w.End; slotStart += durationHours {
			slots = append(slots, types.Slot{
				Date:      date,
				StartTime: fmt.Sprintf("%02d:00", slotStart),
				EndTime:   fmt.Sprintf("%02d:00", slotStart+durationHours),
			})
		}
	}
	return slots, nil
}
