// Package budget estimates event costs from headcount, duration, and
// location.
package budget

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/eventpilot/eventpilot/internal/types"
)

// Base rate per hour per person, in INR.
const baseRatePerHourPerPerson = 300.0

// Premium localities carry a 50% uplift on the base rate.
var premiumLocations = []string{"bandra", "juhu", "powai"}

// Estimate computes the projected cost for an event. Location only
// matters for the premium uplift; unknown locations use the base rate.
func Estimate(numberOfPeople, durationHours int, location string) types.BudgetEstimate {
	rate := baseRatePerHourPerPerson

	loc := strings.ToLower(location)
	for _, premium := range premiumLocations {
		if loc == premium {
			rate *= 1.5
			break
		}
	}

	perPerson := rate * float64(durationHours)
	total := perPerson * float64(numberOfPeople)

	return types.BudgetEstimate{
		TotalBudget:    round2(total),
		PerPersonCost:  round2(perPerson),
		Currency:       "INR",
		NumberOfPeople: numberOfPeople,
		DurationHours:  durationHours,
		Location:       location,
	}
}

// EstimateForVenues computes an independent estimate per venue using the
// final agreed headcount. Estimates fan out concurrently, but results are
// merged in venue order so output is deterministic regardless of
// completion order, and one venue's cancellation never drops the others.
func EstimateForVenues(ctx context.Context, venues []types.Place, numberOfPeople, durationHours int, location string) []types.VenueBudget {
	if len(venues) == 0 {
		return nil
	}

	out := make([]types.VenueBudget, len(venues))
	var wg sync.WaitGroup
	for i, venue := range venues {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				out[i] = types.VenueBudget{Venue: venue.Name, Error: err.Error()}
				return
			}
			out[i] = types.VenueBudget{
				Venue:    venue.Name,
				Estimate: Estimate(numberOfPeople, durationHours, location),
			}
		}()
	}
	wg.Wait()
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
