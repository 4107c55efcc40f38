package forecast

import (
	"sort"

	"github.com/mr1hm/go-crime-forecast/internal/models"
)

// DefaultWindow is the number of months of history crime counts are
// assumed to span.
const DefaultWindow = 60

// BrokenWindowsMultiplier scales a probability by the number of open
// service requests on a block. Exactly one request leaves it unchanged.
func BrokenWindowsMultiplier(openRequests int) float64 {
	switch {
	case openRequests > 3:
		return 2.0
	case openRequests > 1:
		return 1.5
	case openRequests == 0:
		return 0.8
	default:
		return 1.0
	}
}

// Probability is the weighted chance of crime on loc given count crimes
// in one hour bucket over window months.
func Probability(count int, loc *models.Location, window int) float64 {
	rate := float64(count) / float64(window)
	return SurvivalProbability(rate, 1) * BrokenWindowsMultiplier(loc.ServiceRequests)
}

// Compute ranks every block that has crimes for each hour of the day.
// Blocks with no crime in a given hour are still listed, with probability 0.
// Each location's Probability is set to its highest hourly value.
func Compute(counts models.HourCounts, locations models.Locations, window int) models.Forecast {
	blocks := make([]string, 0, len(locations))
	for block, loc := range locations {
		if len(loc.Crimes) > 0 {
			blocks = append(blocks, block)
		}
	}
	sort.Strings(blocks)

	forecast := models.NewForecast()
	for hour := 0; hour < models.HoursPerDay; hour++ {
		results := make([]models.ProbabilityResult, 0, len(blocks))
		for _, block := range blocks {
			loc := locations[block]
			p := Probability(counts[hour][block], loc, window)
			if p > loc.Probability {
				loc.Probability = p
			}
			results = append(results, models.ProbabilityResult{
				Probability: p,
				Latitude:    loc.Latitude,
				Longitude:   loc.Longitude,
			})
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Probability > results[j].Probability
		})
		forecast[hour] = results
	}

	return forecast
}
