package models

// HoursPerDay is the number of hour buckets in every forecast.
const HoursPerDay = 24

// ProbabilityResult is one ranked entry of a forecast hour. Probability can
// exceed 1 once the service request multiplier is applied.
type ProbabilityResult struct {
	Probability float64 `json:"Probability"`
	Latitude    float64 `json:"Latitude"`
	Longitude   float64 `json:"Longitude"`
}

// HourCounts holds crime counts per hour of day, keyed by block.
type HourCounts [HoursPerDay]map[string]int

func NewHourCounts() HourCounts {
	var hc HourCounts
	for h := range hc {
		hc[h] = make(map[string]int)
	}
	return hc
}

// Forecast maps hour of day to results sorted by descending probability.
type Forecast map[int][]ProbabilityResult

func NewForecast() Forecast {
	f := make(Forecast, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		f[h] = []ProbabilityResult{}
	}
	return f
}
