package forecast

import "github.com/mr1hm/go-crime-forecast/internal/models"

// Aggregate groups crimes by block and counts them per hour of day.
// A crime with an unparsable date fails the whole aggregation.
func Aggregate(crimes []models.CrimeEvent) (models.Locations, models.HourCounts, error) {
	locations := make(models.Locations)
	counts := models.NewHourCounts()

	for _, c := range crimes {
		hour, err := c.Hour()
		if err != nil {
			return nil, models.HourCounts{}, err
		}

		loc, ok := locations[c.Block]
		if !ok {
			loc = models.NewLocation(c.Block, c.Coordinates())
			locations[c.Block] = loc
		}
		loc.AddCrime(c)
		counts[hour][c.Block]++
	}

	return locations, counts, nil
}
