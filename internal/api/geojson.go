package api

import (
	"github.com/mr1hm/go-crime-forecast/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON keeps the ranking order of results; rank 1 is the most likely block.
func toGeoJSON(hour int, results []models.ProbabilityResult) FeatureCollection {
	features := make([]Feature, 0, len(results))

	for i, r := range results {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{r.Longitude, r.Latitude},
			},
			Properties: map[string]any{
				"hour":        hour,
				"rank":        i + 1,
				"probability": r.Probability,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
