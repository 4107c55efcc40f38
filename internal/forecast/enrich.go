package forecast

import (
	"log/slog"

	"github.com/mr1hm/go-crime-forecast/internal/models"
)

// Enrich attaches open 311 requests to locations by block. Requests for an
// unknown block create a crime-free location at the request's coordinates;
// that first request is not counted. Requests whose address cannot be
// parsed are dropped.
func Enrich(locations models.Locations, requests []models.ServiceRequest) models.Locations {
	var matched, created, dropped int

	for _, req := range requests {
		block, ok := ParseBlock(req.Address)
		if !ok {
			dropped++
			continue
		}

		if loc, ok := locations[block]; ok {
			loc.ServiceRequests++
			matched++
			continue
		}
		locations[block] = models.NewLocation(block, req.Coordinates())
		created++
	}

	slog.Debug("enriched locations", "matched", matched, "created", created, "dropped", dropped)
	return locations
}
