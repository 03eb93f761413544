package service

import (
	"sort"

	"chargemap/internal/models"
)

// filterByRadius keeps stations within the caller's original radius. The
// radius bucket is only for key stability; response shaping always uses the
// requested radius.
func filterByRadius(stations []models.SearchStation, radiusM float64) []models.SearchStation {
	out := make([]models.SearchStation, 0, len(stations))
	for _, s := range stations {
		if s.DistanceM <= radiusM {
			out = append(out, s)
		}
	}
	return out
}

// dedupeStations drops repeated external ids, first seen wins.
func dedupeStations(stations []models.SearchStation) []models.SearchStation {
	seen := make(map[string]struct{}, len(stations))
	out := make([]models.SearchStation, 0, len(stations))
	for _, s := range stations {
		if _, ok := seen[s.ExternalID]; ok {
			continue
		}
		seen[s.ExternalID] = struct{}{}
		out = append(out, s)
	}
	return out
}

// sortStations orders by distance ascending, external id as the tie-break.
func sortStations(stations []models.SearchStation) {
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].DistanceM != stations[j].DistanceM {
			return stations[i].DistanceM < stations[j].DistanceM
		}
		return stations[i].ExternalID < stations[j].ExternalID
	})
}
