package adapters

import (
	"sort"

	"index_backend/internal/feature/indicators/domain/entity"
)

// sortObservations orders by date, keeping the input order of equal dates.
func sortObservations(obs []entity.Observation) {
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
}
