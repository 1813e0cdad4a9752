package domain

import "sort"

// TopPlants filters records to the given state, groups them by
// (plant code, plant name), sums net generation within each group, and
// returns the groups ordered by total descending, truncated to limit.
//
// The state match is case-sensitive and exact. Ties keep the order in which
// groups were first encountered. A non-positive limit or an unmatched state
// yields an empty result, never an error.
func TopPlants(records []GenerationRecord, state string, limit int) []PlantAggregate {
	if limit <= 0 {
		return nil
	}

	type groupKey struct {
		plantID string
		name    string
	}

	totals := make(map[groupKey]int) // key -> index into aggregates
	var aggregates []PlantAggregate

	for _, r := range records {
		if r.State != state {
			continue
		}
		key := groupKey{plantID: r.PlantID, name: r.PlantName}
		i, seen := totals[key]
		if !seen {
			i = len(aggregates)
			totals[key] = i
			aggregates = append(aggregates, PlantAggregate{
				ID:    r.PlantID,
				Name:  r.PlantName,
				State: state,
			})
		}
		aggregates[i].NetGeneration += r.NetGenMWh
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].NetGeneration > aggregates[j].NetGeneration
	})

	if len(aggregates) > limit {
		aggregates = aggregates[:limit]
	}
	return aggregates
}

// DistinctStates returns the sorted set of state abbreviations present in
// the records.
func DistinctStates(records []GenerationRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.State] = struct{}{}
	}

	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}
