package board

// CalculateStats counts a built board in one pass. Only entries kept after
// the per-equipment cap are counted.
func CalculateStats[T any](board []SectorEntry[T]) Stats {
	var stats Stats
	stats.SectorCount = len(board)
	for _, sector := range board {
		stats.EquipmentCount += len(sector.Equipments)
		for _, eq := range sector.Equipments {
			for _, entry := range eq.Inspections {
				if !entry.IsToday {
					continue
				}
				stats.InspectionsToday++
				if entry.HasProblems {
					stats.InspectionsWithProblemsToday++
				}
			}
		}
	}
	return stats
}
