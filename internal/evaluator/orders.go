package evaluator

import "checklist-safety/internal/models"

// OpenOrderIndex open maintenance orders keyed by inspection and equipment.
// Orders without an inspection apply to every inspection of their equipment.
type OpenOrderIndex struct {
	byInspection map[string]struct{}
	byEquipment  map[string]struct{}
}

// NewOpenOrderIndex ignores closed orders
func NewOpenOrderIndex(orders []models.MaintenanceOrder) OpenOrderIndex {
	ix := OpenOrderIndex{
		byInspection: make(map[string]struct{}),
		byEquipment:  make(map[string]struct{}),
	}
	for _, o := range orders {
		if !o.IsOpen() {
			continue
		}
		if id := models.TrimmedString(o.InspectionID); id != "" {
			ix.byInspection[id] = struct{}{}
			continue
		}
		if id := models.TrimmedString(o.EquipmentID); id != "" {
			ix.byEquipment[id] = struct{}{}
		}
	}
	return ix
}

// Has reports whether in has an open order
func (ix OpenOrderIndex) Has(in models.Inspection) bool {
	if _, ok := ix.byInspection[in.ID]; ok {
		return true
	}
	_, ok := ix.byEquipment[EquipmentID(in)]
	return ok
}
