package aggregator

import (
	"checklist-safety/internal/board"
	"checklist-safety/internal/evaluator"
	"checklist-safety/internal/models"
)

// InspectionBoard board of evaluated inspections
type InspectionBoard = []board.SectorEntry[evaluator.EvaluatedInspection]

// inspectionAccessors reads board fields from evaluated inspection rows
type inspectionAccessors struct{}

var _ board.Accessors[evaluator.EvaluatedInspection] = inspectionAccessors{}

func (inspectionAccessors) EquipmentID(in evaluator.EvaluatedInspection, _ int) string {
	return evaluator.EquipmentID(in.Inspection)
}

func (inspectionAccessors) EquipmentMeta(in evaluator.EvaluatedInspection) *board.EquipmentMeta {
	if in.Equipment == nil {
		return nil
	}
	return &board.EquipmentMeta{
		ID:           in.Equipment.ID,
		Name:         in.Equipment.Name,
		KP:           in.Equipment.KP,
		BridgeNumber: in.Equipment.BridgeNumber,
		Sector:       in.Equipment.Sector,
	}
}

// Date inspection_date, falling back to submission_date
func (inspectionAccessors) Date(in evaluator.EvaluatedInspection) any {
	if d := models.TrimmedString(in.InspectionDate); d != "" {
		return d
	}
	if d := models.TrimmedString(in.SubmissionDate); d != "" {
		return d
	}
	return nil
}

func (inspectionAccessors) HasProblems(in evaluator.EvaluatedInspection) bool {
	return in.HasProblems
}

func (inspectionAccessors) HasOpenOrder(in evaluator.EvaluatedInspection) bool {
	return in.HasOpenOrder
}

func equipmentSources(equipments []models.Equipment) []board.EquipmentSource {
	out := make([]board.EquipmentSource, 0, len(equipments))
	for _, eq := range equipments {
		out = append(out, board.EquipmentSource{
			ID:           eq.ID,
			Name:         eq.Name,
			KP:           eq.KP,
			Sector:       eq.Sector,
			BridgeNumber: eq.BridgeNumber,
		})
	}
	return out
}
