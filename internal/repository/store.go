package repository

import (
	"context"
	"time"

	"checklist-safety/internal/models"
)

// DataSource read side of the external store
type DataSource interface {
	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	// ListInspections inspections dated at or after since; undated rows are always included
	ListInspections(ctx context.Context, since time.Time) ([]models.Inspection, error)
	ListChecklistTemplate(ctx context.Context) ([]models.ChecklistTemplateQuestion, error)
	ListOpenOrders(ctx context.Context) ([]models.MaintenanceOrder, error)
}

// AlertStore persists generated alerts
type AlertStore interface {
	// SaveAlerts is idempotent on (inspection_id, question) and returns only
	// the records that were not stored before.
	SaveAlerts(ctx context.Context, records []models.AlertRecord) ([]models.AlertRecord, error)
}

// TemplateStore writes repaired template flags back
type TemplateStore interface {
	UpdateTemplateFlags(ctx context.Context, rows []models.ChecklistTemplateQuestion) error
}

// Store everything the board service needs from one backend
type Store interface {
	DataSource
	AlertStore
	TemplateStore
}
