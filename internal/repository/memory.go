package repository

import (
	"context"
	"sync"
	"time"

	"checklist-safety/internal/models"
)

// MemoryStore in-memory Store for tests and local runs
type MemoryStore struct {
	mu          sync.Mutex
	equipments  []models.Equipment
	inspections []models.Inspection
	template    []models.ChecklistTemplateQuestion
	orders      []models.MaintenanceOrder
	alerts      map[[2]string]models.AlertRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore copies the given rows
func NewMemoryStore(
	equipments []models.Equipment,
	inspections []models.Inspection,
	template []models.ChecklistTemplateQuestion,
	orders []models.MaintenanceOrder,
) *MemoryStore {
	return &MemoryStore{
		equipments:  append([]models.Equipment(nil), equipments...),
		inspections: append([]models.Inspection(nil), inspections...),
		template:    append([]models.ChecklistTemplateQuestion(nil), template...),
		orders:      append([]models.MaintenanceOrder(nil), orders...),
		alerts:      make(map[[2]string]models.AlertRecord),
	}
}

func (m *MemoryStore) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Equipment(nil), m.equipments...), nil
}

// ListInspections since is ignored; every stored inspection is returned
func (m *MemoryStore) ListInspections(ctx context.Context, since time.Time) ([]models.Inspection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Inspection(nil), m.inspections...), nil
}

func (m *MemoryStore) ListChecklistTemplate(ctx context.Context) ([]models.ChecklistTemplateQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChecklistTemplateQuestion(nil), m.template...), nil
}

func (m *MemoryStore) ListOpenOrders(ctx context.Context) ([]models.MaintenanceOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var open []models.MaintenanceOrder
	for _, o := range m.orders {
		if o.IsOpen() {
			open = append(open, o)
		}
	}
	return open, nil
}

func (m *MemoryStore) SaveAlerts(ctx context.Context, records []models.AlertRecord) ([]models.AlertRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted []models.AlertRecord
	for _, rec := range records {
		key := [2]string{rec.InspectionID, rec.Question}
		if _, exists := m.alerts[key]; exists {
			continue
		}
		m.alerts[key] = rec
		inserted = append(inserted, rec)
	}
	return inserted, nil
}

func (m *MemoryStore) UpdateTemplateFlags(ctx context.Context, rows []models.ChecklistTemplateQuestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[string]models.ChecklistTemplateQuestion, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	for i, existing := range m.template {
		if r, ok := byID[existing.ID]; ok {
			m.template[i].AlertOnYes = r.AlertOnYes
			m.template[i].AlertOnNo = r.AlertOnNo
		}
	}
	return nil
}

// AddInspection appends an inspection
func (m *MemoryStore) AddInspection(in models.Inspection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inspections = append(m.inspections, in)
}

// Alerts stored alert records
func (m *MemoryStore) Alerts() []models.AlertRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AlertRecord, 0, len(m.alerts))
	for _, rec := range m.alerts {
		out = append(out, rec)
	}
	return out
}
