package board

import "time"

const (
	// DefaultMaxInspectionsPerEquipment cap applied when Params leaves it unset
	DefaultMaxInspectionsPerEquipment = 12

	NoSectorLabel = "Sem setor"
	NoDateLabel   = "Sem data"
	NoKPLabel     = "-"

	labelLayout = "02/01/2006 15:04"
)

// EquipmentSource one row of the equipment catalog
type EquipmentSource struct {
	ID           string
	Name         string
	KP           string
	Sector       string
	BridgeNumber string // legacy alias of KP
}

// EquipmentMeta equipment info embedded in an inspection (joined relation).
// Blank fields count as absent.
type EquipmentMeta struct {
	ID           string
	Name         string
	KP           string
	BridgeNumber string
	Sector       string
}

// Accessors reads the fields the builder needs from an opaque inspection.
type Accessors[T any] interface {
	// EquipmentID blank means unknown; index is the position in Params.Inspections
	EquipmentID(inspection T, index int) string
	// EquipmentMeta nil when the inspection carries no equipment info
	EquipmentMeta(inspection T) *EquipmentMeta
	// Date returns a time.Time, *time.Time, string, int64 (Unix ms) or nil
	Date(inspection T) any
	HasProblems(inspection T) bool
	HasOpenOrder(inspection T) bool
}

// AccessorFuncs adapts plain functions to Accessors. A nil GetEquipmentMeta
// means no inspection carries equipment info.
type AccessorFuncs[T any] struct {
	GetEquipmentID   func(inspection T, index int) string
	GetEquipmentMeta func(inspection T) *EquipmentMeta
	GetDate          func(inspection T) any
	GetHasProblems   func(inspection T) bool
	GetHasOpenOrder  func(inspection T) bool
}

func (f AccessorFuncs[T]) EquipmentID(inspection T, index int) string {
	if f.GetEquipmentID == nil {
		return ""
	}
	return f.GetEquipmentID(inspection, index)
}

func (f AccessorFuncs[T]) EquipmentMeta(inspection T) *EquipmentMeta {
	if f.GetEquipmentMeta == nil {
		return nil
	}
	return f.GetEquipmentMeta(inspection)
}

func (f AccessorFuncs[T]) Date(inspection T) any {
	if f.GetDate == nil {
		return nil
	}
	return f.GetDate(inspection)
}

func (f AccessorFuncs[T]) HasProblems(inspection T) bool {
	return f.GetHasProblems != nil && f.GetHasProblems(inspection)
}

func (f AccessorFuncs[T]) HasOpenOrder(inspection T) bool {
	return f.GetHasOpenOrder != nil && f.GetHasOpenOrder(inspection)
}

// Params input of Build
type Params[T any] struct {
	Equipments                 []EquipmentSource
	Inspections                []T
	MaxInspectionsPerEquipment int // <= 0 means DefaultMaxInspectionsPerEquipment
	Accessors                  Accessors[T]

	Now      func() time.Time // nil means time.Now
	Location *time.Location   // nil means time.Local
}

// InspectionEntry one inspection as shown on the board
type InspectionEntry[T any] struct {
	ID           string     `json:"id"`
	Label        string     `json:"label"`
	Date         *time.Time `json:"date,omitempty"`
	IsToday      bool       `json:"is_today"`
	HasProblems  bool       `json:"has_problems"`
	HasOpenOrder bool       `json:"has_open_order"`
	Inspection   T          `json:"inspection"`
}

// EquipmentEntry equipment bucket, inspections most recent first
type EquipmentEntry[T any] struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	KP          string               `json:"kp"`
	Sector      string               `json:"sector"`
	Inspections []InspectionEntry[T] `json:"inspections"`
}

// SectorEntry top level of the board
type SectorEntry[T any] struct {
	Name       string              `json:"name"`
	Equipments []EquipmentEntry[T] `json:"equipments"`
}

// Stats summary counters derived from a built board
type Stats struct {
	SectorCount                  int `json:"sector_count"`
	EquipmentCount               int `json:"equipment_count"`
	InspectionsToday             int `json:"inspections_today"`
	InspectionsWithProblemsToday int `json:"inspections_with_problems_today"`
}
