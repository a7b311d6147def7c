package board

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type sectorBucket[T any] struct {
	name       string
	equipments map[string]*EquipmentEntry[T]
}

type placedInspection[T any] struct {
	entry   InspectionEntry[T]
	sortKey time.Time
}

type builder[T any] struct {
	sectors map[string]*sectorBucket[T]
	placed  map[*EquipmentEntry[T]][]placedInspection[T]
}

// Build groups inspections by sector then equipment. Missing or malformed
// fields degrade to the fallback labels; it never fails.
func Build[T any](p Params[T]) []SectorEntry[T] {
	limit := p.MaxInspectionsPerEquipment
	if limit <= 0 {
		limit = DefaultMaxInspectionsPerEquipment
	}
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	b := &builder[T]{
		sectors: make(map[string]*sectorBucket[T]),
		placed:  make(map[*EquipmentEntry[T]][]placedInspection[T]),
	}

	catalog := make(map[string]EquipmentSource, len(p.Equipments))
	for _, eq := range p.Equipments {
		id := strings.TrimSpace(eq.ID)
		if id == "" {
			continue
		}
		if _, seen := catalog[id]; !seen {
			catalog[id] = eq
		}
		b.bucket(
			firstNonBlank(eq.Sector, NoSectorLabel),
			id,
			firstNonBlank(eq.Name, id),
			firstNonBlank(eq.KP, eq.BridgeNumber, NoKPLabel),
		)
	}

	if p.Accessors != nil {
		epoch := time.Unix(0, 0)
		for i, inspection := range p.Inspections {
			id := strings.TrimSpace(p.Accessors.EquipmentID(inspection, i))
			if id == "" {
				id = fmt.Sprintf("equip-%d", i+1)
			}

			meta := p.Accessors.EquipmentMeta(inspection)
			if meta == nil {
				meta = &EquipmentMeta{}
			}
			cat := catalog[id]

			eq := b.bucket(
				firstNonBlank(meta.Sector, cat.Sector, NoSectorLabel),
				id,
				firstNonBlank(meta.Name, cat.Name, id),
				firstNonBlank(meta.KP, meta.BridgeNumber, cat.KP, cat.BridgeNumber, NoKPLabel),
			)

			date, ok := ParseDate(p.Accessors.Date(inspection), loc)
			entry := InspectionEntry[T]{
				ID:           fmt.Sprintf("%s-%d", id, i),
				Label:        FormatLabel(date, ok, loc),
				IsToday:      ok && sameDay(date, now, loc),
				HasProblems:  p.Accessors.HasProblems(inspection),
				HasOpenOrder: p.Accessors.HasOpenOrder(inspection),
				Inspection:   inspection,
			}
			sortKey := epoch
			if ok {
				d := date
				entry.Date = &d
				sortKey = date
			}
			b.placed[eq] = append(b.placed[eq], placedInspection[T]{entry: entry, sortKey: sortKey})
		}
	}

	return b.finish(limit)
}

// bucket returns the equipment bucket for (sector, id), creating it on first use
func (b *builder[T]) bucket(sector, id, name, kp string) *EquipmentEntry[T] {
	s, ok := b.sectors[sector]
	if !ok {
		s = &sectorBucket[T]{name: sector, equipments: make(map[string]*EquipmentEntry[T])}
		b.sectors[sector] = s
	}
	eq, ok := s.equipments[id]
	if !ok {
		eq = &EquipmentEntry[T]{
			ID:          id,
			Name:        name,
			KP:          kp,
			Sector:      sector,
			Inspections: []InspectionEntry[T]{},
		}
		s.equipments[id] = eq
	}
	return eq
}

func (b *builder[T]) finish(limit int) []SectorEntry[T] {
	// collators are not safe for concurrent use
	c := collate.New(language.BrazilianPortuguese)

	out := make([]SectorEntry[T], 0, len(b.sectors))
	for _, s := range b.sectors {
		equipments := make([]EquipmentEntry[T], 0, len(s.equipments))
		for _, eq := range s.equipments {
			placed := b.placed[eq]
			sort.SliceStable(placed, func(i, j int) bool {
				return placed[i].sortKey.After(placed[j].sortKey)
			})
			if len(placed) > limit {
				placed = placed[:limit]
			}
			for _, pi := range placed {
				eq.Inspections = append(eq.Inspections, pi.entry)
			}
			equipments = append(equipments, *eq)
		}
		sort.Slice(equipments, func(i, j int) bool {
			if cmp := c.CompareString(equipments[i].Name, equipments[j].Name); cmp != 0 {
				return cmp < 0
			}
			return equipments[i].ID < equipments[j].ID
		})
		out = append(out, SectorEntry[T]{Name: s.name, Equipments: equipments})
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := c.CompareString(out[i].Name, out[j].Name); cmp != 0 {
			return cmp < 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
