package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInspection struct {
	id          string
	equipmentID string
	date        any
	problems    bool
	openOrder   bool
	meta        *EquipmentMeta
}

var testAccessors = AccessorFuncs[testInspection]{
	GetEquipmentID:   func(in testInspection, _ int) string { return in.equipmentID },
	GetEquipmentMeta: func(in testInspection) *EquipmentMeta { return in.meta },
	GetDate:          func(in testInspection) any { return in.date },
	GetHasProblems:   func(in testInspection) bool { return in.problems },
	GetHasOpenOrder:  func(in testInspection) bool { return in.openOrder },
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func build(equipments []EquipmentSource, inspections []testInspection, now time.Time, limit int) []SectorEntry[testInspection] {
	return Build(Params[testInspection]{
		Equipments:                 equipments,
		Inspections:                inspections,
		MaxInspectionsPerEquipment: limit,
		Accessors:                  testAccessors,
		Now:                        fixedNow(now),
		Location:                   time.UTC,
	})
}

func TestBuild_SingleInspectionScenario(t *testing.T) {
	equipments := []EquipmentSource{{ID: "e1", Name: "Ponte A", Sector: "Manutenção", KP: "100"}}
	inspections := []testInspection{{id: "i1", equipmentID: "e1", date: "2024-01-01"}}

	board := build(equipments, inspections, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), 0)

	require.Len(t, board, 1)
	assert.Equal(t, "Manutenção", board[0].Name)
	require.Len(t, board[0].Equipments, 1)

	eq := board[0].Equipments[0]
	assert.Equal(t, "e1", eq.ID)
	assert.Equal(t, "Ponte A", eq.Name)
	assert.Equal(t, "100", eq.KP)
	require.Len(t, eq.Inspections, 1)

	entry := eq.Inspections[0]
	assert.Equal(t, "e1-0", entry.ID)
	assert.Equal(t, "01/01/2024 00:00", entry.Label)
	assert.False(t, entry.IsToday)
	assert.False(t, entry.HasProblems)
	assert.Equal(t, "i1", entry.Inspection.id)
}

func TestBuild_EveryCatalogEquipmentAppearsOnce(t *testing.T) {
	equipments := []EquipmentSource{
		{ID: "e1", Name: "Ponte A", Sector: "Manutenção"},
		{ID: "e2", Name: "Talha B", Sector: "Manutenção"},
		{ID: "e3", Name: "Guincho C", Sector: ""},
	}
	inspections := []testInspection{
		{id: "i1", equipmentID: "e1", date: "2024-01-01"},
		{id: "i2", equipmentID: "e1", date: "2024-01-02"},
	}

	board := build(equipments, inspections, time.Now(), 0)

	seen := map[string]int{}
	for _, s := range board {
		for _, eq := range s.Equipments {
			seen[eq.ID]++
			assert.NotNil(t, eq.Inspections)
		}
	}
	assert.Equal(t, map[string]int{"e1": 1, "e2": 1, "e3": 1}, seen)

	stats := CalculateStats(board)
	assert.Equal(t, 2, stats.SectorCount)
	assert.Equal(t, 3, stats.EquipmentCount)
}

func TestBuild_CapKeepsMostRecentAndStatsCountKeptOnly(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	var inspections []testInspection
	for h := 8; h <= 12; h++ {
		inspections = append(inspections, testInspection{
			id:          fmt.Sprintf("i%d", h),
			equipmentID: "e1",
			date:        time.Date(2024, 3, 10, h, 0, 0, 0, time.UTC),
			problems:    h%2 == 0,
		})
	}
	inspections = append(inspections, testInspection{id: "old", equipmentID: "e1", date: "2024-03-01"})

	board := build([]EquipmentSource{{ID: "e1", Name: "Ponte A", Sector: "Pátio"}}, inspections, now, 3)

	entries := board[0].Equipments[0].Inspections
	require.Len(t, entries, 3)
	assert.Equal(t, "i12", entries[0].Inspection.id)
	assert.Equal(t, "i11", entries[1].Inspection.id)
	assert.Equal(t, "i10", entries[2].Inspection.id)

	stats := CalculateStats(board)
	assert.Equal(t, 3, stats.InspectionsToday)
	assert.Equal(t, 2, stats.InspectionsWithProblemsToday)
}

func TestBuild_DefaultCap(t *testing.T) {
	var inspections []testInspection
	for i := 0; i < 20; i++ {
		inspections = append(inspections, testInspection{equipmentID: "e1", date: int64(i) * 1000})
	}

	board := build(nil, inspections, time.Now(), 0)
	assert.Len(t, board[0].Equipments[0].Inspections, DefaultMaxInspectionsPerEquipment)
}

func TestBuild_SortsSectorsAndEquipmentWithPortugueseCollation(t *testing.T) {
	equipments := []EquipmentSource{
		{ID: "1", Name: "Talha", Sector: "Utilidades"},
		{ID: "2", Name: "Ponte", Sector: "Ácido"},
		{ID: "3", Name: "Élevador", Sector: "Manutenção"},
		{ID: "4", Name: "esteira", Sector: "Manutenção"},
		{ID: "5", Name: "Bomba", Sector: "Manutenção"},
		{ID: "6", Name: "Guindaste", Sector: "caldeiraria"},
	}
	reversed := make([]EquipmentSource, len(equipments))
	for i, eq := range equipments {
		reversed[len(equipments)-1-i] = eq
	}

	for _, input := range [][]EquipmentSource{equipments, reversed} {
		board := build(input, nil, time.Now(), 0)

		var sectors []string
		for _, s := range board {
			sectors = append(sectors, s.Name)
		}
		assert.Equal(t, []string{"Ácido", "caldeiraria", "Manutenção", "Utilidades"}, sectors)

		var names []string
		for _, eq := range board[2].Equipments {
			names = append(names, eq.Name)
		}
		assert.Equal(t, []string{"Bomba", "Élevador", "esteira"}, names)
	}
}

func TestBuild_FallbacksForMissingData(t *testing.T) {
	inspections := []testInspection{
		{id: "dated", equipmentID: "  ", date: "2024-01-01T08:00:00Z"},
		{id: "a", equipmentID: "e9", date: "garbage"},
		{id: "b", equipmentID: "e9", date: "2023-12-31"},
	}

	board := build(nil, inspections, time.Now(), 0)
	require.Len(t, board, 1)
	assert.Equal(t, NoSectorLabel, board[0].Name)

	byID := map[string]EquipmentEntry[testInspection]{}
	for _, eq := range board[0].Equipments {
		byID[eq.ID] = eq
	}

	synth := byID["equip-1"]
	assert.Equal(t, "equip-1", synth.Name)
	assert.Equal(t, NoKPLabel, synth.KP)
	require.Len(t, synth.Inspections, 1)
	assert.Equal(t, "equip-1-0", synth.Inspections[0].ID)

	e9 := byID["e9"]
	require.Len(t, e9.Inspections, 2)
	assert.Equal(t, "b", e9.Inspections[0].Inspection.id)
	assert.Equal(t, "a", e9.Inspections[1].Inspection.id)
	assert.Equal(t, NoDateLabel, e9.Inspections[1].Label)
	assert.Nil(t, e9.Inspections[1].Date)
}

func TestBuild_EmbeddedMetaTakesPriority(t *testing.T) {
	equipments := []EquipmentSource{{ID: "e1", Name: "Ponte A", Sector: "Manutenção", KP: "100", BridgeNumber: "P-7"}}
	inspections := []testInspection{
		{id: "i1", equipmentID: "e1", date: "2024-01-01", meta: &EquipmentMeta{Sector: "Pátio", Name: "Ponte A (pátio)", BridgeNumber: "P-9"}},
		{id: "i2", equipmentID: "e1", date: "2024-01-02", meta: &EquipmentMeta{Sector: " ", KP: ""}},
	}

	board := build(equipments, inspections, time.Now(), 0)
	require.Len(t, board, 2)

	assert.Equal(t, "Manutenção", board[0].Name)
	catalogBucket := board[0].Equipments[0]
	assert.Equal(t, "Ponte A", catalogBucket.Name)
	assert.Equal(t, "100", catalogBucket.KP)
	require.Len(t, catalogBucket.Inspections, 1)
	assert.Equal(t, "i2", catalogBucket.Inspections[0].Inspection.id)

	assert.Equal(t, "Pátio", board[1].Name)
	metaBucket := board[1].Equipments[0]
	assert.Equal(t, "e1", metaBucket.ID)
	assert.Equal(t, "Ponte A (pátio)", metaBucket.Name)
	assert.Equal(t, "P-9", metaBucket.KP)

	stats := CalculateStats(board)
	assert.Equal(t, 2, stats.EquipmentCount)
}

func TestBuild_KPFallsBackToBridgeNumber(t *testing.T) {
	board := build([]EquipmentSource{{ID: "e1", Name: "Talha", BridgeNumber: "PR-3"}}, nil, time.Now(), 0)
	assert.Equal(t, "PR-3", board[0].Equipments[0].KP)
}

func TestBuild_IsTodayUsesCalendarDay(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC)
	inspections := []testInspection{
		{id: "yesterday", equipmentID: "e1", date: time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)},
		{id: "today", equipmentID: "e1", date: time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC), problems: true, openOrder: true},
	}

	entries := build(nil, inspections, now, 0)[0].Equipments[0].Inspections
	require.Len(t, entries, 2)
	assert.Equal(t, "today", entries[0].Inspection.id)
	assert.True(t, entries[0].IsToday)
	assert.True(t, entries[0].HasOpenOrder)
	assert.False(t, entries[1].IsToday)

	stats := CalculateStats(build(nil, inspections, now, 0))
	assert.Equal(t, Stats{SectorCount: 1, EquipmentCount: 1, InspectionsToday: 1, InspectionsWithProblemsToday: 1}, stats)
}

func TestBuild_NilAccessorsOnlySeedsCatalog(t *testing.T) {
	board := Build(Params[testInspection]{
		Equipments:  []EquipmentSource{{ID: "e1", Name: "Ponte"}},
		Inspections: []testInspection{{equipmentID: "e2"}},
	})
	require.Len(t, board, 1)
	assert.Len(t, board[0].Equipments, 1)
}

func TestParseDate(t *testing.T) {
	sp := time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC)
	loc := time.FixedZone("BRT", -3*3600)

	cases := []struct {
		name  string
		value any
		label string
	}{
		{"time", sp, "06/05/2024 04:08"},
		{"pointer", &sp, "06/05/2024 04:08"},
		{"rfc3339", "2024-05-06T07:08:00Z", "06/05/2024 04:08"},
		{"rfc3339 offset", "2024-05-06T07:08:00-03:00", "06/05/2024 07:08"},
		{"postgres", "2024-05-06 07:08:00.123+00", "06/05/2024 04:08"},
		{"local datetime", "2024-05-06 07:08:00", "06/05/2024 07:08"},
		{"date only", "2024-05-06", "06/05/2024 00:00"},
		{"brazilian", "06/05/2024", "06/05/2024 00:00"},
		{"unix ms", sp.UnixMilli(), "06/05/2024 04:08"},
		{"nil", nil, NoDateLabel},
		{"nil pointer", (*time.Time)(nil), NoDateLabel},
		{"zero", time.Time{}, NoDateLabel},
		{"blank", "  ", NoDateLabel},
		{"garbage", "ontem", NoDateLabel},
		{"unsupported", struct{}{}, NoDateLabel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := ParseDate(tc.value, loc)
			assert.Equal(t, tc.label, FormatLabel(d, ok, loc))
		})
	}
}
