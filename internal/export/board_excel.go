package export

import (
	"bytes"
	"fmt"

	"checklist-safety/internal/board"

	"github.com/xuri/excelize/v2"
)

const (
	BoardSheet   = "Quadro"
	SummarySheet = "Resumo"
)

// BoardHeader columns of the board sheet
var BoardHeader = []string{
	"Setor",
	"Equipamento",
	"KP",
	"Inspeção",
	"Hoje",
	"Problemas",
	"OS aberta",
}

var boardColumnWidths = []float64{20, 30, 10, 20, 8, 12, 12}

// BoardWorkbook renders the board as an XLSX workbook. Equipment without
// inspections still gets one row so the sheet lists the whole catalog.
func BoardWorkbook[T any](sectors []board.SectorEntry[T], stats board.Stats) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(BoardSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, BoardSheet, 1, toCells(BoardHeader), headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, width := range boardColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(BoardSheet, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	row := 2
	for _, sector := range sectors {
		for _, eq := range sector.Equipments {
			if len(eq.Inspections) == 0 {
				if err := writeRow(f, BoardSheet, row, []interface{}{sector.Name, eq.Name, eq.KP}, 0); err != nil {
					f.Close()
					return nil, err
				}
				row++
				continue
			}
			for _, in := range eq.Inspections {
				cells := []interface{}{
					sector.Name,
					eq.Name,
					eq.KP,
					in.Label,
					yesNo(in.IsToday),
					yesNo(in.HasProblems),
					yesNo(in.HasOpenOrder),
				}
				if err := writeRow(f, BoardSheet, row, cells, 0); err != nil {
					f.Close()
					return nil, err
				}
				row++
			}
		}
	}

	if err := f.SetPanes(BoardSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	summary := [][]interface{}{
		{"Setores", stats.SectorCount},
		{"Equipamentos", stats.EquipmentCount},
		{"Inspeções hoje", stats.InspectionsToday},
		{"Inspeções com problemas hoje", stats.InspectionsWithProblemsToday},
	}
	if err := writeRow(f, SummarySheet, 1, []interface{}{"Indicador", "Valor"}, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, cells := range summary {
		if err := writeRow(f, SummarySheet, i+2, cells, 0); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRow style 0 leaves cells unstyled
func writeRow(f *excelize.File, sheet string, row int, cells []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, start, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(cells), row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, start, end, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
