package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// RowStyle selects the cell style of a spreadsheet row.
type RowStyle int

const (
	RowPlain RowStyle = iota
	RowTitle
	RowHeading
	RowHeader
	RowTotal
)

// SheetRow is one spreadsheet row. Merged rows span every used column.
type SheetRow struct {
	Cells []string
	Style RowStyle
	Merge bool
}

func (r SheetRow) empty() bool {
	for _, c := range r.Cells {
		if c != "" {
			return false
		}
	}
	return true
}

// SheetRows flattens doc into rows, with an empty row between blocks.
func SheetRows(doc Document) []SheetRow {
	width := doc.columnCount()
	var rows []SheetRow
	add := func(style RowStyle, merge bool, cells ...string) {
		rows = append(rows, SheetRow{Cells: cells, Style: style, Merge: merge})
	}
	for _, b := range doc.Blocks {
		if !b.Target.sheet() || b.Kind == KindLogo {
			continue
		}
		if n := len(rows); n > 0 && !rows[n-1].empty() {
			add(RowPlain, false, "")
		}
		switch b.Kind {
		case KindTitle:
			add(RowTitle, true, b.Title)
		case KindCompany, KindMeta, KindBillTo:
			if b.Title != "" {
				add(RowHeading, false, b.Title)
			}
			for _, f := range b.Fields {
				if f.Target.sheet() {
					add(RowPlain, false, f.Label, f.Value)
				}
			}
		case KindItems:
			keep := make([]int, 0, len(b.Columns))
			header := make([]string, 0, len(b.Columns))
			for i, c := range b.Columns {
				if c.Target.sheet() {
					keep = append(keep, i)
					header = append(header, c.Title)
				}
			}
			add(RowHeader, false, header...)
			for _, r := range b.Rows {
				cells := make([]string, 0, len(keep))
				for _, idx := range keep {
					if idx < len(r) {
						cells = append(cells, r[idx])
					} else {
						cells = append(cells, "")
					}
				}
				add(RowPlain, false, cells...)
			}
			for range b.BlankRows {
				add(RowPlain, false, make([]string, len(keep))...)
			}
		case KindTotals:
			for _, f := range b.Fields {
				if !f.Target.sheet() {
					continue
				}
				cells := make([]string, width)
				cells[0] = f.Label
				cells[width-1] = f.Value
				style := RowPlain
				if f.Emphasis {
					style = RowTotal
				}
				add(style, false, cells...)
			}
		case KindNotes, KindTerms, KindBank:
			add(RowHeading, false, b.Title)
			for _, line := range b.Text {
				add(RowPlain, true, line)
			}
		case KindThanks:
			for _, line := range b.Text {
				add(RowPlain, true, line)
			}
		}
	}
	return rows
}

// RenderXLSX writes doc as a single-sheet workbook.
func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := doc.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := sheetStyles(f)
	if err != nil {
		return nil, err
	}

	width := doc.columnCount()
	for i, row := range SheetRows(doc) {
		first, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		last, err := excelize.CoordinatesToCellName(width, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row.Cells))
		for j, c := range row.Cells {
			values[j] = c
		}
		if err := f.SetSheetRow(sheet, first, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
		if row.Merge && width > 1 {
			if err := f.MergeCell(sheet, first, last); err != nil {
				return nil, fmt.Errorf("merge row %d: %w", i+1, err)
			}
		}
		if id, ok := styles[row.Style]; ok {
			if err := f.SetCellStyle(sheet, first, last, id); err != nil {
				return nil, fmt.Errorf("style row %d: %w", i+1, err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 35)
	if width > 1 {
		lastCol, _ := excelize.ColumnNumberToName(width)
		_ = f.SetColWidth(sheet, "B", lastCol, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetStyles(f *excelize.File) (map[RowStyle]int, error) {
	defs := map[RowStyle]*excelize.Style{
		RowTitle:   {Font: &excelize.Font{Bold: true, Size: 16, Color: "667EEA"}},
		RowHeading: {Font: &excelize.Font{Bold: true, Color: "667EEA"}},
		RowHeader: {
			Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"667EEA"}, Pattern: 1},
		},
		RowTotal: {Font: &excelize.Font{Bold: true}},
	}
	out := make(map[RowStyle]int, len(defs))
	for k, s := range defs {
		id, err := f.NewStyle(s)
		if err != nil {
			return nil, fmt.Errorf("sheet style: %w", err)
		}
		out[k] = id
	}
	return out, nil
}
