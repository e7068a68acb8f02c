package router

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("region,revenue,quarter\nnorth,100,Q1\nsouth,250.5,Q1\n")

	ds, err := ParseTabular("sales.csv", data)
	if err != nil {
		t.Fatalf("ParseTabular: %v", err)
	}
	if len(ds.Columns) != 3 || ds.Columns[1] != "revenue" {
		t.Errorf("columns = %v, want [region revenue quarter]", ds.Columns)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(ds.Rows))
	}
	if ds.Rows[1][1] != "250.5" {
		t.Errorf("Rows[1][1] = %q, want 250.5", ds.Rows[1][1])
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\n1,2\n4,5,6,7\n")

	ds, err := ParseTabular("ragged.csv", data)
	if err != nil {
		t.Fatalf("ParseTabular: %v", err)
	}
	for i, row := range ds.Rows {
		if len(row) != len(ds.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(ds.Columns))
		}
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	cells := map[string]string{
		"A1": "region", "B1": "revenue",
		"A2": "north", "B2": "100",
		"A3": "south", "B3": "250.5",
	}
	for cell, value := range cells {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	ds, err := ParseTabular("sales.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTabular: %v", err)
	}
	if len(ds.Columns) != 2 || ds.Columns[0] != "region" {
		t.Errorf("columns = %v, want [region revenue]", ds.Columns)
	}
	if len(ds.Rows) != 2 || ds.Rows[1][1] != "250.5" {
		t.Errorf("rows = %v, want two data rows ending in 250.5", ds.Rows)
	}
}

func TestParseTabularUnsupported(t *testing.T) {
	_, err := ParseTabular("notes.pdf", []byte("%PDF"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseTabular error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseTabular("empty.csv", nil); err == nil {
		t.Error("ParseTabular should reject a csv with no header row")
	}
}
