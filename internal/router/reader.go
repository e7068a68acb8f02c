package router

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/radexhq/radex/internal/object"
)

// ErrUnsupportedFormat indicates a tabular document with an extension the
// reader cannot parse.
var ErrUnsupportedFormat = errors.New("unsupported tabular format")

// Materializer turns a stored tabular document into a Dataset. The router
// consumes this interface; tests supply fixed datasets.
type Materializer interface {
	Materialize(ctx context.Context, objectKey, filename string) (Dataset, error)
}

// BlobMaterializer fetches document bytes from object storage and parses
// them by extension.
type BlobMaterializer struct {
	objects object.Store
}

// NewBlobMaterializer creates a BlobMaterializer backed by objects.
func NewBlobMaterializer(objects object.Store) *BlobMaterializer {
	return &BlobMaterializer{objects: objects}
}

// Materialize downloads and parses the document stored under objectKey.
func (m *BlobMaterializer) Materialize(ctx context.Context, objectKey, filename string) (Dataset, error) {
	data, err := m.objects.Get(ctx, objectKey)
	if err != nil {
		return Dataset{}, fmt.Errorf("fetching %q: %w", filename, err)
	}
	return ParseTabular(filename, data)
}

// ParseTabular parses raw bytes into a Dataset based on the filename
// extension. The first row becomes the column headers; short rows are
// padded so every row has one cell per column.
func ParseTabular(filename string, data []byte) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(filename, data)
	case ".xlsx":
		return parseXLSX(filename, data)
	default:
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

func parseCSV(filename string, data []byte) (Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing csv %q: %w", filename, err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("csv %q has no header row", filename)
	}
	return buildDataset(filename, records), nil
}

func parseXLSX(filename string, data []byte) (Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Dataset{}, fmt.Errorf("opening xlsx %q: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, fmt.Errorf("xlsx %q has no sheets", filename)
	}

	// Only the first sheet participates in computations.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Dataset{}, fmt.Errorf("reading sheet %q of %q: %w", sheets[0], filename, err)
	}
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("xlsx %q has no header row", filename)
	}
	return buildDataset(filename, rows), nil
}

func buildDataset(filename string, records [][]string) Dataset {
	columns := make([]string, len(records[0]))
	for i, col := range records[0] {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(columns))
		copy(row, record)
		rows = append(rows, row)
	}
	return Dataset{Filename: filename, Columns: columns, Rows: rows}
}

var _ Materializer = (*BlobMaterializer)(nil)
