package catalog

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/internal/domain"
	"go.uber.org/zap"
)

// Column order of the import sheet. Export writes the same layout.
var SheetColumns = []string{
	"name", "category", "shape", "size", "dimensions",
	"material", "price", "description", "image_url",
}

const (
	colName = iota
	colCategory
	colShape
	colSize
	colDimensions
	colMaterial
	colPrice
	colDescription
	colImageUrl
)

// first data row; row 1 is the header
const firstDataRow = 2

// SheetRow is one data row of the import sheet with its 1-based row number.
type SheetRow struct {
	Index int
	Cells []string
}

// RowError records why a sheet row was not imported.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Message  string     `json:"message"`
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

// ErrInvalidWorkbook is returned when the payload cannot be read as xlsx.
var ErrInvalidWorkbook = errors.New("invalid workbook")

// ReadSheet returns the data rows of the first sheet of an xlsx workbook.
func ReadSheet(data []byte) ([]SheetRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidWorkbook, err.Error())
	}

	sheets := f.GetSheetMap()
	if len(sheets) == 0 {
		return nil, errors.Wrap(ErrInvalidWorkbook, "workbook has no sheets")
	}
	indexes := make([]int, 0, len(sheets))
	for idx := range sheets {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	rows := f.GetRows(sheets[indexes[0]])
	result := make([]SheetRow, 0, len(rows))
	for i := firstDataRow - 1; i < len(rows); i++ {
		result = append(result, SheetRow{Index: i + 1, Cells: rows[i]})
	}
	return result, nil
}

// Fields maps the positional cells of a row to product fields. Missing or
// empty cells are null, a missing price is zero.
func (r SheetRow) Fields() (domain.ProductFields, error) {
	fields := domain.ProductFields{
		Name:        strings.TrimSpace(r.cell(colName)),
		Category:    r.optional(colCategory),
		Shape:       r.optional(colShape),
		Size:        r.optional(colSize),
		Dimensions:  r.optional(colDimensions),
		Material:    r.optional(colMaterial),
		Description: r.optional(colDescription),
		ImageUrl:    r.optional(colImageUrl),
	}
	price, err := ParsePrice(r.cell(colPrice))
	if err != nil {
		return fields, err
	}
	fields.Price = price
	return fields, nil
}

// Blank reports a row without a name; such rows are skipped.
func (r SheetRow) Blank() bool {
	return strings.TrimSpace(r.cell(colName)) == ""
}

func (r SheetRow) cell(col int) string {
	if col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}

func (r SheetRow) optional(col int) *string {
	v := strings.TrimSpace(r.cell(col))
	if v == "" {
		return nil
	}
	return &v
}

// Importer inserts spreadsheet rows into the catalog one by one.
type Importer struct {
	repo Repository
}

func NewImporter(repo Repository) *Importer {
	return &Importer{repo: repo}
}

// Import reads the workbook and inserts every named row independently. A
// failing row is recorded and the remaining rows are still imported.
func (im *Importer) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	rows, err := ReadSheet(data)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]RowError, 0)}
	for _, row := range rows {
		if row.Blank() {
			continue
		}
		fields, err := row.Fields()
		if err == nil {
			_, err = im.repo.Create(ctx, fields)
		}
		if err != nil {
			zap.L().Warn("catalog import: row rejected",
				zap.Int("row", row.Index),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, RowError{Row: row.Index, Message: err.Error()})
			continue
		}
		result.Imported++
	}
	result.Message = fmt.Sprintf("Successfully imported %d products", result.Imported)

	zap.L().Info("catalog import finished",
		zap.Int("imported", result.Imported),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}
