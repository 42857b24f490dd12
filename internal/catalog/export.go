package catalog

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/internal/domain"
)

const exportSheet = "Sheet1"

// exportRow is the csv shape of a product, in import column order.
type exportRow struct {
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Shape       string `csv:"shape"`
	Size        string `csv:"size"`
	Dimensions  string `csv:"dimensions"`
	Material    string `csv:"material"`
	Price       string `csv:"price"`
	Description string `csv:"description"`
	ImageUrl    string `csv:"image_url"`
}

func toExportRow(p domain.Product) exportRow {
	return exportRow{
		Name:        p.Name,
		Category:    deref(p.Category),
		Shape:       deref(p.Shape),
		Size:        deref(p.Size),
		Dimensions:  deref(p.Dimensions),
		Material:    deref(p.Material),
		Price:       p.Price.StringFixed(2),
		Description: deref(p.Description),
		ImageUrl:    deref(p.ImageUrl),
	}
}

// WriteXLSX writes products as a workbook the importer can read back.
func WriteXLSX(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	for i, title := range SheetColumns {
		f.SetCellValue(exportSheet, cellName(i, 1), title)
	}
	for r, p := range products {
		row := r + firstDataRow
		values := []interface{}{
			p.Name, deref(p.Category), deref(p.Shape), deref(p.Size), deref(p.Dimensions),
			deref(p.Material), p.Price.InexactFloat64(), deref(p.Description), deref(p.ImageUrl),
		}
		for col, v := range values {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			f.SetCellValue(exportSheet, cellName(col, row), v)
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write xlsx")
	}
	return nil
}

// WriteCSV writes products as csv with a header row.
func WriteCSV(w io.Writer, products []domain.Product) error {
	rows := make([]exportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, toExportRow(p))
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// cellName returns the A1 reference of a zero-based column; the sheet never
// has more than 26 columns.
func cellName(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
