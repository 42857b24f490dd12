package catalog

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	qt "github.com/frankban/quicktest"
	"github.com/shopspring/decimal"

	"github.com/retouchshop/shopapi/internal/domain"
)

// buildWorkbook writes a header row followed by rows; nil cells stay empty.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	for i, title := range SheetColumns {
		f.SetCellValue("Sheet1", cellName(i, 1), title)
	}
	for r, row := range rows {
		for col, v := range row {
			if v == nil {
				continue
			}
			f.SetCellValue("Sheet1", cellName(col, r+2), v)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestImportSkipsRowsWithoutName(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	data := buildWorkbook(t, [][]interface{}{
		{"Vase", "standard", "round", "M", "20x30", "ceramic", 1500, "Tall vase", "https://cdn.example.com/1.jpg"},
		{"Bowl", "standard"},
		{nil, "premium", "square", nil, nil, nil, "100"},
		{"Plate", "premium", nil, nil, nil, nil, "1 234,56"},
	})

	result, err := NewImporter(repo).Import(ctx, data)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Imported, qt.Equals, 3)
	c.Assert(result.Errors, qt.HasLen, 0)
	c.Assert(result.Message, qt.Equals, "Successfully imported 3 products")

	all, err := repo.List(ctx, "")
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 3)

	byName := make(map[string]domain.Product)
	for _, p := range all {
		byName[p.Name] = p
	}

	plate := byName["Plate"]
	c.Assert(plate.Price.Equal(decimal.RequireFromString("1234.56")), qt.IsTrue, qt.Commentf("got %s", plate.Price))
	c.Assert(*plate.Category, qt.Equals, "premium")
	c.Assert(plate.Shape, qt.IsNil)

	bowl := byName["Bowl"]
	c.Assert(bowl.Price.IsZero(), qt.IsTrue)
	c.Assert(bowl.Material, qt.IsNil)
	c.Assert(bowl.ImageUrl, qt.IsNil)

	vase := byName["Vase"]
	c.Assert(vase.Price.Equal(decimal.NewFromInt(1500)), qt.IsTrue)
	c.Assert(*vase.Description, qt.Equals, "Tall vase")
	c.Assert(*vase.ImageUrl, qt.Equals, "https://cdn.example.com/1.jpg")
}

// failingRepository rejects one product name and delegates the rest.
type failingRepository struct {
	Repository
	reject string
}

func (r failingRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	if fields.Name == r.reject {
		return nil, errors.New("value too long for type character varying(255)")
	}
	return r.Repository.Create(ctx, fields)
}

func TestImportCollectsRowErrors(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	data := buildWorkbook(t, [][]interface{}{
		{"Good", "standard", nil, nil, nil, nil, "10"},
		{"Broken", "standard", nil, nil, nil, nil, "10"},
		{"Priceless", "standard", nil, nil, nil, nil, "по запросу"},
		{"Also good", "standard", nil, nil, nil, nil, "20,5"},
	})

	result, err := NewImporter(failingRepository{Repository: repo, reject: "Broken"}).Import(ctx, data)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Imported, qt.Equals, 2)
	c.Assert(result.Errors, qt.DeepEquals, []RowError{
		{Row: 3, Message: "value too long for type character varying(255)"},
		{Row: 4, Message: `invalid price "по запросу"`},
	})

	all, err := repo.List(ctx, "standard")
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 2)
}

func TestImportInvalidWorkbook(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)

	_, err := NewImporter(repo).Import(context.Background(), []byte("definitely not a zip"))
	c.Assert(err, qt.ErrorIs, ErrInvalidWorkbook)
}

func TestExportRoundTrip(t *testing.T) {
	c := qt.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, vase("Vase", "standard"))
	c.Assert(err, qt.IsNil)
	_, err = repo.Create(ctx, domain.ProductFields{Name: "Bare", Price: decimal.RequireFromString("7.5")})
	c.Assert(err, qt.IsNil)

	products, err := repo.List(ctx, "")
	c.Assert(err, qt.IsNil)

	var buf bytes.Buffer
	c.Assert(WriteXLSX(&buf, products), qt.IsNil)

	rows, err := ReadSheet(buf.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 2)
	for i, row := range rows {
		c.Assert(row.Index, qt.Equals, i+2)
		fields, err := row.Fields()
		c.Assert(err, qt.IsNil)
		want := products[i].Fields()
		c.Assert(fields.Name, qt.Equals, want.Name)
		c.Assert(fields.Category, qt.DeepEquals, want.Category)
		c.Assert(fields.ImageUrl, qt.DeepEquals, want.ImageUrl)
		c.Assert(fields.Price.Equal(want.Price), qt.IsTrue, qt.Commentf("got %s want %s", fields.Price, want.Price))
	}
}

func TestWriteCSV(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	err := WriteCSV(&buf, []domain.Product{{
		Name:     "Vase",
		Category: strptr("standard"),
		Price:    decimal.RequireFromString("1234.5"),
	}})
	c.Assert(err, qt.IsNil)
	c.Assert(buf.String(), qt.Equals,
		"name,category,shape,size,dimensions,material,price,description,image_url\n"+
			"Vase,standard,,,,,1234.50,,\n")
}
