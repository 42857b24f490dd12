package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go out as plain JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry. Every column except name is optional.
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id,string" form:"id"`
	Name        string          `gorm:"size:255;not null" json:"name" form:"name"`
	Category    *string         `gorm:"size:100;index" json:"category" form:"category"`
	Shape       *string         `gorm:"size:100" json:"shape" form:"shape"`
	Size        *string         `gorm:"size:100" json:"size" form:"size"`
	Dimensions  *string         `gorm:"size:100" json:"dimensions" form:"dimensions"`
	Material    *string         `gorm:"size:100" json:"material" form:"material"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price" form:"price"`
	Description *string         `gorm:"type:text" json:"description" form:"description"`
	ImageUrl    *string         `gorm:"type:text" json:"image_url" form:"image_url"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// ProductFields holds the client-supplied part of a product, used for both
// insert and full replace.
type ProductFields struct {
	Name        string          `json:"name"`
	Category    *string         `json:"category"`
	Shape       *string         `json:"shape"`
	Size        *string         `json:"size"`
	Dimensions  *string         `json:"dimensions"`
	Material    *string         `json:"material"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	ImageUrl    *string         `json:"image_url"`
}

// Apply overwrites every mutable column of p with f.
func (f ProductFields) Apply(p *Product) {
	p.Name = f.Name
	p.Category = f.Category
	p.Shape = f.Shape
	p.Size = f.Size
	p.Dimensions = f.Dimensions
	p.Material = f.Material
	p.Price = f.Price
	p.Description = f.Description
	p.ImageUrl = f.ImageUrl
}

// Fields returns the client-supplied part of p.
func (p Product) Fields() ProductFields {
	return ProductFields{
		Name:        p.Name,
		Category:    p.Category,
		Shape:       p.Shape,
		Size:        p.Size,
		Dimensions:  p.Dimensions,
		Material:    p.Material,
		Price:       p.Price,
		Description: p.Description,
		ImageUrl:    p.ImageUrl,
	}
}
