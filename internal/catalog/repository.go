package catalog

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/internal/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no product matches the requested id.
var ErrNotFound = errors.New("product not found")

// Repository handles database operations for catalog products
type Repository interface {
	// List returns products newest first, optionally restricted to one category
	List(ctx context.Context, category string) ([]domain.Product, error)

	// Get retrieves a product by ID
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// Create inserts a new product with a generated ID
	Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error)

	// Update overwrites every mutable column of an existing product
	Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error)

	// Delete removes a product by ID
	Delete(ctx context.Context, id int64) error
}

// GormRepository implements Repository on top of gorm
type GormRepository struct {
	db  *gorm.DB
	ids *snowflake.Node
}

var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB, ids *snowflake.Node) *GormRepository {
	return &GormRepository{db: db, ids: ids}
}

func (r *GormRepository) List(ctx context.Context, category string) ([]domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	rows := make([]domain.Product, 0)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return rows, nil
}

func (r *GormRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query product %d", id)
	}
	return &p, nil
}

func (r *GormRepository) Create(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	now := dbNow()
	p := domain.Product{
		ID:        r.ids.Generate().Int64(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.Apply(&p)

	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, errors.Wrap(err, "insert product")
	}
	return &p, nil
}

func (r *GormRepository) Update(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields.Apply(p)
	now := dbNow()
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Microsecond)
	}
	p.UpdatedAt = now

	result := r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "update product %d", id)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	if result.Error != nil {
		return errors.Wrapf(result.Error, "delete product %d", id)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// dbNow truncates to the microsecond precision postgres keeps for
// timestamps, so a returned row matches what a later read gives back.
func dbNow() time.Time {
	return time.Now().Truncate(time.Microsecond)
}
