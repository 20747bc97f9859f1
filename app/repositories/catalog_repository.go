package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// ProductFilter narrows a product listing.
type ProductFilter struct {
	Search     string
	CategoryID uint
	Featured   bool
	Page       int
	Limit      int
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{db: tx}
}

func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error
	return p, err
}

// Exists ignores soft-deleted rows.
func (r *ProductRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// List pages through products, newest first, with their category.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, orm.Pagination, error) {
	products := []models.Product{}
	p, err := orm.From(r.db.WithContext(ctx)).
		Model(&models.Product{}).
		When(f.Search != "", func(db *gorm.DB) *gorm.DB {
			return db.Where("name LIKE ?", "%"+f.Search+"%")
		}).
		When(f.CategoryID != 0, func(db *gorm.DB) *gorm.DB {
			return db.Where("category_id = ?", f.CategoryID)
		}).
		When(f.Featured, func(db *gorm.DB) *gorm.DB {
			return db.Where("featured = ?", true)
		}).
		Order("id DESC").
		Paginate(f.Page, f.Limit, &products, "Category")
	return products, p, err
}

// Related returns up to limit products of a category ordered by name,
// skipping exclude.
func (r *ProductRepository) Related(ctx context.Context, categoryID, exclude uint, limit int) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.From(r.db.WithContext(ctx).Limit(limit)).
		Where("category_id = ?", categoryID).
		When(exclude != 0, func(db *gorm.DB) *gorm.DB { return db.Where("id <> ?", exclude) }).
		Order("name").
		Get(&products)
	return products, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(p).Error
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(p).Error
}

// Delete soft-deletes the product.
func (r *ProductRepository) Delete(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Delete(p).Error
}

// DetachCategory clears category_id on every product of the category,
// including soft-deleted ones.
func (r *ProductRepository) DetachCategory(ctx context.Context, categoryID uint) error {
	return r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		UpdateColumn("category_id", nil).Error
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	err := orm.From(r.db.WithContext(ctx)).Order("name").Get(&categories)
	return categories, err
}

func (r *CategoryRepository) Find(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	return c, err
}

// NameTaken reports whether another category already uses name.
func (r *CategoryRepository) NameTaken(ctx context.Context, name string, except uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, except).
		Count(&n).Error
	return n > 0, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) Save(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Delete(c).Error
}
