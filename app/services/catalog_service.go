package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

const (
	catalogTTL       = 10 * time.Minute
	categoriesKey    = "categories:all"
	relatedLimitMax  = 20
	relatedLimitBase = 4
)

func productKey(id uint) string { return fmt.Sprintf("products:%d", id) }

type CategoryInput struct {
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description"`
	Image       string `json:"image"       validate:"max=512"`
}

type ProductInput struct {
	Name           string          `json:"name"           validate:"required,max=255"`
	Description    string          `json:"description"    validate:"required"`
	Price          decimal.Decimal `json:"price"          validate:"required,gt=0"`
	Stock          int             `json:"stock"          validate:"gte=0"`
	CategoryID     uint            `json:"categoryId"     validate:"required"`
	Images         []string        `json:"images"`
	Featured       bool            `json:"featured"`
	Specifications map[string]any  `json:"specifications"`
}

// CatalogService manages categories and products. Category listings and
// product details are cached; writes invalidate them.
type CatalogService struct {
	db         *gorm.DB
	products   *repositories.ProductRepository
	categories *repositories.CategoryRepository
	cache      cache.Store
	disk       storage.Disk
}

// NewCatalogService removes product images from disk on delete; disk may be
// nil.
func NewCatalogService(db *gorm.DB, store cache.Store, disk storage.Disk) *CatalogService {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &CatalogService{
		db:         db,
		products:   repositories.NewProductRepository(db),
		categories: repositories.NewCategoryRepository(db),
		cache:      store,
		disk:       disk,
	}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := cache.Remember(ctx, s.cache, categoriesKey, catalogTTL, &out, func() error {
		var err error
		out, err = s.categories.All(ctx)
		return err
	})
	if out == nil {
		out = []models.Category{}
	}
	return out, internal(err)
}

func (s *CatalogService) Category(ctx context.Context, id uint) (models.Category, error) {
	c, err := s.categories.Find(ctx, id)
	return c, notFound(err, "Category not found")
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	c := models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Image:       in.Image,
	}
	if err := s.ensureCategoryName(ctx, c.Name, 0); err != nil {
		return c, err
	}
	if err := s.categories.Create(ctx, &c); err != nil {
		return c, internal(err)
	}
	cache.Forget(ctx, s.cache, categoriesKey)
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (models.Category, error) {
	c, err := s.categories.Find(ctx, id)
	if err != nil {
		return c, notFound(err, "Category not found")
	}
	name := strings.TrimSpace(in.Name)
	if err := s.ensureCategoryName(ctx, name, id); err != nil {
		return c, err
	}
	c.Name, c.Description, c.Image = name, in.Description, in.Image
	if err := s.categories.Save(ctx, &c); err != nil {
		return c, internal(err)
	}
	s.forgetCategory(ctx, id)
	return c, nil
}

// DeleteCategory detaches the category's products and deletes it in one
// transaction.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	c, err := s.categories.Find(ctx, id)
	if err != nil {
		return notFound(err, "Category not found")
	}
	s.forgetCategory(ctx, id)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.products.WithTx(tx).DetachCategory(ctx, id); err != nil {
			return err
		}
		return s.categories.WithTx(tx).Delete(ctx, &c)
	})
	return internal(err)
}

func (s *CatalogService) ensureCategoryName(ctx context.Context, name string, except uint) error {
	taken, err := s.categories.NameTaken(ctx, name, except)
	if err != nil {
		return internal(err)
	}
	if taken {
		return apperr.Conflict("Category name already exists")
	}
	return nil
}

// forgetCategory drops the category list and every cached product that
// embeds the category.
func (s *CatalogService) forgetCategory(ctx context.Context, id uint) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Pluck("id", &ids).Error; err != nil {
		logger.WithCtx(ctx).Warn("catalog: list products for cache purge", "category_id", id, "error", err)
	}
	keys := append(collection.Map(ids, productKey), categoriesKey)
	cache.Forget(ctx, s.cache, keys...)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *CatalogService) Products(ctx context.Context, f repositories.ProductFilter) ([]models.Product, orm.Pagination, error) {
	f.Search = strings.TrimSpace(f.Search)
	products, p, err := s.products.List(ctx, f)
	return products, p, internal(err)
}

// Product is read through the cache.
func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := cache.Remember(ctx, s.cache, productKey(id), catalogTTL, &p, func() error {
		var err error
		p, err = s.products.Find(ctx, id)
		return err
	})
	return p, notFound(err, "Product not found")
}

// Related lists other products of the category ordered by name. limit
// defaults to 4.
func (s *CatalogService) Related(ctx context.Context, categoryID, exclude uint, limit int) ([]models.Product, error) {
	if _, err := s.categories.Find(ctx, categoryID); err != nil {
		return nil, notFound(err, "Category not found")
	}
	if limit < 1 {
		limit = relatedLimitBase
	}
	if limit > relatedLimitMax {
		limit = relatedLimitMax
	}
	products, err := s.products.Related(ctx, categoryID, exclude, limit)
	return products, internal(err)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	p := models.Product{}
	if err := s.applyProductInput(ctx, &p, in); err != nil {
		return p, err
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return p, internal(err)
	}
	created, err := s.products.Find(ctx, p.ID)
	return created, internal(err)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return p, notFound(err, "Product not found")
	}
	if err := s.applyProductInput(ctx, &p, in); err != nil {
		return p, err
	}
	p.Category = nil
	if err := s.products.Save(ctx, &p); err != nil {
		return p, internal(err)
	}
	cache.Forget(ctx, s.cache, productKey(id))
	updated, err := s.products.Find(ctx, id)
	return updated, internal(err)
}

// DeleteProduct soft-deletes the product and then removes its images from
// storage. Storage failures are logged.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return notFound(err, "Product not found")
	}
	if err := s.products.Delete(ctx, &p); err != nil {
		return internal(err)
	}
	cache.Forget(ctx, s.cache, productKey(id))

	if s.disk != nil && len(p.Images) > 0 {
		if err := s.disk.Delete(ctx, p.Images...); err != nil {
			logger.WithCtx(ctx).Warn("catalog: remove product images", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) applyProductInput(ctx context.Context, p *models.Product, in ProductInput) error {
	if !in.Price.IsPositive() {
		return apperr.Validation(map[string]string{"price": "The price must be greater than 0."})
	}
	if in.Stock < 0 {
		return apperr.Validation(map[string]string{"stock": "The stock must be greater than or equal to 0."})
	}
	if _, err := s.categories.Find(ctx, in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Category not found")
		}
		return internal(err)
	}

	images := collection.Unique(collection.Filter(in.Images, func(k string) bool {
		return strings.TrimSpace(k) != ""
	}))
	categoryID := in.CategoryID

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = models.NewMoney(in.Price)
	p.Stock = in.Stock
	p.CategoryID = &categoryID
	p.Images = images
	p.Featured = in.Featured
	p.Specifications = in.Specifications
	return nil
}
