package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/resource"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// ProductResource adds resolved image URLs to a product.
type ProductResource struct {
	models.Product
	ImageURLs []string `json:"imageUrls"`
}

type CatalogController struct {
	catalog *services.CatalogService
	disk    storage.Disk
}

func NewCatalogController(catalog *services.CatalogService, disk storage.Disk) *CatalogController {
	return &CatalogController{catalog: catalog, disk: disk}
}

func (h *CatalogController) present(p models.Product) ProductResource {
	urls := collection.Map(p.Images, func(key string) string {
		if h.disk == nil {
			return key
		}
		return h.disk.URL(key)
	})
	return ProductResource{Product: p, ImageURLs: urls}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (h *CatalogController) Categories(c *ctx.Context) {
	categories, err := h.catalog.Categories(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(categories)
}

func (h *CatalogController) Category(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	category, err := h.catalog.Category(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(category)
}

func (h *CatalogController) Related(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	exclude := c.QueryInt("exclude", 0)
	if exclude < 0 {
		exclude = 0
	}
	products, err := h.catalog.Related(c.Context(), id, uint(exclude), c.QueryInt("limit", 0))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(resource.Many(products, h.present))
}

func (h *CatalogController) CreateCategory(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	category, err := h.catalog.CreateCategory(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(category)
}

func (h *CatalogController) UpdateCategory(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	category, err := h.catalog.UpdateCategory(c.Context(), id, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(category)
}

func (h *CatalogController) DeleteCategory(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Category deleted")
}

// ── Products ─────────────────────────────────────────────────────────────────

func (h *CatalogController) Products(c *ctx.Context) {
	category := c.QueryInt("category", 0)
	if category < 0 {
		category = 0
	}
	filter := repositories.ProductFilter{
		Search:     c.Query("search"),
		CategoryID: uint(category),
		Featured:   c.QueryBool("featured"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 0),
	}
	products, page, err := h.catalog.Products(c.Context(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(resource.Many(products, h.present), page)
}

func (h *CatalogController) Product(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := h.catalog.Product(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(resource.One(product, h.present))
}

func (h *CatalogController) CreateProduct(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := h.catalog.CreateProduct(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(resource.One(product, h.present))
}

func (h *CatalogController) UpdateProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := h.catalog.UpdateProduct(c.Context(), id, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(resource.One(product, h.present))
}

func (h *CatalogController) DeleteProduct(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Product deleted")
}
