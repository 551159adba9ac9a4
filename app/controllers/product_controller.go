package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

// Catalog is the product operations the HTTP layer exposes.
type Catalog interface {
	AddProduct(ctx context.Context, in models.NewProduct) (*models.Product, error)
	RemoveProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListNewCollections(ctx context.Context) ([]models.Product, error)
	ListPopular(ctx context.Context) ([]models.Product, error)
}

type ProductController struct {
	catalog Catalog
}

func NewProductController(catalog Catalog) *ProductController {
	return &ProductController{catalog: catalog}
}

// Add handles POST /addproduct.
func (c *ProductController) Add(cx *ctx.Context) {
	var in models.NewProduct
	if !cx.BindJSON(&in) {
		return
	}

	p, err := c.catalog.AddProduct(cx.Context(), in)
	if err != nil {
		cx.InternalError("add product failed", err)
		return
	}

	cx.OK(map[string]interface{}{"success": true, "name": p.Name})
}

type removeProductInput struct {
	ID   *models.FlexInt `json:"id"   validate:"required"`
	Name string          `json:"name"`
}

// Remove handles POST /removeproduct. An unknown id still succeeds.
func (c *ProductController) Remove(cx *ctx.Context) {
	var in removeProductInput
	if !cx.BindJSON(&in) {
		return
	}

	p, err := c.catalog.RemoveProduct(cx.Context(), int64(*in.ID))
	if err != nil {
		cx.InternalError("remove product failed", err)
		return
	}

	name := in.Name
	if p != nil {
		name = p.Name
	}
	cx.OK(map[string]interface{}{"success": true, "name": name})
}

// All handles GET /allproducts.
func (c *ProductController) All(cx *ctx.Context) {
	c.list(cx, c.catalog.ListProducts)
}

// NewCollections handles GET /newcollections.
func (c *ProductController) NewCollections(cx *ctx.Context) {
	c.list(cx, c.catalog.ListNewCollections)
}

// Popular handles GET /popular.
func (c *ProductController) Popular(cx *ctx.Context) {
	c.list(cx, c.catalog.ListPopular)
}

func (c *ProductController) list(cx *ctx.Context, fetch func(context.Context) ([]models.Product, error)) {
	products, err := fetch(cx.Context())
	if err != nil {
		cx.InternalError("list products failed", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	cx.JSON(http.StatusOK, products)
}
