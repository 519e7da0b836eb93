package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pricepulse/storefront/internal/models"
)

// ProductQuery narrows and orders a marketplace listing. Zero values are
// omitted from the request so the backend applies its own defaults.
type ProductQuery struct {
	Page      int
	Limit     int
	Category  string
	Search    string
	MinPrice  float64
	MaxPrice  float64
	SortBy    string
	SortOrder string // "asc" or "desc"
}

func (q ProductQuery) values() url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.MinPrice > 0 {
		values.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		values.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	return values
}

// Products fetches one page of marketplace listings. GET /products.
func (c *Client) Products(ctx context.Context, query ProductQuery) (models.ProductPage, error) {
	var page models.ProductPage
	err := c.do(ctx, http.MethodGet, "/products", query.values(), nil, &page)
	return page, err
}

// Categories fetches the category tree. GET /products/categories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.do(ctx, http.MethodGet, "/products/categories", nil, nil, &categories)
	return categories, err
}

// ProductBySlug fetches a single listing. GET /products/{slug}.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (models.Product, error) {
	var product models.Product
	err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(slug), nil, nil, &product)
	return product, err
}

// CreateProductParams is the vendor payload for a new listing.
type CreateProductParams struct {
	ShopName      string   `json:"shopName"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Discount      float64  `json:"discount,omitempty"`
	CategoryID    string   `json:"categoryId"`
	Stock         int      `json:"stock,omitempty"`
	Image         string   `json:"image,omitempty"`
	Images        []string `json:"images,omitempty"`
}

// CreateProduct publishes a vendor listing. POST /products.
func (c *Client) CreateProduct(ctx context.Context, params CreateProductParams) (models.Product, error) {
	if params.ShopName == "" || params.Name == "" || params.CategoryID == "" {
		return models.Product{}, fmt.Errorf("shop name, product name, and category are required")
	}
	var product models.Product
	err := c.do(ctx, http.MethodPost, "/products", nil, params, &product)
	return product, err
}
