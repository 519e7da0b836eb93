package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pricepulse/storefront/internal/models"
)

// Wishlist fetches the full wishlist. GET /wishlist.
func (c *Client) Wishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := c.do(ctx, http.MethodGet, "/wishlist", nil, nil, &items)
	return items, err
}

// WishlistCount fetches the number of saved products. GET /wishlist/count.
func (c *Client) WishlistCount(ctx context.Context) (int, error) {
	var count int
	err := c.do(ctx, http.MethodGet, "/wishlist/count", nil, nil, &count)
	return count, err
}

// AddToWishlist saves a product. POST /wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID string) (models.WishlistItem, error) {
	payload := map[string]string{"productId": productID}
	var item models.WishlistItem
	err := c.do(ctx, http.MethodPost, "/wishlist", nil, payload, &item)
	return item, err
}

// RemoveFromWishlist removes a product. DELETE /wishlist/{productID}.
func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil, nil)
}

// ClearWishlist removes every saved product. DELETE /wishlist.
func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/wishlist", nil, nil, nil)
}

// InWishlist reports whether the product is saved. GET /wishlist/check/{productID}.
func (c *Client) InWishlist(ctx context.Context, productID string) (bool, error) {
	var saved bool
	err := c.do(ctx, http.MethodGet, "/wishlist/check/"+url.PathEscape(productID), nil, nil, &saved)
	return saved, err
}
