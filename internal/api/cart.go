package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pricepulse/storefront/internal/models"
)

// Cart fetches the authenticated user's cart. GET /cart.
func (c *Client) Cart(ctx context.Context) (models.Cart, error) {
	var cart models.Cart
	err := c.do(ctx, http.MethodGet, "/cart", nil, nil, &cart)
	return cart, err
}

// AddToCart adds quantity units of a product. POST /cart/add.
func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) (models.CartItem, error) {
	if quantity <= 0 {
		quantity = 1
	}
	payload := map[string]any{"productId": productID, "quantity": quantity}
	var item models.CartItem
	err := c.do(ctx, http.MethodPost, "/cart/add", nil, payload, &item)
	return item, err
}

// UpdateCartItem sets the quantity of an existing line. PUT /cart/{itemID}.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) (models.CartItem, error) {
	payload := map[string]any{"quantity": quantity}
	var item models.CartItem
	err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(itemID), nil, payload, &item)
	return item, err
}

// RemoveFromCart deletes a line. DELETE /cart/{itemID}.
func (c *Client) RemoveFromCart(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(itemID), nil, nil, nil)
}

// ClearCart empties the cart. DELETE /cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil, nil)
}
