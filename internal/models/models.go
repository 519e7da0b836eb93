package models

import "time"

// Role values issued by the commerce backend.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Profile holds the mutable profile details attached to an account.
type Profile struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Avatar           string `json:"avatar,omitempty"`
	Bio              string `json:"bio,omitempty"`
	Address1         string `json:"address1,omitempty"`
	Address2         string `json:"address2,omitempty"`
	State            string `json:"state,omitempty"`
	LocalGovernment  string `json:"localGovernment,omitempty"`
	Country          string `json:"country,omitempty"`
	DeliveryLocation string `json:"deliveryLocation,omitempty"`
}

// User is the server-issued identity snapshot cached alongside the session
// tokens. It is never authoritative on its own; the latest /auth/me response
// always supersedes it.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	IsVerified bool     `json:"isVerified"`
	Profile    *Profile `json:"profile,omitempty"`
}

// SessionTokens groups the bearer credentials issued on sign-in or refresh.
// Both tokens are present or both are absent; a partial pair never exists.
type SessionTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether the pair represents an established session.
func (t SessionTokens) Valid() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// Category groups products in the marketplace.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Product is a storefront listing.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"originalPrice,omitempty"`
	Image         string   `json:"image,omitempty"`
	Images        []string `json:"images,omitempty"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	Discount      float64  `json:"discount,omitempty"`
	Vendor        string   `json:"vendor"`
	Stock         int      `json:"stock"`
	Category      Category `json:"category"`
}

// Pagination describes the slice of a paginated listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ProductPage is one page of marketplace results.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// CartProduct is the product summary embedded in a cart line.
type CartProduct struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Image         string  `json:"image,omitempty"`
	Discount      float64 `json:"discount,omitempty"`
	Vendor        string  `json:"vendor"`
}

// CartItem is one line in the shopping cart.
type CartItem struct {
	ID       string      `json:"id"`
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// Cart is the authenticated user's shopping cart.
type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int        `json:"count"`
}

// WishlistItem is a saved product reference.
type WishlistItem struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
	Product   Product   `json:"product"`
}
