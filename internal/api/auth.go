package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pricepulse/storefront/internal/models"
)

// SignupParams is the payload for account creation.
type SignupParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignupResult is the backend's response to a signup. The account exists but
// stays unverified until the emailed code is confirmed.
type SignupResult struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

// SigninResult carries the credential bundle issued on successful sign-in.
type SigninResult struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// VerifyEmailResult reports verification. The backend may auto-login the
// account, in which case the token pair and user are present.
type VerifyEmailResult struct {
	Message      string       `json:"message"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

// ResendVerificationResult carries the expiry of the freshly issued code.
type ResendVerificationResult struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type messageResult struct {
	Message string `json:"message"`
}

// Signup registers a new account. POST /auth/signup.
func (c *Client) Signup(ctx context.Context, params SignupParams) (SignupResult, error) {
	var result SignupResult
	err := c.do(ctx, http.MethodPost, "/auth/signup", nil, params, &result)
	return result, err
}

// Signin exchanges credentials for a token pair and profile. POST /auth/signin.
func (c *Client) Signin(ctx context.Context, email, password string) (SigninResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var result SigninResult
	err := c.do(ctx, http.MethodPost, "/auth/signin", nil, payload, &result)
	return result, err
}

// CurrentUser fetches the authenticated identity. GET /auth/me.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user)
	return user, err
}

// Logout invalidates the refresh token server-side. POST /auth/logout.
func (c *Client) Logout(ctx context.Context, refreshToken string) (string, error) {
	payload := map[string]string{"refreshToken": refreshToken}
	var result messageResult
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, payload, &result)
	return result.Message, err
}

// VerifyEmail confirms the emailed verification code. POST /auth/verify-email.
func (c *Client) VerifyEmail(ctx context.Context, token string) (VerifyEmailResult, error) {
	payload := map[string]string{"token": token}
	var result VerifyEmailResult
	err := c.do(ctx, http.MethodPost, "/auth/verify-email", nil, payload, &result)
	return result, err
}

// ResendVerification issues a new code with a fresh expiry.
// POST /auth/resend-verification.
func (c *Client) ResendVerification(ctx context.Context, email string) (ResendVerificationResult, error) {
	payload := map[string]string{"email": email}
	var result ResendVerificationResult
	err := c.do(ctx, http.MethodPost, "/auth/resend-verification", nil, payload, &result)
	return result, err
}

// ForgotPassword requests a reset email. POST /auth/forgot-password.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	payload := map[string]string{"email": email}
	var result messageResult
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, payload, &result)
	return result.Message, err
}

// ResetPassword applies a reset token. POST /auth/reset-password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	payload := map[string]string{"token": token, "password": password}
	var result messageResult
	err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, payload, &result)
	return result.Message, err
}

// UpdateProfileParams mirrors the editable profile fields.
type UpdateProfileParams struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Bio              string `json:"bio,omitempty"`
	Address1         string `json:"address1,omitempty"`
	Address2         string `json:"address2,omitempty"`
	State            string `json:"state,omitempty"`
	LocalGovernment  string `json:"localGovernment,omitempty"`
	Country          string `json:"country,omitempty"`
	DeliveryLocation string `json:"deliveryLocation,omitempty"`
}

// UpdateProfileResult is the backend's response to a profile update.
type UpdateProfileResult struct {
	Message string         `json:"message"`
	Profile models.Profile `json:"profile"`
}

// UpdateProfile edits the authenticated user's profile. POST /auth/profile.
func (c *Client) UpdateProfile(ctx context.Context, params UpdateProfileParams) (UpdateProfileResult, error) {
	var result UpdateProfileResult
	err := c.do(ctx, http.MethodPost, "/auth/profile", nil, params, &result)
	return result, err
}
