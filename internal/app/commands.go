package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pricepulse/storefront/internal/api"
)

type commandFunc func(ctx context.Context, deps Dependencies, args []string) error

var commands = map[string]commandFunc{
	"health":              cmdHealth,
	"signup":              cmdSignup,
	"login":               cmdLogin,
	"logout":              cmdLogout,
	"me":                  cmdMe,
	"verify-email":        cmdVerifyEmail,
	"resend-verification": cmdResendVerification,
	"forgot-password":     cmdForgotPassword,
	"reset-password":      cmdResetPassword,
	"profile-update":      cmdProfileUpdate,
	"products":            cmdProducts,
	"product":             cmdProduct,
	"categories":          cmdCategories,
	"cart":                cmdCart,
	"cart-add":            cmdCartAdd,
	"cart-update":         cmdCartUpdate,
	"cart-remove":         cmdCartRemove,
	"cart-clear":          cmdCartClear,
	"wishlist":            cmdWishlist,
	"wishlist-add":        cmdWishlistAdd,
	"wishlist-remove":     cmdWishlistRemove,
	"wishlist-clear":      cmdWishlistClear,
	"wishlist-check":      cmdWishlistCheck,
	"wishlist-count":      cmdWishlistCount,
	"vendor-create":       cmdVendorCreate,
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdHealth(ctx context.Context, deps Dependencies, _ []string) error {
	result := deps.API.CheckHealth(ctx)
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Healthy {
		return errors.New("backend unhealthy")
	}
	return nil
}

func cmdSignup(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	first := fs.String("first-name", "", "first name")
	last := fs.String("last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}

	message, err := deps.Account.SignUp(ctx, api.SignupParams{
		Email:     *email,
		Password:  *password,
		FirstName: *first,
		LastName:  *last,
	})
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func cmdLogin(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}

	user, err := deps.Account.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", user.Email)
	return nil
}

func cmdLogout(ctx context.Context, deps Dependencies, _ []string) error {
	if err := deps.Account.SignOut(ctx); err != nil {
		return err
	}
	fmt.Println("signed out")
	return nil
}

func cmdMe(ctx context.Context, deps Dependencies, _ []string) error {
	user, ok := deps.Account.Bootstrap(ctx)
	if !ok {
		return errors.New("not signed in")
	}
	return printJSON(user)
}

func cmdVerifyEmail(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("verify-email", flag.ContinueOnError)
	token := fs.String("token", "", "verification code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return errors.New("token is required")
	}

	user, loggedIn, err := deps.Account.VerifyEmail(ctx, *token)
	if err != nil {
		return err
	}
	if loggedIn {
		fmt.Printf("email verified, signed in as %s\n", user.Email)
		return nil
	}
	fmt.Println("email verified")
	return nil
}

func cmdResendVerification(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("resend-verification", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("email is required")
	}

	result, err := deps.Account.ResendVerification(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	if remaining, ok := deps.Account.VerificationExpiresIn(time.Now()); ok {
		fmt.Printf("code expires in %s\n", remaining.Round(time.Second))
	}
	return nil
}

func cmdForgotPassword(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("forgot-password", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("email is required")
	}

	message, err := deps.Account.ForgotPassword(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func cmdResetPassword(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ContinueOnError)
	token := fs.String("token", "", "reset token")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" || *password == "" {
		return errors.New("token and password are required")
	}

	message, err := deps.Account.ResetPassword(ctx, *token, *password)
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func cmdProfileUpdate(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("profile-update", flag.ContinueOnError)
	params := api.UpdateProfileParams{}
	fs.StringVar(&params.FirstName, "first-name", "", "first name")
	fs.StringVar(&params.LastName, "last-name", "", "last name")
	fs.StringVar(&params.Phone, "phone", "", "phone number")
	fs.StringVar(&params.Bio, "bio", "", "bio")
	fs.StringVar(&params.Address1, "address1", "", "address line 1")
	fs.StringVar(&params.Address2, "address2", "", "address line 2")
	fs.StringVar(&params.State, "state", "", "state")
	fs.StringVar(&params.LocalGovernment, "local-government", "", "local government")
	fs.StringVar(&params.Country, "country", "", "country")
	fs.StringVar(&params.DeliveryLocation, "delivery-location", "", "delivery location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := deps.Account.UpdateProfile(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func cmdProducts(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	query := api.ProductQuery{}
	fs.IntVar(&query.Page, "page", 0, "page number")
	fs.IntVar(&query.Limit, "limit", 0, "page size")
	fs.StringVar(&query.Category, "category", "", "category slug")
	fs.StringVar(&query.Search, "search", "", "search term")
	fs.Float64Var(&query.MinPrice, "min-price", 0, "minimum price")
	fs.Float64Var(&query.MaxPrice, "max-price", 0, "maximum price")
	fs.StringVar(&query.SortBy, "sort-by", "", "sort field")
	fs.StringVar(&query.SortOrder, "sort-order", "", "asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := deps.API.Products(ctx, query)
	if err != nil {
		return err
	}
	return printJSON(page)
}

func cmdProduct(ctx context.Context, deps Dependencies, args []string) error {
	if len(args) == 0 {
		return errors.New("expected a product slug")
	}
	product, err := deps.API.ProductBySlug(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(product)
}

func cmdCategories(ctx context.Context, deps Dependencies, _ []string) error {
	categories, err := deps.API.Categories(ctx)
	if err != nil {
		return err
	}
	return printJSON(categories)
}

func cmdCart(ctx context.Context, deps Dependencies, _ []string) error {
	cart, err := deps.API.Cart(ctx)
	if err != nil {
		return err
	}
	return printJSON(cart)
}

func cmdCartAdd(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ContinueOnError)
	productID := fs.String("product", "", "product id")
	quantity := fs.Int("quantity", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return errors.New("product id is required")
	}

	item, err := deps.API.AddToCart(ctx, *productID, *quantity)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func cmdCartUpdate(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("cart-update", flag.ContinueOnError)
	itemID := fs.String("item", "", "cart item id")
	quantity := fs.Int("quantity", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemID == "" {
		return errors.New("cart item id is required")
	}

	item, err := deps.API.UpdateCartItem(ctx, *itemID, *quantity)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func cmdCartRemove(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("cart-remove", flag.ContinueOnError)
	itemID := fs.String("item", "", "cart item id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemID == "" {
		return errors.New("cart item id is required")
	}
	return deps.API.RemoveFromCart(ctx, *itemID)
}

func cmdCartClear(ctx context.Context, deps Dependencies, _ []string) error {
	return deps.API.ClearCart(ctx)
}

func cmdWishlist(ctx context.Context, deps Dependencies, _ []string) error {
	items, err := deps.API.Wishlist(ctx)
	if err != nil {
		return err
	}
	return printJSON(items)
}

func cmdWishlistAdd(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("wishlist-add", flag.ContinueOnError)
	productID := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return errors.New("product id is required")
	}

	item, err := deps.API.AddToWishlist(ctx, *productID)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func cmdWishlistRemove(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("wishlist-remove", flag.ContinueOnError)
	productID := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return errors.New("product id is required")
	}
	return deps.API.RemoveFromWishlist(ctx, *productID)
}

func cmdWishlistClear(ctx context.Context, deps Dependencies, _ []string) error {
	return deps.API.ClearWishlist(ctx)
}

func cmdWishlistCount(ctx context.Context, deps Dependencies, _ []string) error {
	count, err := deps.API.WishlistCount(ctx)
	if err != nil {
		return err
	}
	fmt.Println(count)
	return nil
}

func cmdWishlistCheck(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("wishlist-check", flag.ContinueOnError)
	productID := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *productID == "" {
		return errors.New("product id is required")
	}

	saved, err := deps.API.InWishlist(ctx, *productID)
	if err != nil {
		return err
	}
	fmt.Println(saved)
	return nil
}

func cmdVendorCreate(ctx context.Context, deps Dependencies, args []string) error {
	fs := flag.NewFlagSet("vendor-create", flag.ContinueOnError)
	params := api.CreateProductParams{}
	fs.StringVar(&params.ShopName, "shop", "", "shop name")
	fs.StringVar(&params.Name, "name", "", "product name")
	fs.StringVar(&params.Description, "description", "", "product description")
	fs.Float64Var(&params.Price, "price", 0, "price")
	fs.Float64Var(&params.OriginalPrice, "original-price", 0, "original price")
	fs.Float64Var(&params.Discount, "discount", 0, "discount percentage")
	fs.StringVar(&params.CategoryID, "category", "", "category id")
	fs.IntVar(&params.Stock, "stock", 0, "stock count")
	fs.StringVar(&params.Image, "image", "", "primary image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	product, err := deps.API.CreateProduct(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(product)
}
