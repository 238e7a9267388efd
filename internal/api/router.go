package api

import (
	"log/slog"
	"net/http"

	"github.com/example/blackshot-store/internal/api/middleware"
	"github.com/example/blackshot-store/internal/auth"
)

type RouterConfig struct {
	Handlers         *Handlers
	CategoryHandlers *CategoryHandlers
	AdminHandlers    *AdminHandlers
	AuthHandlers     *AuthHandlers
	Tokens           *auth.TokenService
	Logger           *slog.Logger
	WebDir           string
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h, c, a, ah := cfg.Handlers, cfg.CategoryHandlers, cfg.AdminHandlers, cfg.AuthHandlers

	admin := func(fn http.HandlerFunc) http.Handler { return middleware.RequireAdmin(fn) }
	customer := func(fn http.HandlerFunc) http.Handler { return middleware.RequireCustomer(fn) }

	// Static files (web UI)
	if cfg.WebDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.WebDir)))
	}

	// Catalog
	mux.HandleFunc("GET /api/products", h.GetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.GetReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.AddReview)
	mux.HandleFunc("GET /api/categories", c.ListCategories)
	mux.HandleFunc("GET /api/banners", c.ListBanners)
	mux.HandleFunc("GET /api/policies", h.GetPolicies)
	mux.HandleFunc("GET /api/upi", h.GetUPI)

	// Cart
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("GET /api/cart/summary", h.GetCartSummary)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("POST /api/cart/items", h.AddToCart)
	mux.HandleFunc("PATCH /api/cart/items/{productId}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{productId}", h.RemoveFromCart)

	// Orders
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.Handle("GET /api/orders", customer(h.GetMyOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)

	// Support
	mux.HandleFunc("POST /api/tickets", h.OpenTicket)
	mux.Handle("GET /api/tickets", customer(h.GetMyTickets))

	// Customer auth
	mux.HandleFunc("POST /api/auth/register", ah.Register)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	mux.HandleFunc("GET /api/auth/me", ah.Me)

	// Admin auth
	mux.HandleFunc("POST /api/admin/login", ah.AdminLogin)
	mux.HandleFunc("POST /api/admin/2fa/verify", ah.VerifyTwoFactor)
	mux.HandleFunc("POST /api/admin/logout", ah.AdminLogout)
	mux.Handle("POST /api/admin/password", admin(ah.ChangeAdminPassword))
	mux.Handle("GET /api/admin/2fa", admin(ah.TwoFactorStatus))
	mux.Handle("POST /api/admin/2fa/setup", admin(ah.BeginTwoFactorSetup))
	mux.Handle("POST /api/admin/2fa/confirm", admin(ah.ConfirmTwoFactorSetup))
	mux.Handle("DELETE /api/admin/2fa", admin(ah.DisableTwoFactor))

	// Admin catalog
	mux.Handle("POST /api/admin/products", admin(h.CreateProduct))
	mux.Handle("PATCH /api/admin/products/{id}", admin(h.UpdateProduct))
	mux.Handle("DELETE /api/admin/products/{id}", admin(h.DeleteProduct))
	mux.Handle("POST /api/admin/categories", admin(c.CreateCategory))
	mux.Handle("DELETE /api/admin/categories/{key}", admin(c.DeleteCategory))
	mux.Handle("POST /api/admin/banners", admin(c.CreateBanner))
	mux.Handle("DELETE /api/admin/banners/{id}", admin(c.DeleteBanner))

	// Admin panel
	mux.Handle("GET /api/admin/dashboard", admin(a.Dashboard))
	mux.Handle("GET /api/admin/orders", admin(a.ListOrders))
	mux.Handle("GET /api/admin/orders/history", admin(a.OrderHistory))
	mux.Handle("POST /api/admin/orders/{id}/approve", admin(a.ApproveOrder))
	mux.Handle("POST /api/admin/orders/{id}/cancel", admin(a.CancelOrder))
	mux.Handle("PUT /api/admin/orders/{id}/status", admin(a.UpdateOrderStatus))
	mux.Handle("GET /api/admin/tickets", admin(a.ListTickets))
	mux.Handle("POST /api/admin/tickets/{id}/resolve", admin(a.ResolveTicket))
	mux.Handle("GET /api/admin/users", admin(a.ListUsers))
	mux.Handle("PUT /api/admin/policies", admin(a.SavePolicies))
	mux.Handle("PUT /api/admin/upi", admin(a.SaveUPI))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var handler http.Handler = mux
	handler = middleware.SessionMiddleware(cfg.Tokens)(handler)
	handler = middleware.RequestLogger(logger.With("component", "api"))(handler)
	return handler
}
