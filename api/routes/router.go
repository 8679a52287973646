package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trendora/trendora-backend/api/controllers"
	"github.com/trendora/trendora-backend/api/middleware"
	"github.com/trendora/trendora-backend/internal/auth"
	"github.com/trendora/trendora-backend/internal/banners"
	"github.com/trendora/trendora-backend/internal/cart"
	"github.com/trendora/trendora-backend/internal/categories"
	checkoutsvc "github.com/trendora/trendora-backend/internal/checkout"
	"github.com/trendora/trendora-backend/internal/contact"
	"github.com/trendora/trendora-backend/internal/orders"
	"github.com/trendora/trendora-backend/internal/products"
	"github.com/trendora/trendora-backend/internal/reports"
	"github.com/trendora/trendora-backend/internal/settings"
	"github.com/trendora/trendora-backend/internal/users"
	"github.com/trendora/trendora-backend/internal/wishlist"
	"github.com/trendora/trendora-backend/pkg/auth/session"
	"github.com/trendora/trendora-backend/pkg/config"
	"github.com/trendora/trendora-backend/pkg/db"
	"github.com/trendora/trendora-backend/pkg/logger"
	"github.com/trendora/trendora-backend/pkg/metrics"
	"github.com/trendora/trendora-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	DB             db.Pinger
	Redis          redis.Pinger
	SessionChecker session.Checker
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	Auth       auth.Service
	Users      users.Service
	Products   products.Service
	Categories categories.Service
	Cart       cart.Service
	Wishlist   wishlist.Service
	Checkout   checkoutsvc.Service
	Orders     orders.Service
	Settings   settings.Service
	Banners    banners.Service
	Contact    contact.Service
	Reports    reports.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(),
		middleware.RequestID(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.GuestSession(logg))
		r.Post("/register", controllers.AuthRegister(deps.Auth, deps.Cart, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, deps.Cart, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.Post("/guest-session", controllers.GuestSessionMint(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Get("/me", controllers.AuthProfile(deps.Auth, logg))
			r.Put("/me", controllers.AuthUpdateProfile(deps.Auth, logg))
			r.Post("/change-password", controllers.AuthChangePassword(deps.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog and site chrome.
		r.Get("/products", controllers.ProductList(deps.Products, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(deps.Products, logg))
		r.Get("/products/{slug}/related", controllers.ProductRelated(deps.Products, logg))
		r.Get("/categories", controllers.CategoryList(deps.Categories, logg))
		r.Get("/banners", controllers.BannerList(deps.Banners, logg))
		r.Get("/settings", controllers.SiteSettings(deps.Settings, logg))
		r.Get("/facebook-pixel", controllers.FacebookPixel(deps.Settings, logg))
		r.Post("/contact", controllers.ContactSubmit(deps.Contact, logg))

		// Cart, checkout, and order history serve both customers and
		// guests carrying a session token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.GuestSession(logg))
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(deps.Cart, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
				r.Put("/sidebar", controllers.CartSetSidebar(deps.Cart, logg))
			})

			r.Post("/checkout", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Get("/checkout/quote", controllers.CheckoutQuote(deps.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			})
		})

		// Wishlist requires a logged-in customer.
		r.Route("/wishlist", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/toggle", controllers.WishlistToggle(deps.Wishlist, logg))
			r.Get("/contains/{productId}", controllers.WishlistContains(deps.Wishlist, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AdminAuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Use(middleware.RequireRole("admin", logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(deps.Products, logg))
				r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
				r.Get("/{productId}", controllers.AdminProductGet(deps.Products, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.Products, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminCategoryList(deps.Categories, logg))
				r.Post("/", controllers.AdminCategoryCreate(deps.Categories, logg))
				r.Get("/{categoryId}", controllers.AdminCategoryGet(deps.Categories, logg))
				r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(deps.Categories, logg))
				r.Delete("/{categoryId}", controllers.AdminCategoryDelete(deps.Categories, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.AdminOrderGet(deps.Orders, logg))
				r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
				r.Post("/{orderId}/courier", controllers.AdminOrderBookCourier(deps.Orders, logg))
			r.Get("/{orderId}/courier", controllers.AdminOrderCourierStatus(deps.Orders, logg))
			})

			r.Route("/banners", func(r chi.Router) {
				r.Get("/", controllers.AdminBannerList(deps.Banners, logg))
				r.Post("/", controllers.AdminBannerCreate(deps.Banners, logg))
				r.Patch("/{bannerId}", controllers.AdminBannerUpdate(deps.Banners, logg))
				r.Delete("/{bannerId}", controllers.AdminBannerDelete(deps.Banners, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUserList(deps.Users, logg))
				r.Post("/", controllers.AdminUserCreate(deps.Users, logg))
				r.Get("/{userId}", controllers.AdminUserGet(deps.Users, logg))
				r.Patch("/{userId}", controllers.AdminUserUpdate(deps.Users, logg))
				r.Delete("/{userId}", controllers.AdminUserDelete(deps.Users, logg))
			})

			r.Route("/contact-messages", func(r chi.Router) {
				r.Get("/", controllers.AdminContactList(deps.Contact, logg))
				r.Post("/{messageId}/read", controllers.AdminContactMarkRead(deps.Contact, logg))
				r.Delete("/{messageId}", controllers.AdminContactDelete(deps.Contact, logg))
			})

			r.Get("/settings", controllers.AdminSettingsGet(deps.Settings, logg))
			r.Put("/settings", controllers.AdminSettingsUpdate(deps.Settings, logg))

			r.Get("/analytics/overview", controllers.AdminAnalyticsOverview(deps.Reports, logg))
			r.Get("/sales-report", controllers.AdminSalesReport(deps.Reports, logg))
			r.Get("/sales-report/export", controllers.AdminSalesReportExport(deps.Reports, logg))
		})
	})

	return r
}
