package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefronthq/storefront-backend/api/controllers"
	webhookcontrollers "github.com/storefronthq/storefront-backend/api/controllers/webhooks"
	"github.com/storefronthq/storefront-backend/api/middleware"
	"github.com/storefronthq/storefront-backend/internal/cart"
	checkoutsvc "github.com/storefronthq/storefront-backend/internal/checkout"
	"github.com/storefronthq/storefront-backend/internal/orders"
	"github.com/storefronthq/storefront-backend/internal/payments"
	"github.com/storefronthq/storefront-backend/internal/products"
	"github.com/storefronthq/storefront-backend/internal/users"
	"github.com/storefronthq/storefront-backend/internal/vendors"
	stripewebhook "github.com/storefronthq/storefront-backend/internal/webhooks/stripe"
	"github.com/storefronthq/storefront-backend/internal/wishlist"
	"github.com/storefronthq/storefront-backend/pkg/auth/session"
	"github.com/storefronthq/storefront-backend/pkg/config"
	"github.com/storefronthq/storefront-backend/pkg/db"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	"github.com/storefronthq/storefront-backend/pkg/logger"
	"github.com/storefronthq/storefront-backend/pkg/metrics"
	"github.com/storefronthq/storefront-backend/pkg/redis"
	"github.com/storefronthq/storefront-backend/pkg/stripe"
)

// Params carries everything the router wires together.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics

	UsersService    users.Service
	ProductsService products.Service
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	PaymentsService payments.Service
	OrdersService   orders.Service
	VendorsService  vendors.Service
	WishlistService wishlist.Service

	StripeClient       *stripe.Client
	StripeWebhookSvc   *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
		middleware.Logging(logg),
	)
	if p.HTTPMetrics != nil {
		r.Use(middleware.Metrics(p.HTTPMetrics))
		r.Get("/metrics", p.HTTPMetrics.Handler().ServeHTTP)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhookSvc, p.StripeClient, p.StripeWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(p.UsersService, logg))
		r.Post("/login", controllers.Login(p.UsersService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(p.ProductsService, logg))
		r.Get("/{productID}", controllers.GetProduct(p.ProductsService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Route("/v1", func(r chi.Router) {
			r.Post("/auth/logout", controllers.Logout(p.UsersService, logg))
			r.Get("/auth/me", controllers.Me(p.UsersService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(p.CartService, logg))
				r.Post("/items", controllers.AddCartItem(p.CartService, logg))
				r.Patch("/items/{productID}", controllers.UpdateCartItem(p.CartService, logg))
				r.Delete("/items/{productID}", controllers.RemoveCartItem(p.CartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(p.CheckoutService, logg))
			r.Post("/payments/intent", controllers.CreatePaymentIntent(p.PaymentsService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(p.OrdersService, logg))
				r.Get("/{orderID}", controllers.GetMyOrder(p.OrdersService, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.ListWishlist(p.WishlistService, logg))
				r.Post("/", controllers.AddWishlistItem(p.WishlistService, logg))
				r.Delete("/{productID}", controllers.RemoveWishlistItem(p.WishlistService, logg))
			})

			r.Route("/vendors", func(r chi.Router) {
				r.Post("/apply", controllers.ApplyVendor(p.VendorsService, logg))
				r.Get("/me", controllers.MyVendorApplication(p.VendorsService, logg))
			})
		})

		r.Route("/v1/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleVendor, enums.RoleManager, enums.RoleAdmin))
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListMyProducts(p.ProductsService, logg))
				r.Post("/", controllers.CreateProduct(p.ProductsService, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(p.ProductsService, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(p.ProductsService, logg))
			})
			r.Get("/orders", controllers.ListVendorOrders(p.OrdersService, logg))
		})

		r.Route("/manager/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleManager, enums.RoleAdmin))
			r.Route("/vendors", func(r chi.Router) {
				r.Get("/pending", controllers.ListPendingVendors(p.VendorsService, logg))
				r.Post("/{profileID}/decision", controllers.DecideVendor(p.VendorsService, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(p.OrdersService, logg))
				r.Patch("/{orderID}/status", controllers.AdminUpdateOrderStatus(p.OrdersService, logg))
			})
		})
	})

	return r
}
