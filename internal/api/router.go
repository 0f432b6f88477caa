package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/anu-devcode/deploy-test-sub001/internal/api/handlers"
	"github.com/anu-devcode/deploy-test-sub001/internal/api/middleware"
	"github.com/anu-devcode/deploy-test-sub001/internal/auth"
	"github.com/anu-devcode/deploy-test-sub001/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Customers  *service.CustomerService
	Products   *service.ProductService
	Orders     *service.OrderService
	Deliveries *service.DeliveryService
	Reviews    *service.ReviewService
	Promotions *service.PromotionService
	Automation *service.AutomationService
	Analytics  *service.AnalyticsService
}

// NewRouter builds the HTTP router for the commerce service
func NewRouter(svc Services, maker *auth.Maker, policy *auth.Policy, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	catalog := handlers.NewCatalogHandler(svc.Customers, svc.Products, logger)
	orders := handlers.NewOrderHandler(svc.Orders, logger)
	deliveries := handlers.NewDeliveryHandler(svc.Deliveries, logger)
	reviews := handlers.NewReviewHandler(svc.Reviews, logger)
	promotions := handlers.NewPromotionHandler(svc.Promotions, logger)
	automation := handlers.NewAutomationHandler(svc.Automation, logger)
	analytics := handlers.NewAnalyticsHandler(svc.Analytics, logger)

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(maker))
		r.Use(middleware.Tenant)

		// Storefront endpoints, open to anonymous callers
		r.Get("/products", catalog.ListProducts)
		r.Get("/products/{id}", catalog.GetProduct)
		r.Get("/reviews/product/{id}", reviews.ListForProduct)
		r.Get("/reviews/product/{id}/stats", reviews.Stats)
		r.Post("/promotions/preview", promotions.Preview)

		// Customer endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/customers/me", catalog.RegisterCustomer)
			r.Get("/customers/me", catalog.Me)

			r.Post("/orders", orders.Create)
			r.Get("/orders", orders.ListMine)
			r.Get("/orders/{id}", orders.GetMine)

			r.Post("/reviews", reviews.Create)
			r.Get("/reviews/me", reviews.ListMine)
			r.Patch("/reviews/{id}", reviews.Update)
			r.Delete("/reviews/{id}", reviews.Delete)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireStaff(policy))

			can := func(perm string) func(http.Handler) http.Handler {
				return middleware.RequirePermission(policy, perm)
			}

			r.With(can(auth.PermOrdersRead)).Get("/orders", orders.List)
			r.With(can(auth.PermOrdersRead)).Get("/orders/{id}", orders.Get)
			r.With(can(auth.PermOrdersWrite)).Patch("/orders/{id}/status", orders.UpdateStatus)
			r.With(can(auth.PermOrdersWrite)).Patch("/orders/{id}/payment-status", orders.UpdatePaymentStatus)

			r.With(can(auth.PermDeliveriesWrite)).Post("/deliveries", deliveries.Create)
			r.With(can(auth.PermDeliveriesRead)).Get("/deliveries", deliveries.List)
			r.With(can(auth.PermDeliveriesRead)).Get("/deliveries/{id}", deliveries.Get)
			r.With(can(auth.PermDeliveriesWrite)).Patch("/deliveries/{id}", deliveries.Update)
			r.With(can(auth.PermDeliveriesWrite)).Patch("/deliveries/{id}/status", deliveries.UpdateStatus)

			r.With(can(auth.PermReviewsModerate)).Get("/reviews", reviews.ListAdmin)
			r.With(can(auth.PermReviewsModerate)).Patch("/reviews/{id}/moderate", reviews.Moderate)

			r.With(can(auth.PermPromotionsWrite)).Post("/promotions", promotions.Create)
			r.With(can(auth.PermPromotionsRead)).Get("/promotions", promotions.List)
			r.With(can(auth.PermPromotionsRead)).Get("/promotions/{id}", promotions.Get)
			r.With(can(auth.PermPromotionsWrite)).Put("/promotions/{id}", promotions.Update)
			r.With(can(auth.PermPromotionsWrite)).Delete("/promotions/{id}", promotions.Delete)

			r.With(can(auth.PermAutomationWrite)).Post("/automation-rules", automation.Create)
			r.With(can(auth.PermAutomationWrite)).Get("/automation-rules", automation.List)
			r.With(can(auth.PermAutomationWrite)).Put("/automation-rules/{id}", automation.Update)
			r.With(can(auth.PermAutomationWrite)).Delete("/automation-rules/{id}", automation.Delete)
			r.With(can(auth.PermAutomationWrite)).Get("/notifications", automation.Notifications)

			r.With(can(auth.PermProductsWrite)).Post("/products", catalog.CreateProduct)
			r.With(can(auth.PermProductsWrite)).Patch("/products/{id}", catalog.UpdateProduct)

			r.With(can(auth.PermAnalyticsRead)).Get("/analytics/dashboard", analytics.Dashboard)
			r.With(can(auth.PermAnalyticsRead)).Get("/analytics/sales", analytics.Sales)
			r.With(can(auth.PermAnalyticsRead)).Get("/analytics/sales/export", analytics.ExportSales)
			r.With(can(auth.PermAnalyticsRead)).Get("/analytics/revenue-distribution", analytics.RevenueDistribution)
		})
	})

	return r
}
