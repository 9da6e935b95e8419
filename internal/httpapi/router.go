package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/j1vetr/EscapeTable/internal/auth"
	"github.com/j1vetr/EscapeTable/internal/metrics"
)

// Handlers bundles the per-domain handlers the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Delivery *DeliveryHandler
	Orders   *OrderHandler
	Settings *SettingsHandler
}

func NewRouter(h Handlers, sessions *auth.Manager, srv *metrics.ServerMetrics, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(CORS(corsOrigins))
	if srv != nil {
		r.Use(srv.Middleware)
	}

	r.Get("/api/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/api/register", h.Auth.Register)
	r.Post("/api/login", h.Auth.Login)
	r.Post("/api/logout", h.Auth.Logout)
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireUser)
		r.Get("/api/user", h.Auth.CurrentUser)
		r.Patch("/api/user", h.Auth.UpdateProfile)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.Catalog.ListCategories)
		r.Get("/{id}", h.Catalog.GetCategory)
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireStaff)
			r.Post("/", h.Catalog.CreateCategory)
			r.Patch("/{id}", h.Catalog.UpdateCategory)
			r.Delete("/{id}", h.Catalog.DeleteCategory)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.Catalog.ListProducts)
		r.Get("/featured", h.Catalog.FeaturedProducts)
		r.Get("/search", h.Catalog.SearchProducts)
		r.Get("/{id}", h.Catalog.GetProduct)
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireStaff)
			r.Post("/", h.Catalog.CreateProduct)
			r.Patch("/{id}", h.Catalog.UpdateProduct)
			r.Delete("/{id}", h.Catalog.DeleteProduct)
			r.Post("/{id}/stock", h.Catalog.AdjustStock)
		})
	})

	r.Route("/api/delivery-regions", func(r chi.Router) {
		r.Get("/", h.Delivery.ListRegions)
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireStaff)
			r.Post("/", h.Delivery.CreateRegion)
			r.Patch("/{id}", h.Delivery.UpdateRegion)
			r.Delete("/{id}", h.Delivery.DeleteRegion)
		})
	})

	r.Route("/api/camping-locations", func(r chi.Router) {
		r.Get("/", h.Delivery.ListLocations)
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireStaff)
			r.Post("/", h.Delivery.CreateLocation)
			r.Patch("/{id}", h.Delivery.UpdateLocation)
			r.Delete("/{id}", h.Delivery.DeleteLocation)
		})
	})

	r.Route("/api/delivery-slots", func(r chi.Router) {
		r.Get("/", h.Delivery.ListSlots)
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireStaff)
			r.Post("/", h.Delivery.CreateSlot)
			r.Patch("/{id}", h.Delivery.UpdateSlot)
			r.Delete("/{id}", h.Delivery.DeleteSlot)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireUser)
			r.Post("/", h.Orders.CreateOrder)
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{id}", h.Orders.GetOrder)
		})
		r.With(sessions.RequireStaff).Patch("/{id}/status", h.Orders.UpdateStatus)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(sessions.RequireStaff)
		r.Get("/orders", h.Orders.ListAllOrders)
		r.Get("/dashboard-stats", h.Orders.DashboardStats)
	})

	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/{key}", h.Settings.Get)
		r.With(sessions.RequireStaff).Put("/{key}", h.Settings.Set)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "escapetable",
	})
}
