package router

import (
	"net/http"

	"fashion-shop/internal/handler"
	"fashion-shop/internal/middleware"
	"fashion-shop/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Discount *handler.DiscountHandler
	Cart     *handler.CartHandler
	Delivery *handler.DeliveryHandler
}

// New creates the HTTP router with all routes and middleware configured.
func New(h Handlers, jwtSecret string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/product", func(r chi.Router) {
		r.Get("/", h.Product.GetAll)
		r.Get("/{id}", h.Product.GetByID)
	})

	// Called server-to-server by the payment gateway.
	r.Post("/order/{id}/payment-notification", h.Order.PaymentNotification)

	staffOnly := middleware.RequireRole(model.RoleStaff, model.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(jwtSecret, logger))

		r.Route("/order", func(r chi.Router) {
			r.With(middleware.RequireRole(model.RoleCustomer)).Post("/", h.Order.Place)
			r.With(staffOnly).Get("/", h.Order.List)
			r.Get("/ordered/{userId}", h.Order.ListByUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Order.GetByID)
				r.Patch("/cancel", h.Order.Cancel)
				r.Get("/payment", h.Order.GetPayURL)
				r.With(middleware.RequireRole(model.RoleAdmin)).Patch("/payment", h.Order.MarkPaid)
				r.With(middleware.RequireRole(model.RoleCustomer)).Patch("/received", h.Order.ConfirmReceived)

				r.Group(func(r chi.Router) {
					r.Use(staffOnly)
					r.Patch("/confirm", h.Order.Confirm)
					r.Patch("/delivery", h.Order.ConfirmDelivery)
					r.Patch("/delivered", h.Order.ConfirmDelivered)
					r.Get("/delivery/print", h.Order.PrintLabel)
				})
			})
		})

		r.Route("/discount-code", func(r chi.Router) {
			r.Post("/calculation", h.Discount.Preview)

			r.Group(func(r chi.Router) {
				r.Use(staffOnly)
				r.Get("/", h.Discount.List)
				r.Post("/", h.Discount.Create)
				r.Get("/{code}", h.Discount.GetByCode)
				r.Put("/{id}", h.Discount.Update)
				r.Delete("/{id}", h.Discount.Disable)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleCustomer))
			r.Get("/", h.Cart.Get)
			r.Post("/", h.Cart.Add)
			r.Delete("/{variantId}", h.Cart.Remove)
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Get("/province", h.Delivery.Provinces)
			r.Get("/district/{provinceId}", h.Delivery.Districts)
			r.Get("/ward/{districtId}", h.Delivery.Wards)
			r.Post("/fee", h.Delivery.Fee)
		})
	})

	return r
}
