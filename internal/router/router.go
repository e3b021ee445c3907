package router

import (
	"encoding/json"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	User    *handler.UserHandler
	Product *handler.ProductHandler
	Admin   *handler.AdminHandler
	Cart    *handler.CartHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, authn auth.Authenticator, corsOrigins []string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(corsOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondError(w, r, model.NewDomainError(model.KindNotFound, model.ErrCodeRouteNotFound, "Not found"), logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:         model.ErrCodeMethodNotAllowed,
			Message:       "Method not allowed",
			CorrelationID: chimw.GetReqID(r.Context()),
		})
	})

	// Health check endpoint (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	authenticate := middleware.Authenticate(authn, logger)
	adminOnly := middleware.RequireRole(model.RoleAdmin, logger)

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.User.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", h.User.Me)
			r.Patch("/add/balance", h.User.Deposit)
			r.Patch("/change/password", h.User.ChangePassword)
			r.Patch("/change/email", h.User.ChangeEmail)
			r.Delete("/delete", h.User.Delete)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/all", h.Product.List)

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Post("/create", h.Product.Create)
			r.Get("/get/{id}", h.Product.GetByID)
			r.Patch("/refresh/{id}", h.Product.Update)
			r.Delete("/delete/{id}", h.Product.Delete)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate, adminOnly)
		r.Get("/get/all/users", h.Admin.ListUsers)
		r.Get("/get/user/{id}", h.Admin.GetUser)
		r.Patch("/update/balance/{id}", h.Admin.SetBalance)
		r.Delete("/delete/user/{id}", h.Admin.DeleteUser)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/cart/add", h.Cart.AddItem)
		r.Get("/get", h.Cart.GetCart)
		r.Patch("/cart/update/{itemID}", h.Cart.UpdateItem)
		r.Delete("/item/cart/delete/{itemID}", h.Cart.DeleteItem)
		r.Post("/checkout", h.Cart.Checkout)
		r.Get("/history", h.Cart.History)
	})

	return r
}
