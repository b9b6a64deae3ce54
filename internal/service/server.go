package service

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"food_store/internal/app"
	"food_store/internal/pkg/auth"
	"food_store/internal/pkg/logger"
)

// Service encapsulates the HTTP server configuration, including the application's business logic,
// HTTP handlers, the server's run address, and a logger for event and error logging.
type Service struct {
	handlers   *handlers
	app        *app.App
	runAddress string
	gatherer   prometheus.Gatherer
	log        *logger.Logger
}

// NewService creates and initializes a new Service instance.
// Metrics are served from gatherer; nil selects the default registry.
func NewService(app *app.App, runAddress string, gatherer prometheus.Gatherer, l *logger.Logger) *Service {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	handlers := newHandlers(app, l)
	return &Service{handlers: handlers, app: app, runAddress: runAddress, gatherer: gatherer, log: l}
}

// NewRouter sets up and returns a new chi.Router instance with the necessary middleware and routes.
// It applies logging middleware globally and the admin guard to the admin console routes.
func (service *Service) NewRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(service.log.WithLogging())

	router.Get("/livez", service.handlers.livezHandler)
	router.Handle("/metrics", promhttp.HandlerFor(service.gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/session", func(r chi.Router) {
		r.Get("/", service.handlers.sessionHandler)
		r.Post("/register", service.handlers.registerHandler)
		r.Post("/login", service.handlers.loginHandler)
		r.Post("/verify", service.handlers.verifyHandler)
		r.Post("/admin-login", service.handlers.adminLoginHandler)
		r.Post("/logout", service.handlers.logoutHandler)
	})
	router.Post("/api/password-strength", service.handlers.passwordStrengthHandler)

	router.Get("/api/products", service.handlers.listProductsHandler)
	router.Get("/api/products/{id}", service.handlers.getProductHandler)
	router.Post("/api/products/{id}/rate", service.handlers.rateProductHandler)
	router.Get("/api/categories", service.handlers.listCategoriesHandler)
	router.Get("/api/categories/{id}", service.handlers.getCategoryHandler)

	router.Route("/api/cart", func(r chi.Router) {
		r.Get("/", service.handlers.cartHandler)
		r.Delete("/", service.handlers.clearCartHandler)
		r.Post("/items", service.handlers.addCartItemHandler)
		r.Put("/items/{id}", service.handlers.setCartQuantityHandler)
		r.Delete("/items/{id}", service.handlers.removeCartItemHandler)
		r.Post("/toggle", service.handlers.toggleCartHandler)
		r.Post("/open", service.handlers.openCartHandler)
		r.Post("/close", service.handlers.closeCartHandler)
		r.Post("/checkout", service.handlers.checkoutHandler)
	})

	router.Route("/api/admin/products", func(r chi.Router) {
		r.Use(auth.RequireAdmin(service.app.Session))
		r.Get("/", service.handlers.adminListProductsHandler)
		r.Post("/", service.handlers.adminCreateProductHandler)
		r.Get("/{id}", service.handlers.adminGetProductHandler)
		r.Put("/{id}", service.handlers.adminUpdateProductHandler)
		r.Delete("/{id}", service.handlers.adminDeleteProductHandler)
	})

	router.Get("/api/chat", service.handlers.chatHandler)
	router.Post("/api/chat", service.handlers.sendChatHandler)
	router.Post("/api/feedback", service.handlers.feedbackHandler)

	return router
}
