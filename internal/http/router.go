package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
)

type RouterConfig struct {
	Workspaces     *Workspaces
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	NotifyWait     time.Duration
}

// NewRouter builds the storefront BFF API.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	sessionHandler := NewSessionHandler(cfg.Workspaces, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Workspaces)
	checkoutHandler := NewCheckoutHandler(cfg.Workspaces, cfg.NotifyWait)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(requestLogger(cfg.Logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ClientIDMiddleware)

		r.Route("/session", func(r chi.Router) {
			r.Use(cfg.Metrics.Middleware("session"))
			r.Get("/", sessionHandler.Get)
			r.Post("/", sessionHandler.Login)
			r.Delete("/", sessionHandler.Logout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(cfg.Metrics.Middleware("cart"))
			r.Get("/", cartHandler.GetCart)
			r.Post("/clear", cartHandler.ClearCart)
			r.Patch("/items/{announcement_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{announcement_id}", cartHandler.RemoveItem)
			r.Post("/items/{announcement_id}/increment", cartHandler.Increment)
			r.Post("/items/{announcement_id}/decrement", cartHandler.Decrement)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(cfg.Metrics.Middleware("checkout"))
			r.Post("/", checkoutHandler.Begin)
			r.Route("/{checkout_id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Delete("/", checkoutHandler.Abandon)
				r.Put("/contact", checkoutHandler.SetContact)
				r.Put("/code", checkoutHandler.SetCode)
				r.Put("/payment", checkoutHandler.SetPayment)
				r.Post("/send-code", checkoutHandler.SendCode)
				r.Post("/confirm", checkoutHandler.Confirm)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

// requestLogger logs one line per request in the slog format used across the service.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", getRequestID(r.Context()),
			)
		})
	}
}
