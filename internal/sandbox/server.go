// Package sandbox is a local stand-in for the remote cart and payment gateway.
// It serves the same REST contract the storefront's gateway client speaks.
package sandbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/otp"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/repository"
)

const (
	DefaultSMSAck   = "Code de confirmation envoyé par SMS."
	DefaultEmailAck = "Code de confirmation envoyé par email."

	DefaultMaxCodeAttempts = 5
)

type Options struct {
	SMSAck   string
	EmailAck string
	// MaxCodeAttempts is how many wrong codes revoke the pending one. Zero means 5.
	MaxCodeAttempts int
	// Sender delivers confirmation codes. Defaults to logging them.
	Sender otp.Sender
	Logger *slog.Logger
}

type Server struct {
	carts    repository.CartRepository
	orders   repository.OrderRepository
	codes    otp.Store
	sender   otp.Sender
	decoder  *identity.Decoder
	smsAck   string
	emailAck string
	attempts int
	log      *slog.Logger
}

func NewServer(carts repository.CartRepository, orders repository.OrderRepository, codes otp.Store, decoder *identity.Decoder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.SMSAck == "" {
		opts.SMSAck = DefaultSMSAck
	}
	if opts.EmailAck == "" {
		opts.EmailAck = DefaultEmailAck
	}
	if opts.MaxCodeAttempts <= 0 {
		opts.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	if opts.Sender == nil {
		opts.Sender = otp.LogSender{Logger: opts.Logger}
	}
	return &Server{
		carts:    carts,
		orders:   orders,
		codes:    codes,
		sender:   opts.Sender,
		decoder:  decoder,
		smsAck:   opts.SMSAck,
		emailAck: opts.EmailAck,
		attempts: opts.MaxCodeAttempts,
		log:      opts.Logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/user", func(r chi.Router) {
			r.Get("/cart", s.getCart)
			r.Post("/cart/add", s.addItem)
			r.Patch("/cart/update", s.updateQuantity)
			r.Delete("/cart/remove", s.removeItem)
			r.Post("/cart/clear", s.clearCart)
			r.Post("/confirm-purchase", s.confirmPurchase)
			r.Get("/orders", s.listOrders)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/send-code", s.sendCode)
			r.Post("/verify-code", s.verifyCode)
		})
	})

	return otelhttp.NewHandler(r, "sandbox-gateway")
}

type ctxKey string

const userKey ctxKey = "sandbox_user"

// user is the caller named by the bearer credential.
type user struct {
	ID    string
	Email string
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok {
			respondMessage(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		id, err := s.decoder.Decode(token)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		u := user{ID: id.Subject, Email: id.Email}
		if u.ID == "" {
			u.ID = id.Email
		}
		if u.ID == "" {
			respondMessage(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

func userFrom(ctx context.Context) user {
	u, _ := ctx.Value(userKey).(user)
	return u
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, messageResponse{Message: msg})
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, step string, err error) {
	s.log.ErrorContext(r.Context(), "sandbox request failed", "step", step,
		"request_id", middleware.GetReqID(r.Context()), "error", err)
	respondMessage(w, http.StatusInternalServerError, "Internal server error.")
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}
