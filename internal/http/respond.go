package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/cart"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/checkout"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details string   `json:"details,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP responses.
func handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *checkout.ValidationError
		verifyErr     *checkout.VerificationError
		dispatchErr   *checkout.DispatchError
		cartErr       *cart.Error
	)

	switch {
	case errors.Is(err, identity.ErrNoCredential),
		errors.Is(err, identity.ErrMalformedCredential),
		errors.Is(err, identity.ErrExpiredCredential):
		respondError(w, http.StatusUnauthorized, "login_required", "Please sign in to continue.")
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   validationErr.Error(),
			Code:    "validation_failed",
			Missing: validationErr.Missing,
		})
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidContactMethod),
		errors.Is(err, checkout.ErrPhoneNotApplicable),
		errors.Is(err, checkout.ErrCodeNotSent):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, checkout.ErrRequestInFlight):
		respondError(w, http.StatusConflict, "request_in_flight", err.Error())
	case errors.Is(err, checkout.ErrCheckoutCompleted):
		respondError(w, http.StatusConflict, "checkout_completed", err.Error())
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &verifyErr):
		respondJSON(w, http.StatusPaymentRequired, ErrorResponse{
			Error:   verifyErr.Message,
			Code:    "payment_failed",
			Details: string(verifyErr.Category),
		})
	case errors.As(err, &dispatchErr):
		respondError(w, http.StatusBadGateway, string(dispatchErr.Kind()), dispatchErr.Message)
	case errors.As(err, &cartErr):
		respondError(w, http.StatusBadGateway, string(cartErr.Kind), cartErr.Message)
	default:
		slog.Error("unhandled error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
