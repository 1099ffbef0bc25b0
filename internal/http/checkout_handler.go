package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/checkout"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

type CheckoutHandler struct {
	workspaces *Workspaces
	// notifyWait bounds how long Confirm waits for the confirmation email before answering.
	notifyWait time.Duration
}

func NewCheckoutHandler(workspaces *Workspaces, notifyWait time.Duration) *CheckoutHandler {
	return &CheckoutHandler{workspaces: workspaces, notifyWait: notifyWait}
}

type ContactRequestDTO struct {
	Method      string `json:"method"`
	PhoneNumber string `json:"phone_number"`
}

type CodeRequestDTO struct {
	Code string `json:"code"`
}

type PaymentRequestDTO struct {
	CardNumber     string `json:"card_number"`
	CVC            string `json:"cvc"`
	ExpirationDate string `json:"expiration_date"`
}

func (h *CheckoutHandler) controller(r *http.Request) *checkout.Controller {
	return h.workspaces.Get(r.Context(), getClientID(r.Context())).Checkout
}

func checkoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "checkout_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_checkout_id", "checkout_id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func respondView(w http.ResponseWriter, status int, v checkout.View, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, status, v)
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	v, err := h.controller(r).Begin(r.Context())
	respondView(w, http.StatusCreated, v, err)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	v, err := h.controller(r).View(id)
	respondView(w, http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	var req ContactRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	method, valid := domain.ParseContactMethod(req.Method)
	if !valid {
		handleError(w, checkout.ErrInvalidContactMethod)
		return
	}

	c := h.controller(r)
	v, err := c.SelectContactMethod(r.Context(), id, method)
	if err == nil && method == domain.ContactMethodSMS && req.PhoneNumber != "" {
		v, err = c.SetPhoneNumber(r.Context(), id, req.PhoneNumber)
	}
	respondView(w, http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetCode(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	var req CodeRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.controller(r).SetCode(r.Context(), id, req.Code)
	respondView(w, http.StatusOK, v, err)
}

func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	var req PaymentRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := h.controller(r).SetPaymentDetails(r.Context(), id, domain.PaymentDetails{
		CardNumber:     req.CardNumber,
		CVC:            req.CVC,
		ExpirationDate: req.ExpirationDate,
	})
	respondView(w, http.StatusOK, v, err)
}

func (h *CheckoutHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	v, err := h.controller(r).SendCode(r.Context(), id)
	respondView(w, http.StatusOK, v, err)
}

// Confirm submits the payment and, on success, waits briefly for the
// confirmation email so the answer carries the final message.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	c := h.controller(r)
	v, err := c.ConfirmPayment(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	if h.notifyWait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), h.notifyWait)
		defer cancel()
		if waited, err := c.WaitNotification(ctx, id); err == nil {
			v = waited
		}
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	id, ok := checkoutID(w, r)
	if !ok {
		return
	}
	if err := h.controller(r).Abandon(id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
