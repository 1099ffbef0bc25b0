package sandbox

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/otp"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/repository"
)

const (
	msgPaymentConfirmed  = "Paiement confirmé."
	msgPurchaseConfirmed = "Achat confirmé."
	msgInvalidContact    = "Invalid contact method."
	msgCodeExpired       = "Code expiré ou non demandé."
	msgCodeInvalid       = "Code de confirmation invalide."
	msgCodeRevoked       = "Trop de tentatives. Demandez un nouveau code."
	msgPaymentIncomplete = "Informations de paiement incomplètes."
	msgEmptyCart         = "Le panier est vide."
)

// destination resolves where a code goes for the requested channel.
func destination(req gateway.SendCodeRequest) (string, bool) {
	switch req.ContactMethod {
	case "sms":
		phone := strings.TrimSpace(req.PhoneNumber)
		return phone, phone != ""
	case "email":
		email := strings.TrimSpace(req.Email)
		return email, email != ""
	}
	return "", false
}

func (s *Server) sendCode(w http.ResponseWriter, r *http.Request) {
	var req gateway.SendCodeRequest
	if !decode(w, r, &req) {
		return
	}
	to, ok := destination(req)
	if !ok {
		respondMessage(w, http.StatusBadRequest, msgInvalidContact)
		return
	}

	code, err := otp.Generate()
	if err != nil {
		s.internalError(w, r, "send_code", err)
		return
	}
	userID := userFrom(r.Context()).ID
	if err := s.codes.Put(r.Context(), userID, otp.Hash(code)); err != nil {
		s.internalError(w, r, "send_code", err)
		return
	}
	if err := s.sender.Send(r.Context(), req.ContactMethod, to, code); err != nil {
		_ = s.codes.Delete(r.Context(), userID)
		s.internalError(w, r, "send_code", err)
		return
	}

	if req.ContactMethod == "sms" {
		respondMessage(w, http.StatusOK, s.smsAck)
		return
	}
	respondMessage(w, http.StatusOK, s.emailAck)
}

func paymentComplete(req gateway.VerifyCodeRequest) bool {
	d := req.PaymentDetails
	return len(req.Cart) > 0 && req.TotalAmount > 0 &&
		d.CardNumber != "" && d.CVC != "" && d.ExpirationDate != ""
}

func (s *Server) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req gateway.VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if !paymentComplete(req) {
		respondMessage(w, http.StatusBadRequest, msgPaymentIncomplete)
		return
	}

	ctx := r.Context()
	userID := userFrom(ctx).ID
	stored, err := s.codes.Get(ctx, userID)
	if errors.Is(err, otp.ErrCodeNotFound) {
		respondMessage(w, http.StatusBadRequest, msgCodeExpired)
		return
	}
	if err != nil {
		s.internalError(w, r, "verify_code", err)
		return
	}
	if !otp.Equal(strings.TrimSpace(req.Code), stored) {
		s.wrongCode(w, r, userID)
		return
	}
	if err := s.codes.Delete(ctx, userID); err != nil {
		s.internalError(w, r, "verify_code", err)
		return
	}

	if !s.recordOrder(w, r, &repository.Order{
		ID:            uuid.New(),
		UserID:        userID,
		ContactMethod: req.ContactMethod,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		Items:         req.Cart,
	}) {
		return
	}
	respondMessage(w, http.StatusOK, msgPaymentConfirmed)
}

// wrongCode counts a miss and revokes the code once the limit is reached.
func (s *Server) wrongCode(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	misses, err := s.codes.Fail(ctx, userID)
	if errors.Is(err, otp.ErrCodeNotFound) {
		respondMessage(w, http.StatusBadRequest, msgCodeExpired)
		return
	}
	if err != nil {
		s.internalError(w, r, "verify_code", err)
		return
	}
	if misses < s.attempts {
		respondMessage(w, http.StatusBadRequest, msgCodeInvalid)
		return
	}
	if err := s.codes.Delete(ctx, userID); err != nil {
		s.internalError(w, r, "verify_code", err)
		return
	}
	s.log.WarnContext(ctx, "confirmation code revoked", "user_id", userID, "misses", misses)
	respondMessage(w, http.StatusBadRequest, msgCodeRevoked)
}

type confirmPurchaseRequest struct {
	Cart []gateway.PurchaseItem `json:"cart"`
}

// confirmPurchase is the older finalize endpoint: it records the order
// without a code or payment details.
func (s *Server) confirmPurchase(w http.ResponseWriter, r *http.Request) {
	var req confirmPurchaseRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Cart) == 0 {
		respondMessage(w, http.StatusBadRequest, msgEmptyCart)
		return
	}
	var total float64
	for _, item := range req.Cart {
		total += item.Total
	}

	if !s.recordOrder(w, r, &repository.Order{
		ID:          uuid.New(),
		UserID:      userFrom(r.Context()).ID,
		TotalAmount: total,
		Items:       req.Cart,
	}) {
		return
	}
	respondMessage(w, http.StatusOK, msgPurchaseConfirmed)
}

// recordOrder stores the order. The cart is left for the client to clear.
func (s *Server) recordOrder(w http.ResponseWriter, r *http.Request, order *repository.Order) bool {
	start := time.Now()
	if err := s.orders.CreateOrder(r.Context(), order); err != nil {
		s.internalError(w, r, "record_order", err)
		return false
	}
	s.log.InfoContext(r.Context(), "order recorded", "step", "record_order", "order_id", order.ID,
		"user_id", order.UserID, "duration_ms", time.Since(start).Milliseconds())
	return true
}

type orderResponse struct {
	ID            uuid.UUID              `json:"id"`
	ContactMethod string                 `json:"contactMethod,omitempty"`
	TotalAmount   float64                `json:"totalAmount"`
	PaymentMethod string                 `json:"paymentMethod,omitempty"`
	PaymentStatus string                 `json:"paymentStatus,omitempty"`
	Cart          []gateway.PurchaseItem `json:"cart"`
	CreatedAt     time.Time              `json:"createdAt"`
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ListOrdersByUserID(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.internalError(w, r, "list_orders", err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResponse{
			ID:            o.ID,
			ContactMethod: o.ContactMethod,
			TotalAmount:   o.TotalAmount,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
			Cart:          o.Items,
			CreatedAt:     o.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": out})
}
