package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

// Labels reported by ValidationError, in the order they are checked.
const (
	fieldCode           = "Confirmation code"
	fieldContactMethod  = "Contact method"
	fieldDestination    = "Phone number or email"
	fieldCartItems      = "Cart items"
	fieldTotalAmount    = "Total amount"
	fieldPaymentMethod  = "Payment method"
	fieldPaymentStatus  = "Payment status"
	fieldCardNumber     = "Card number"
	fieldCVC            = "CVC"
	fieldExpirationDate = "Expiration date"
)

const msgPaymentPending = "Payment successful."

// ConfirmPayment verifies the code and submits the payment. Nothing reaches the
// gateway unless every required input is present. On success the cart is
// cleared once and the confirmation email is sent in the background.
func (c *Controller) ConfirmPayment(ctx context.Context, id uuid.UUID) (View, error) {
	f, err := c.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := f.acquire(); err != nil {
		return c.viewOf(f), err
	}
	defer f.release()

	token, err := c.identity.Credential()
	if err != nil {
		return c.fail(f, fmt.Errorf("checkout confirm: %w", err))
	}

	f.mu.Lock()
	req, err := c.prepareVerify(f)
	if err != nil {
		f.mu.Unlock()
		return c.fail(f, err)
	}
	c.transition(ctx, f, domain.CheckoutStatusVerifying)
	f.mu.Unlock()

	start := time.Now()
	_, err = c.gw.VerifyCode(ctx, token, req)
	if err != nil {
		verifyErr := newVerificationError(err)
		c.log.ErrorContext(ctx, "payment verification failed", "step", "verify_code", "checkout_id", id,
			"category", verifyErr.Category, "error", err, "duration_ms", time.Since(start).Milliseconds())

		f.mu.Lock()
		defer f.mu.Unlock()
		c.transition(ctx, f, domain.CheckoutStatusFailed)
		f.lastErr = verifyErr
		f.message = verifyErr.Message
		return f.view(), verifyErr
	}

	f.mu.Lock()
	c.transition(ctx, f, domain.CheckoutStatusCompleted)
	f.lastErr = nil
	f.message = msgPaymentPending
	receipt := notify.Receipt{
		CheckoutID:    f.session.ID,
		Email:         f.session.Email,
		Items:         f.session.Cart.Items(),
		Total:         f.session.Cart.Total(),
		PaymentMethod: PaymentMethod,
		PaymentStatus: PaymentStatus,
		CompletedAt:   f.session.UpdatedAt,
	}
	f.mu.Unlock()
	c.log.InfoContext(ctx, "payment verified", "step", "verify_code", "checkout_id", id, "duration_ms", time.Since(start).Milliseconds())

	c.complete(ctx, f, receipt)
	return c.viewOf(f), nil
}

// prepareVerify runs the guard and builds the payload; callers hold f.mu.
func (c *Controller) prepareVerify(f *flow) (gateway.VerifyCodeRequest, error) {
	s := f.session
	switch s.Status {
	case domain.CheckoutStatusCompleted:
		return gateway.VerifyCodeRequest{}, ErrCheckoutCompleted
	case domain.CheckoutStatusVerifying:
		return gateway.VerifyCodeRequest{}, ErrRequestInFlight
	}

	if missing := missingFields(s); len(missing) > 0 {
		return gateway.VerifyCodeRequest{}, &ValidationError{Missing: missing}
	}
	if !domain.CanTransitionTo(s.Status, domain.CheckoutStatusVerifying) {
		return gateway.VerifyCodeRequest{}, ErrCodeNotSent
	}

	items := s.Cart.Items()
	lines := make([]gateway.PurchaseItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, gateway.PurchaseItem{
			AnnouncementID: item.AnnouncementID,
			Quantity:       item.Quantity,
			Total:          item.Total.InexactFloat64(),
		})
	}
	return gateway.VerifyCodeRequest{
		Code:          s.Code,
		ContactMethod: string(s.Contact.Method),
		PhoneNumber:   s.PhoneNumber(),
		Email:         s.EmailAddress(),
		Cart:          lines,
		TotalAmount:   s.Cart.Total().InexactFloat64(),
		PaymentMethod: PaymentMethod,
		PaymentStatus: PaymentStatus,
		PaymentDetails: gateway.PaymentDetails{
			CardNumber:     s.Payment.CardNumber,
			CVC:            s.Payment.CVC,
			ExpirationDate: s.Payment.ExpirationDate,
		},
		Timestamp: c.now().UTC().Format(time.RFC3339),
	}, nil
}

func missingFields(s *domain.CheckoutSession) []string {
	var missing []string
	if s.Code == "" {
		missing = append(missing, fieldCode)
	}
	if !s.Contact.Method.Valid() {
		missing = append(missing, fieldContactMethod)
	}
	if s.PhoneNumber() == "" && s.EmailAddress() == "" {
		missing = append(missing, fieldDestination)
	}
	if s.Cart.IsEmpty() {
		missing = append(missing, fieldCartItems)
	}
	if !s.Cart.Total().IsPositive() {
		missing = append(missing, fieldTotalAmount)
	}
	if PaymentMethod == "" {
		missing = append(missing, fieldPaymentMethod)
	}
	if PaymentStatus == "" {
		missing = append(missing, fieldPaymentStatus)
	}
	if s.Payment.CardNumber == "" {
		missing = append(missing, fieldCardNumber)
	}
	if s.Payment.CVC == "" {
		missing = append(missing, fieldCVC)
	}
	if s.Payment.ExpirationDate == "" {
		missing = append(missing, fieldExpirationDate)
	}
	return missing
}

// complete runs the post-purchase hooks: clear the cart, then notify.
func (c *Controller) complete(ctx context.Context, f *flow, receipt notify.Receipt) {
	cleared := true
	if c.cart != nil {
		if err := c.cart.Clear(ctx); err != nil {
			cleared = false
			c.log.ErrorContext(ctx, "cart not cleared after purchase", "step", "complete", "checkout_id", receipt.CheckoutID, "error", err)
		}
	}

	f.mu.Lock()
	f.cartCleared = cleared
	f.notified = make(chan struct{})
	notified := f.notified
	if c.notifier == nil {
		f.notification = NotificationNone
		close(notified)
		f.mu.Unlock()
		return
	}
	f.notification = NotificationPending
	f.mu.Unlock()

	results := c.notifier.Dispatch(ctx, receipt)
	go func() {
		defer close(notified)
		res, ok := <-results
		f.mu.Lock()
		defer f.mu.Unlock()
		if !ok || !res.Sent() {
			f.notification = NotificationFailed
			f.message = notify.MsgEmailFailed
			if ok {
				f.lastErr = res.Err
			}
			return
		}
		f.notification = NotificationSent
		f.message = res.Message
	}()
}

// WaitNotification blocks until the confirmation email of a completed session
// has been attempted, or ctx is done, and returns the session view either way.
func (c *Controller) WaitNotification(ctx context.Context, id uuid.UUID) (View, error) {
	f, err := c.lookup(id)
	if err != nil {
		return View{}, err
	}
	f.mu.Lock()
	notified := f.notified
	f.mu.Unlock()
	if notified == nil {
		return c.viewOf(f), nil
	}

	select {
	case <-notified:
	case <-ctx.Done():
	}
	return c.viewOf(f), nil
}
