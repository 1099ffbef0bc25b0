package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
)

const msgSendCodeFailed = "Failed to send confirmation code."

// SendCode asks the gateway to deliver a confirmation code to the selected
// channel. It succeeds only when the gateway answers with that channel's
// acknowledgement; otherwise the session is left as it was.
func (c *Controller) SendCode(ctx context.Context, id uuid.UUID) (View, error) {
	f, err := c.lookup(id)
	if err != nil {
		return View{}, err
	}
	if err := f.acquire(); err != nil {
		return c.viewOf(f), err
	}
	defer f.release()

	f.mu.Lock()
	req, method, err := c.prepareSendCode(f)
	f.mu.Unlock()
	if err != nil {
		return c.fail(f, err)
	}

	token, err := c.identity.Credential()
	if err != nil {
		return c.fail(f, fmt.Errorf("checkout send code: %w", err))
	}

	ack, err := c.gw.SendCode(ctx, token, req)
	if err != nil {
		c.log.ErrorContext(ctx, "send code failed", "step", "send_code", "checkout_id", id, "contact_method", method, "error", err)
		msg := gateway.ServerMessage(err)
		if msg == "" {
			msg = msgSendCodeFailed
		}
		return c.fail(f, &DispatchError{Message: msg, Err: err})
	}
	if ack != c.acks[method] {
		c.log.WarnContext(ctx, "send code not acknowledged", "step", "send_code", "checkout_id", id, "contact_method", method, "message", ack)
		return c.fail(f, &DispatchError{Message: msgSendCodeFailed, Err: fmt.Errorf("unexpected acknowledgement %q", ack)})
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c.transition(ctx, f, domain.CheckoutStatusCodeSent)
	f.lastErr = nil
	f.message = ack
	return f.view(), nil
}

// prepareSendCode validates the contact inputs; callers hold f.mu.
func (c *Controller) prepareSendCode(f *flow) (gateway.SendCodeRequest, domain.ContactMethod, error) {
	s := f.session
	switch s.Status {
	case domain.CheckoutStatusCompleted:
		return gateway.SendCodeRequest{}, "", ErrCheckoutCompleted
	case domain.CheckoutStatusVerifying:
		return gateway.SendCodeRequest{}, "", ErrRequestInFlight
	}

	var missing []string
	if !s.Contact.Method.Valid() {
		missing = append(missing, fieldContactMethod)
	}
	if s.Destination() == "" {
		missing = append(missing, fieldDestination)
	}
	if len(missing) > 0 {
		return gateway.SendCodeRequest{}, "", &ValidationError{Missing: missing}
	}

	return gateway.SendCodeRequest{
		ContactMethod: string(s.Contact.Method),
		PhoneNumber:   s.PhoneNumber(),
		Email:         s.EmailAddress(),
	}, s.Contact.Method, nil
}

// fail records err on the session without changing its status.
func (c *Controller) fail(f *flow, err error) (View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastErr = err
	f.message = userMessage(err)
	return f.view(), err
}

func userMessage(err error) string {
	var dispatchErr *DispatchError
	var verifyErr *VerificationError
	switch {
	case errors.As(err, &dispatchErr):
		return dispatchErr.Message
	case errors.As(err, &verifyErr):
		return verifyErr.Message
	}
	return err.Error()
}

func (c *Controller) viewOf(f *flow) View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view()
}
