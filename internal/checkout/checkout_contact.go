package checkout

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

// SelectContactMethod sets the channel the code is sent through. Switching
// channel drops the phone number, and a code already sent to the old channel
// has to be sent again.
func (c *Controller) SelectContactMethod(ctx context.Context, id uuid.UUID, method domain.ContactMethod) (View, error) {
	if !method.Valid() && method != domain.ContactMethodUnset {
		return View{}, ErrInvalidContactMethod
	}
	return c.edit(ctx, id, func(f *flow) error {
		s := f.session
		if s.Contact.Method == method {
			return nil
		}
		s.Contact = domain.Contact{Method: method}
		if s.Status == domain.CheckoutStatusCodeSent || s.Status == domain.CheckoutStatusFailed {
			c.transition(ctx, f, domain.CheckoutStatusCollectingContact)
		}
		return nil
	})
}

func (c *Controller) SetPhoneNumber(ctx context.Context, id uuid.UUID, phone string) (View, error) {
	return c.edit(ctx, id, func(f *flow) error {
		if f.session.Contact.Method != domain.ContactMethodSMS {
			return ErrPhoneNotApplicable
		}
		f.session.Contact.Phone = strings.TrimSpace(phone)
		c.corrected(ctx, f)
		return nil
	})
}

func (c *Controller) SetCode(ctx context.Context, id uuid.UUID, code string) (View, error) {
	return c.edit(ctx, id, func(f *flow) error {
		f.session.Code = strings.TrimSpace(code)
		c.corrected(ctx, f)
		return nil
	})
}

func (c *Controller) SetPaymentDetails(ctx context.Context, id uuid.UUID, details domain.PaymentDetails) (View, error) {
	return c.edit(ctx, id, func(f *flow) error {
		f.session.Payment = details
		c.corrected(ctx, f)
		return nil
	})
}

// edit applies fn to a session that is neither completed nor verifying.
func (c *Controller) edit(ctx context.Context, id uuid.UUID, fn func(*flow) error) (View, error) {
	f, err := c.lookup(id)
	if err != nil {
		return View{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight.Load() {
		return f.view(), ErrRequestInFlight
	}
	switch f.session.Status {
	case domain.CheckoutStatusCompleted:
		return f.view(), ErrCheckoutCompleted
	case domain.CheckoutStatusVerifying:
		return f.view(), ErrRequestInFlight
	}
	if err := fn(f); err != nil {
		return f.view(), err
	}
	f.session.UpdatedAt = c.now()
	return f.view(), nil
}

// corrected returns a failed session to code_sent once the user edits an input.
func (c *Controller) corrected(ctx context.Context, f *flow) {
	if f.session.Status == domain.CheckoutStatusFailed {
		c.transition(ctx, f, domain.CheckoutStatusCodeSent)
		f.lastErr = nil
	}
}
