package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

// View is a read-only copy of a session for presentation. Card fields and the
// code itself are never exposed, only whether they were entered.
type View struct {
	ID            uuid.UUID             `json:"id"`
	Status        domain.CheckoutStatus `json:"status"`
	ContactMethod domain.ContactMethod  `json:"contact_method"`
	PhoneNumber   string                `json:"phone_number,omitempty"`
	Email         string                `json:"email"`
	Destination   string                `json:"destination,omitempty"`
	CodeSent      bool                  `json:"code_sent"`
	CodeEntered   bool                  `json:"code_entered"`
	PaymentFilled bool                  `json:"payment_entered"`
	Cart          domain.CartSnapshot   `json:"cart"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	Message       string                `json:"message,omitempty"`
	Error         string                `json:"error,omitempty"`
	ErrorKind     domain.ErrorKind      `json:"error_kind,omitempty"`
	CartLoadError string                `json:"cart_load_error,omitempty"`
	CartCleared   bool                  `json:"cart_cleared"`
	Notification  NotificationStatus    `json:"notification,omitempty"`
	StartedAt     time.Time             `json:"started_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (c *Controller) View(id uuid.UUID) (View, error) {
	f, err := c.lookup(id)
	if err != nil {
		return View{}, err
	}
	return c.viewOf(f), nil
}

// view copies the session; callers hold f.mu.
func (f *flow) view() View {
	s := f.session
	v := View{
		ID:            s.ID,
		Status:        s.Status,
		ContactMethod: s.Contact.Method,
		PhoneNumber:   s.Contact.Phone,
		Email:         s.Email,
		Destination:   s.Destination(),
		CodeSent:      s.Status.CodeSent(),
		CodeEntered:   s.Code != "",
		PaymentFilled: s.Payment.CardNumber != "" && s.Payment.CVC != "" && s.Payment.ExpirationDate != "",
		Cart:          domain.NewCartSnapshot(s.Cart.Items()),
		TotalAmount:   s.Cart.Total(),
		Message:       f.message,
		CartCleared:   f.cartCleared,
		Notification:  f.notification,
		StartedAt:     s.StartedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if f.lastErr != nil {
		v.Error = userMessage(f.lastErr)
		v.ErrorKind = errorKind(f.lastErr)
	}
	if f.loadErr != nil {
		v.CartLoadError = f.loadErr.Error()
	}
	return v
}
