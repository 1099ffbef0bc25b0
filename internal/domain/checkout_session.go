package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContactMethod string

const (
	ContactMethodUnset ContactMethod = ""
	ContactMethodSMS   ContactMethod = "sms"
	ContactMethodEmail ContactMethod = "email"
)

func (m ContactMethod) Valid() bool {
	return m == ContactMethodSMS || m == ContactMethodEmail
}

func ParseContactMethod(s string) (ContactMethod, bool) {
	m := ContactMethod(s)
	if m == ContactMethodUnset || m.Valid() {
		return m, true
	}
	return ContactMethodUnset, false
}

// Contact holds the selected channel. Phone is only meaningful for sms; the
// email destination always comes from the identity.
type Contact struct {
	Method ContactMethod `json:"method"`
	Phone  string        `json:"phone_number,omitempty"`
}

// PaymentDetails are opaque card fields forwarded to the gateway as-is.
type PaymentDetails struct {
	CardNumber     string `json:"-"`
	CVC            string `json:"-"`
	ExpirationDate string `json:"-"`
}

// CheckoutSession is the state of one in-progress checkout.
type CheckoutSession struct {
	ID        uuid.UUID
	Email     string
	Contact   Contact
	Code      string
	Payment   PaymentDetails
	Status    CheckoutStatus
	Cart      CartSnapshot
	StartedAt time.Time
	UpdatedAt time.Time
}

func NewCheckoutSession(email string, cart CartSnapshot, now time.Time) *CheckoutSession {
	return &CheckoutSession{
		ID:        uuid.New(),
		Email:     email,
		Status:    CheckoutStatusCollectingContact,
		Cart:      cart,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Destination is the address the confirmation code is sent to.
func (s *CheckoutSession) Destination() string {
	switch s.Contact.Method {
	case ContactMethodSMS:
		return s.Contact.Phone
	case ContactMethodEmail:
		return s.Email
	}
	return ""
}

// PhoneNumber and EmailAddress return the per-channel values submitted to the
// gateway; the channel that is not selected is always empty.
func (s *CheckoutSession) PhoneNumber() string {
	if s.Contact.Method == ContactMethodSMS {
		return s.Contact.Phone
	}
	return ""
}

func (s *CheckoutSession) EmailAddress() string {
	if s.Contact.Method == ContactMethodEmail {
		return s.Email
	}
	return ""
}
