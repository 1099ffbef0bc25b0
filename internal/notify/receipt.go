// Package notify sends purchase confirmations once a checkout completes.
package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

const (
	MsgEmailSent   = "Payment successful. A confirmation email has been sent."
	MsgEmailFailed = "Payment successful, but failed to send confirmation email."
)

var ErrMailerNotConfigured = errors.New("mailer not configured")

// Receipt describes a completed purchase.
type Receipt struct {
	CheckoutID    uuid.UUID
	Email         string
	Items         []domain.CartLineItem
	Total         decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	CompletedAt   time.Time
}

// TransactionDetails is the one-line summary put in the confirmation email.
func (r Receipt) TransactionDetails() string {
	return fmt.Sprintf("Total amount: %s, Payment Method: %s, Status: %s", r.Total.String(), r.PaymentMethod, r.PaymentStatus)
}

// Result is the outcome of one confirmation send.
type Result struct {
	Err     error
	Message string
}

func (r Result) Sent() bool {
	return r.Err == nil
}

// Error wraps a failed confirmation send.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", domain.KindNotificationFailure, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
