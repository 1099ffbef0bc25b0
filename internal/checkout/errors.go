package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

var (
	ErrSessionNotFound      = errors.New("checkout session not found")
	ErrRequestInFlight      = errors.New("a request for this checkout is already in flight")
	ErrCheckoutCompleted    = errors.New("checkout already completed")
	ErrCodeNotSent          = errors.New("confirmation code has not been sent")
	ErrInvalidContactMethod = errors.New("contact method must be sms or email")
	ErrPhoneNotApplicable   = errors.New("phone number only applies to sms")
)

// ValidationError lists the user inputs that are missing, in display order.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Please complete the following fields: " + strings.Join(e.Missing, ", ")
}

func (e *ValidationError) Kind() domain.ErrorKind {
	return domain.KindValidationFailure
}

// DispatchError means the confirmation code was not acknowledged.
type DispatchError struct {
	Message string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

func (e *DispatchError) Kind() domain.ErrorKind {
	return domain.KindDispatchFailure
}

type VerificationCategory string

const (
	VerificationNoResponse       VerificationCategory = "no_response"
	VerificationRejected         VerificationCategory = "rejected"
	VerificationMalformedRequest VerificationCategory = "malformed_request"
)

// VerificationError means the gateway did not accept the payment.
type VerificationError struct {
	Category VerificationCategory
	// Message is what the user is shown.
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	return e.Message
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

func (e *VerificationError) Kind() domain.ErrorKind {
	return domain.KindVerificationFailure
}

func newVerificationError(err error) *VerificationError {
	gwErr, ok := gateway.AsError(err)
	if !ok {
		return &VerificationError{Category: VerificationMalformedRequest, Message: "Error: " + err.Error(), Err: err}
	}
	switch gwErr.Kind {
	case gateway.KindNoResponse, gateway.KindCanceled:
		return &VerificationError{Category: VerificationNoResponse, Message: "Network error: No response from server.", Err: err}
	case gateway.KindMalformedRequest:
		cause := err
		if gwErr.Err != nil {
			cause = gwErr.Err
		}
		return &VerificationError{Category: VerificationMalformedRequest, Message: "Error: " + cause.Error(), Err: err}
	}
	msg := gwErr.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return &VerificationError{Category: VerificationRejected, Message: "Payment failed: " + msg, Err: err}
}

type kinded interface {
	Kind() domain.ErrorKind
}

// errorKind classifies err for presentation. Unknown errors report "".
func errorKind(err error) domain.ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	var notifyErr *notify.Error
	switch {
	case errors.As(err, &notifyErr):
		return domain.KindNotificationFailure
	case errors.Is(err, identity.ErrNoCredential):
		return domain.KindCredentialMissing
	case errors.Is(err, identity.ErrMalformedCredential), errors.Is(err, identity.ErrExpiredCredential):
		return domain.KindCredentialMalformed
	}
	return ""
}
