package cart

import (
	"errors"
	"fmt"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not in cart")
)

const (
	msgLoadFailed   = "Failed to load cart."
	msgUpdateFailed = "Failed to update quantity."
	msgRemoveFailed = "Failed to remove item."
	msgClearFailed  = "Failed to clear cart."
)

// Error is a failed gateway round trip. Message is safe to show to the user.
type Error struct {
	Kind    domain.ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cart %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cart %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
