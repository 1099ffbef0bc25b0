package domain

type CheckoutStatus string

const (
	CheckoutStatusCollectingContact CheckoutStatus = "collecting_contact"
	CheckoutStatusCodeSent          CheckoutStatus = "code_sent"
	CheckoutStatusVerifying         CheckoutStatus = "verifying"
	CheckoutStatusCompleted         CheckoutStatus = "completed"
	CheckoutStatusFailed            CheckoutStatus = "failed"
)

// IsTerminal reports whether no further transition is possible. A failed
// verification can be retried, so only completed is terminal.
func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted
}

// CodeSent reports whether a confirmation code has been dispatched for the session.
func (s CheckoutStatus) CodeSent() bool {
	switch s {
	case CheckoutStatusCodeSent, CheckoutStatusVerifying, CheckoutStatusCompleted, CheckoutStatusFailed:
		return true
	}
	return false
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var allowedTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusCollectingContact: {CheckoutStatusCodeSent},
	CheckoutStatusCodeSent:          {CheckoutStatusCodeSent, CheckoutStatusVerifying, CheckoutStatusCollectingContact},
	CheckoutStatusVerifying:         {CheckoutStatusCompleted, CheckoutStatusFailed},
	CheckoutStatusFailed:            {CheckoutStatusVerifying, CheckoutStatusCodeSent, CheckoutStatusCollectingContact},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
