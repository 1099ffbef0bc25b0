package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to CheckoutStatus
		want     bool
	}{
		{CheckoutStatusCollectingContact, CheckoutStatusCodeSent, true},
		{CheckoutStatusCollectingContact, CheckoutStatusVerifying, false},
		{CheckoutStatusCodeSent, CheckoutStatusCodeSent, true},
		{CheckoutStatusCodeSent, CheckoutStatusVerifying, true},
		{CheckoutStatusCodeSent, CheckoutStatusCompleted, false},
		{CheckoutStatusVerifying, CheckoutStatusCompleted, true},
		{CheckoutStatusVerifying, CheckoutStatusFailed, true},
		{CheckoutStatusVerifying, CheckoutStatusCodeSent, false},
		{CheckoutStatusFailed, CheckoutStatusVerifying, true},
		{CheckoutStatusFailed, CheckoutStatusCodeSent, true},
		{CheckoutStatusCompleted, CheckoutStatusFailed, false},
		{CheckoutStatusCompleted, CheckoutStatusCollectingContact, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestCheckoutStatus_IsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusCompleted.IsTerminal())
	assert.False(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusCodeSent.IsTerminal())
}

func TestCheckoutStatus_CodeSent(t *testing.T) {
	assert.False(t, CheckoutStatusCollectingContact.CodeSent())
	assert.True(t, CheckoutStatusCodeSent.CodeSent())
	assert.True(t, CheckoutStatusFailed.CodeSent())
}

func TestCheckoutSession_ChannelExclusivity(t *testing.T) {
	s := NewCheckoutSession("u@x.com", EmptySnapshot(), time.Now())
	assert.Equal(t, CheckoutStatusCollectingContact, s.Status)
	assert.Empty(t, s.Destination())

	s.Contact = Contact{Method: ContactMethodSMS, Phone: "+21612345678"}
	assert.Equal(t, "+21612345678", s.Destination())
	assert.Equal(t, "+21612345678", s.PhoneNumber())
	assert.Empty(t, s.EmailAddress())

	s.Contact = Contact{Method: ContactMethodEmail, Phone: "+21612345678"}
	assert.Equal(t, "u@x.com", s.Destination())
	assert.Empty(t, s.PhoneNumber())
	assert.Equal(t, "u@x.com", s.EmailAddress())
}

func TestParseContactMethod(t *testing.T) {
	m, ok := ParseContactMethod("sms")
	assert.True(t, ok)
	assert.Equal(t, ContactMethodSMS, m)

	m, ok = ParseContactMethod("")
	assert.True(t, ok)
	assert.Equal(t, ContactMethodUnset, m)

	_, ok = ParseContactMethod("pigeon")
	assert.False(t, ok)
}
