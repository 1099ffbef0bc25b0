// Package identity resolves the signed-in user from the bearer credential kept in
// client storage.
package identity

import (
	"errors"
	"time"
)

var (
	// ErrNoCredential means nobody is signed in on this client.
	ErrNoCredential = errors.New("no credential")
	// ErrMalformedCredential means a credential is stored but cannot be decoded.
	ErrMalformedCredential = errors.New("malformed credential")
	// ErrExpiredCredential means the credential decoded but is past its expiry.
	ErrExpiredCredential = errors.New("expired credential")
)

// Identity is the read-only view of the signed-in user.
type Identity struct {
	Subject   string    `json:"subject,omitempty"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the identity carries an expiry that has passed at now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
