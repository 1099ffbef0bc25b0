// Package otp issues the six-digit confirmation codes the sandbox gateway
// sends before a payment. Only SHA-256 hashes of codes are stored.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
)

const codeDigits = 6

var ErrCodeNotFound = errors.New("no pending confirmation code")

// Generate returns a random numeric code such as "042917".
func Generate() (string, error) {
	b := make([]byte, codeDigits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := make([]byte, codeDigits)
	for i := range codeDigits {
		s[i] = '0' + (b[i] % 10)
	}
	return string(s), nil
}

func Hash(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// Equal compares a submitted code with a stored hash in constant time.
func Equal(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(code)), []byte(storedHash)) == 1
}

// Store keeps one pending code hash per user, with a count of wrong guesses
// against it. Put starts the count again from zero.
type Store interface {
	Put(ctx context.Context, userID, hash string) error
	// Get returns ErrCodeNotFound when nothing is pending or the code expired.
	Get(ctx context.Context, userID string) (string, error)
	// Fail records a wrong guess and returns the misses so far for the pending code.
	Fail(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID string) error
}

// Sender delivers a code to a phone number or email address.
type Sender interface {
	Send(ctx context.Context, method, destination, code string) error
}

// LogSender writes codes to the log instead of delivering them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, method, destination, code string) error {
	s.Logger.InfoContext(ctx, "confirmation code issued", "method", method, "destination", destination, "code", code)
	return nil
}
