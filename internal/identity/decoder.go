package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the gateway puts in its bearer tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Decoder turns a bearer token into an Identity.
type Decoder struct {
	secret []byte
	now    func() time.Time
}

// NewDecoder returns a Decoder. With a non-empty secret tokens must carry a valid
// HMAC signature; otherwise the payload is read without verification, the way the
// browser client does.
func NewDecoder(secret string) *Decoder {
	d := &Decoder{now: time.Now}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

func (d *Decoder) Verifies() bool {
	return d.secret != nil
}

// Decode returns ErrMalformedCredential or ErrExpiredCredential on failure.
// The email claim may be empty; callers decide whether that is acceptable.
func (d *Decoder) Decode(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrNoCredential
	}

	claims := &Claims{}
	if d.secret != nil {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithTimeFunc(d.now),
		)
		_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return d.secret, nil
		})
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredCredential
		}
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
		}
	}

	id := Identity{Subject: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if id.Expired(d.now()) {
		return Identity{}, ErrExpiredCredential
	}
	return id, nil
}
