package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Session is one client's view of its credential. It is handed to the cart store
// and the checkout controller instead of them reading client storage directly.
type Session struct {
	clientID string
	store    CredentialStore
	decoder  *Decoder
	now      func() time.Time

	mu         sync.RWMutex
	credential string
	identity   Identity
	err        error
}

func NewSession(clientID string, store CredentialStore, decoder *Decoder) *Session {
	return &Session{
		clientID: clientID,
		store:    store,
		decoder:  decoder,
		now:      time.Now,
		err:      ErrNoCredential,
	}
}

func (s *Session) ClientID() string {
	return s.clientID
}

// Login stores token in client storage and decodes it. A token that cannot be
// decoded is rejected and nothing is stored.
func (s *Session) Login(ctx context.Context, token, email string) (Identity, error) {
	id, err := s.resolve(Credential{Token: token, Email: email})
	if err != nil {
		return Identity{}, err
	}
	if err := s.store.Save(ctx, s.clientID, Credential{Token: token, Email: id.Email}); err != nil {
		return Identity{}, fmt.Errorf("save credential: %w", err)
	}
	s.set(token, id, nil)
	return id, nil
}

// Logout removes the credential from client storage.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.clientID); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	s.Invalidate()
	return nil
}

// Refresh re-reads client storage. Its error is also what Identity and Credential
// report until the next Refresh, Login or Logout.
func (s *Session) Refresh(ctx context.Context) error {
	cred, err := s.store.Load(ctx, s.clientID)
	if errors.Is(err, ErrCredentialNotFound) {
		s.set("", Identity{}, ErrNoCredential)
		return ErrNoCredential
	}
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}

	id, err := s.resolve(cred)
	if err != nil {
		s.set("", Identity{}, err)
		return err
	}
	s.set(cred.Token, id, nil)
	return nil
}

func (s *Session) Identity() (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return Identity{}, s.err
	}
	if s.identity.Expired(s.now()) {
		return Identity{}, ErrExpiredCredential
	}
	return s.identity, nil
}

// Credential returns the raw bearer token for gateway calls.
func (s *Session) Credential() (string, error) {
	if _, err := s.Identity(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, nil
}

// Invalidate forgets the cached credential without touching client storage.
func (s *Session) Invalidate() {
	s.set("", Identity{}, ErrNoCredential)
}

// resolve decodes the token; the email claim wins over the separately stored email.
func (s *Session) resolve(cred Credential) (Identity, error) {
	id, err := s.decoder.Decode(cred.Token)
	if err != nil {
		return Identity{}, err
	}
	if id.Email == "" {
		id.Email = cred.Email
	}
	if id.Email == "" {
		return Identity{}, fmt.Errorf("%w: email claim missing", ErrMalformedCredential)
	}
	return id, nil
}

func (s *Session) set(credential string, id Identity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.identity = id
	s.err = err
}
