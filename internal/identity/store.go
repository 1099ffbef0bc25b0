package identity

import (
	"context"
	"errors"
	"sync"
)

// ErrCredentialNotFound is returned by a CredentialStore when the client has no stored credential.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is what the sign-in flow leaves in client storage.
type Credential struct {
	Token string
	Email string
}

// CredentialStore is the client storage shared by every component of one client.
// It lives from login to logout.
type CredentialStore interface {
	Load(ctx context.Context, clientID string) (Credential, error)
	Save(ctx context.Context, clientID string, cred Credential) error
	Delete(ctx context.Context, clientID string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

func (s *MemoryStore) Load(_ context.Context, clientID string) (Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[clientID]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (s *MemoryStore) Save(_ context.Context, clientID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[clientID] = cred
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, clientID)
	return nil
}
