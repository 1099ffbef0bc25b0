// Package cart keeps the client's view of its shopping cart in step with the gateway.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
)

type Gateway interface {
	FetchCart(ctx context.Context, token string) ([]domain.CartLineItem, error)
	UpdateQuantity(ctx context.Context, token, announcementID string, quantity int) error
	RemoveItem(ctx context.Context, token, announcementID string) error
	ClearCart(ctx context.Context, token string) error
}

// Credentials supplies the bearer token; identity.Session implements it.
type Credentials interface {
	Credential() (string, error)
}

// Store is the single source of cart truth for one client. Mutations are
// serialised and each one is followed by a fresh read, except Clear which
// resets locally once the gateway acknowledges it.
type Store struct {
	gw    Gateway
	creds Credentials
	log   *slog.Logger

	sfg singleflight.Group // dedupes concurrent Load calls
	mu  sync.Mutex         // serialises gateway round trips

	loading atomic.Int32

	stateMu  sync.RWMutex
	snapshot domain.CartSnapshot
	lastErr  error
}

func NewStore(gw Gateway, creds Credentials, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		gw:       gw,
		creds:    creds,
		log:      log,
		snapshot: domain.EmptySnapshot(),
	}
}

// Load replaces the snapshot with the gateway's cart. On failure the previous
// snapshot is kept. Concurrent calls share one read; a caller whose ctx ends
// returns early without cancelling the read for the others.
func (s *Store) Load(ctx context.Context) (domain.CartSnapshot, error) {
	token, err := s.token("load")
	if err != nil {
		return s.Snapshot(), err
	}

	ch := s.sfg.DoChan("load", func() (interface{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// the gateway client bounds the call with its own timeout
		return nil, s.fetch(context.WithoutCancel(ctx), token)
	})
	select {
	case res := <-ch:
		return s.Snapshot(), res.Err
	case <-ctx.Done():
		return s.Snapshot(), fmt.Errorf("cart load: %w", ctx.Err())
	}
}

func (s *Store) UpdateQuantity(ctx context.Context, announcementID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	token, err := s.token("update")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, token, announcementID, quantity)
}

func (s *Store) Increment(ctx context.Context, announcementID string) error {
	return s.step(ctx, announcementID, 1)
}

// Decrement lowers the quantity by one. At quantity 1 it does nothing.
func (s *Store) Decrement(ctx context.Context, announcementID string) error {
	return s.step(ctx, announcementID, -1)
}

func (s *Store) step(ctx context.Context, announcementID string, delta int) error {
	token, err := s.token("update")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.Snapshot().Find(announcementID)
	if !ok {
		return ErrItemNotFound
	}
	next := item.Quantity + delta
	if next < 1 {
		return nil
	}
	return s.updateLocked(ctx, token, announcementID, next)
}

func (s *Store) updateLocked(ctx context.Context, token, announcementID string, quantity int) error {
	done := s.begin()
	defer done()

	if err := s.gw.UpdateQuantity(ctx, token, announcementID, quantity); err != nil {
		s.log.ErrorContext(ctx, "cart update failed", "step", "update_quantity", "announcement_id", announcementID, "error", err)
		return s.fail(domain.KindMutationFailure, "update", msgUpdateFailed, err)
	}
	return s.fetch(ctx, token)
}

func (s *Store) RemoveItem(ctx context.Context, announcementID string) error {
	token, err := s.token("remove")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	done := s.begin()
	defer done()

	if err := s.gw.RemoveItem(ctx, token, announcementID); err != nil {
		s.log.ErrorContext(ctx, "cart remove failed", "step", "remove_item", "announcement_id", announcementID, "error", err)
		return s.fail(domain.KindMutationFailure, "remove", msgRemoveFailed, err)
	}
	return s.fetch(ctx, token)
}

// Clear empties the cart. The local snapshot is reset after the gateway
// acknowledges, without a second read.
func (s *Store) Clear(ctx context.Context) error {
	token, err := s.token("clear")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	done := s.begin()
	defer done()

	if err := s.gw.ClearCart(ctx, token); err != nil {
		s.log.ErrorContext(ctx, "cart clear failed", "step", "clear", "error", err)
		return s.fail(domain.KindMutationFailure, "clear", msgClearFailed, err)
	}
	s.replace(domain.EmptySnapshot())
	return nil
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domain.CartSnapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return domain.NewCartSnapshot(s.snapshot.Items())
}

func (s *Store) Total() decimal.Decimal {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.snapshot.Total()
}

// Loading reports whether a gateway round trip is in progress.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// Err returns the most recent failure, cleared by the next successful operation.
func (s *Store) Err() error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastErr
}

func (s *Store) ClearError() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastErr = nil
}

// fetch must run with s.mu held.
func (s *Store) fetch(ctx context.Context, token string) error {
	done := s.begin()
	defer done()

	items, err := s.gw.FetchCart(ctx, token)
	if err != nil {
		s.log.ErrorContext(ctx, "cart load failed", "step", "load", "error", err)
		return s.fail(domain.KindLoadFailure, "load", msgLoadFailed, err)
	}
	s.replace(domain.NewCartSnapshot(items))
	return nil
}

func (s *Store) token(op string) (string, error) {
	token, err := s.creds.Credential()
	if err != nil {
		err = fmt.Errorf("cart %s: %w", op, err)
		s.record(err)
		return "", err
	}
	return token, nil
}

func (s *Store) begin() func() {
	s.loading.Add(1)
	return func() { s.loading.Add(-1) }
}

func (s *Store) fail(kind domain.ErrorKind, op, fallback string, cause error) error {
	msg := gateway.ServerMessage(cause)
	if msg == "" {
		msg = fallback
	}
	err := &Error{Kind: kind, Op: op, Message: msg, Err: cause}
	s.record(err)
	return err
}

func (s *Store) replace(snapshot domain.CartSnapshot) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.snapshot = snapshot
	s.lastErr = nil
}

func (s *Store) record(err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.lastErr = err
}
