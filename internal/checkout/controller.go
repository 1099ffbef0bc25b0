// Package checkout drives the confirmation-code payment flow for one client.
package checkout

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/metrics"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

const (
	PaymentMethod = "Credit Card"
	PaymentStatus = "Success"

	DefaultSMSAck   = "Code de confirmation envoyé par SMS."
	DefaultEmailAck = "Code de confirmation envoyé par email."
)

type Gateway interface {
	FetchCart(ctx context.Context, token string) ([]domain.CartLineItem, error)
	SendCode(ctx context.Context, token string, req gateway.SendCodeRequest) (string, error)
	VerifyCode(ctx context.Context, token string, req gateway.VerifyCodeRequest) (string, error)
}

// Identity is the signed-in user; identity.Session implements it.
type Identity interface {
	Identity() (identity.Identity, error)
	Credential() (string, error)
}

// CartClearer empties the client's cart after a completed purchase.
type CartClearer interface {
	Clear(ctx context.Context) error
}

type Notifier interface {
	Dispatch(ctx context.Context, r notify.Receipt) <-chan notify.Result
}

type Options struct {
	SMSAck   string
	EmailAck string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Controller owns the checkout sessions of one client.
type Controller struct {
	gw       Gateway
	identity Identity
	cart     CartClearer
	notifier Notifier

	acks    map[domain.ContactMethod]string
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu    sync.Mutex
	flows map[uuid.UUID]*flow
}

func NewController(gw Gateway, id Identity, cart CartClearer, notifier Notifier, opts Options) *Controller {
	if opts.SMSAck == "" {
		opts.SMSAck = DefaultSMSAck
	}
	if opts.EmailAck == "" {
		opts.EmailAck = DefaultEmailAck
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		gw:       gw,
		identity: id,
		cart:     cart,
		notifier: notifier,
		acks: map[domain.ContactMethod]string{
			domain.ContactMethodSMS:   opts.SMSAck,
			domain.ContactMethodEmail: opts.EmailAck,
		},
		log:     opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
		flows:   make(map[uuid.UUID]*flow),
	}
}

type NotificationStatus string

const (
	NotificationNone    NotificationStatus = ""
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// flow is one session plus its bookkeeping. mu guards every field except inFlight.
type flow struct {
	mu       sync.Mutex
	inFlight atomic.Bool

	session      *domain.CheckoutSession
	loadErr      error
	lastErr      error
	message      string
	notification NotificationStatus
	cartCleared  bool
	notified     chan struct{}
}

func (c *Controller) lookup(id uuid.UUID) (*flow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flows[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return f, nil
}

// Abandon discards the session.
func (c *Controller) Abandon(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.flows[id]; !ok {
		return ErrSessionNotFound
	}
	delete(c.flows, id)
	return nil
}

// transition moves the session to next; callers hold f.mu.
func (c *Controller) transition(ctx context.Context, f *flow, next domain.CheckoutStatus) {
	prev := f.session.Status
	if prev == next {
		f.session.UpdatedAt = c.now()
		return
	}
	if !domain.CanTransitionTo(prev, next) {
		c.log.ErrorContext(ctx, "invalid checkout transition", "checkout_id", f.session.ID, "from", prev, "to", next)
		return
	}
	f.session.Status = next
	f.session.UpdatedAt = c.now()
	c.metrics.ObserveCheckoutTransition(next.String())
	c.log.InfoContext(ctx, "checkout transition", "checkout_id", f.session.ID, "from", prev, "status", next)
}

// acquire gates SendCode and ConfirmPayment; only one may be in flight per session.
func (f *flow) acquire() error {
	if !f.inFlight.CompareAndSwap(false, true) {
		return ErrRequestInFlight
	}
	return nil
}

func (f *flow) release() {
	f.inFlight.Store(false)
}
