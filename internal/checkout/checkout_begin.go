package checkout

import (
	"context"
	"fmt"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
)

const msgCartLoadFailed = "Failed to load cart."

// Begin starts a new session with its own copy of the cart, read from the gateway.
// A failed read still starts the session, with an empty cart and the load error
// recorded, so confirmation is refused by the guard.
//
// The controller keeps one active session per client: starting a checkout
// discards every earlier session except one whose gateway call is still
// running, which stays reachable until its result is read.
func (c *Controller) Begin(ctx context.Context) (View, error) {
	id, err := c.identity.Identity()
	if err != nil {
		return View{}, fmt.Errorf("checkout begin: %w", err)
	}
	token, err := c.identity.Credential()
	if err != nil {
		return View{}, fmt.Errorf("checkout begin: %w", err)
	}

	f := &flow{}
	cart := domain.EmptySnapshot()
	items, err := c.gw.FetchCart(ctx, token)
	if err != nil {
		c.log.ErrorContext(ctx, "checkout cart load failed", "step", "begin", "error", err)
		msg := gateway.ServerMessage(err)
		if msg == "" {
			msg = msgCartLoadFailed
		}
		f.loadErr = fmt.Errorf("%s: %s: %w", domain.KindLoadFailure, msg, err)
		f.message = msg
	} else {
		cart = domain.NewCartSnapshot(items)
	}
	f.session = domain.NewCheckoutSession(id.Email, cart, c.now())

	c.mu.Lock()
	for sid, existing := range c.flows {
		if !existing.inFlight.Load() {
			delete(c.flows, sid)
		}
	}
	c.flows[f.session.ID] = f
	c.mu.Unlock()

	c.metrics.ObserveCheckoutTransition(domain.CheckoutStatusCollectingContact.String())
	c.log.InfoContext(ctx, "checkout started", "checkout_id", f.session.ID, "items", cart.Len())

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view(), nil
}
