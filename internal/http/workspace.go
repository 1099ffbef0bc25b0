package http

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/cart"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/checkout"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/logger"
)

// Gateway is everything the cart store and the checkout controller need from the remote gateway.
type Gateway interface {
	cart.Gateway
	checkout.Gateway
}

// Workspace is the state the BFF keeps for one browser client.
type Workspace struct {
	Session  *identity.Session
	Cart     *cart.Store
	Checkout *checkout.Controller
}

type WorkspaceDeps struct {
	Credentials identity.CredentialStore
	Decoder     *identity.Decoder
	Gateway     Gateway
	Notifier    checkout.Notifier
	Checkout    checkout.Options
	Logger      *slog.Logger

	// IdleTTL drops a workspace unused for this long. Defaults to 30m.
	IdleTTL time.Duration
	// MaxClients caps the number of workspaces held; the least recently used goes first.
	// Defaults to 10000.
	MaxClients int
	Now        func() time.Time
}

// Workspaces hands out one Workspace per client ID, creating it on first use.
// Workspaces idle longer than IdleTTL are dropped, and at most MaxClients are kept.
// Credentials live in client storage, so a dropped client only loses unsaved
// checkout progress.
type Workspaces struct {
	deps WorkspaceDeps

	mu    sync.Mutex
	items map[string]*list.Element
	// recency is ordered most recently used first.
	recency *list.List
}

type workspaceEntry struct {
	clientID string
	lastUsed time.Time
	ws       *Workspace
}

func NewWorkspaces(deps WorkspaceDeps) *Workspaces {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = 30 * time.Minute
	}
	if deps.MaxClients <= 0 {
		deps.MaxClients = 10000
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Workspaces{deps: deps, items: make(map[string]*list.Element), recency: list.New()}
}

// Get returns the client's workspace with its session refreshed from client storage.
func (ws *Workspaces) Get(ctx context.Context, clientID string) *Workspace {
	ws.mu.Lock()
	now := ws.deps.Now()
	ws.expire(ctx, now)
	var w *Workspace
	if el, ok := ws.items[clientID]; ok {
		e := el.Value.(*workspaceEntry)
		e.lastUsed = now
		ws.recency.MoveToFront(el)
		w = e.ws
	} else {
		w = ws.build(clientID)
		ws.items[clientID] = ws.recency.PushFront(&workspaceEntry{clientID: clientID, lastUsed: now, ws: w})
		for ws.recency.Len() > ws.deps.MaxClients {
			ws.evict(ctx, ws.recency.Back(), "capacity")
		}
	}
	ws.mu.Unlock()

	if err := w.Session.Refresh(ctx); err != nil && ctx.Err() == nil {
		ws.deps.Logger.DebugContext(ctx, "session refresh", "client_id", clientID, "error", err)
	}
	return w
}

// Forget drops the client's workspace; the next Get starts from scratch.
func (ws *Workspaces) Forget(clientID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if el, ok := ws.items[clientID]; ok {
		ws.recency.Remove(el)
		delete(ws.items, clientID)
	}
}

// Len reports how many client workspaces are held.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

// expire drops idle workspaces from the back of the recency list. Caller holds mu.
func (ws *Workspaces) expire(ctx context.Context, now time.Time) {
	for el := ws.recency.Back(); el != nil; el = ws.recency.Back() {
		if now.Sub(el.Value.(*workspaceEntry).lastUsed) < ws.deps.IdleTTL {
			return
		}
		ws.evict(ctx, el, "idle")
	}
}

func (ws *Workspaces) evict(ctx context.Context, el *list.Element, reason string) {
	e := ws.recency.Remove(el).(*workspaceEntry)
	delete(ws.items, e.clientID)
	ws.deps.Logger.DebugContext(ctx, "workspace evicted", "client_id", e.clientID, "reason", reason)
}

func (ws *Workspaces) build(clientID string) *Workspace {
	log := ws.deps.Logger.With("client_id", clientID)
	session := identity.NewSession(clientID, ws.deps.Credentials, ws.deps.Decoder)
	store := cart.NewStore(ws.deps.Gateway, session, log)

	opts := ws.deps.Checkout
	opts.Logger = log
	controller := checkout.NewController(ws.deps.Gateway, session, store, ws.deps.Notifier, opts)

	return &Workspace{Session: session, Cart: store, Checkout: controller}
}
