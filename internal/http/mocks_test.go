package http

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

// GatewayMock is an in-memory gateway shared by every client in a test.
type GatewayMock struct {
	mu        sync.Mutex
	items     []domain.CartLineItem
	fetchErr  error
	verifyErr error
	sends     []gateway.SendCodeRequest
	verifies  []gateway.VerifyCodeRequest
}

func (g *GatewayMock) FetchCart(_ context.Context, _ string) ([]domain.CartLineItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	out := make([]domain.CartLineItem, len(g.items))
	copy(out, g.items)
	return out, nil
}

func (g *GatewayMock) UpdateQuantity(_ context.Context, _ string, id string, quantity int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.items {
		if g.items[i].AnnouncementID == id {
			g.items[i].Quantity = quantity
			g.items[i].Total = g.items[i].Price.Mul(decimal.NewFromInt(int64(quantity)))
		}
	}
	return nil
}

func (g *GatewayMock) RemoveItem(_ context.Context, _ string, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.items[:0]
	for _, item := range g.items {
		if item.AnnouncementID != id {
			kept = append(kept, item)
		}
	}
	g.items = kept
	return nil
}

func (g *GatewayMock) ClearCart(_ context.Context, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = nil
	return nil
}

func (g *GatewayMock) SendCode(_ context.Context, _ string, req gateway.SendCodeRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, req)
	if req.ContactMethod == "email" {
		return "Code de confirmation envoyé par email.", nil
	}
	return "Code de confirmation envoyé par SMS.", nil
}

func (g *GatewayMock) VerifyCode(_ context.Context, _ string, req gateway.VerifyCodeRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifies = append(g.verifies, req)
	return "Paiement confirmé.", g.verifyErr
}

type NotifierMock struct{}

func (NotifierMock) Dispatch(_ context.Context, _ notify.Receipt) <-chan notify.Result {
	out := make(chan notify.Result, 1)
	out <- notify.Result{Message: notify.MsgEmailSent}
	close(out)
	return out
}

func item(id string, price int64, quantity int) domain.CartLineItem {
	p := decimal.NewFromInt(price)
	return domain.CartLineItem{
		AnnouncementID: id,
		Price:          p,
		Quantity:       quantity,
		Total:          p.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
