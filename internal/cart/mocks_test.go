package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

// MockGateway is an in-memory gateway cart. Err* fields force failures.
type MockGateway struct {
	mu    sync.Mutex
	items []domain.CartLineItem
	calls []string

	FetchErr  error
	UpdateErr error
	RemoveErr error
	ClearErr  error
	// OnUpdate runs inside UpdateQuantity before the cart is changed.
	OnUpdate func()
	// OnFetch runs inside FetchCart before the cart is read.
	OnFetch func(ctx context.Context)
}

func newMockGateway(items ...domain.CartLineItem) *MockGateway {
	return &MockGateway{items: items}
}

func (m *MockGateway) FetchCart(ctx context.Context, _ string) ([]domain.CartLineItem, error) {
	if m.OnFetch != nil {
		m.OnFetch(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "fetch")
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	out := make([]domain.CartLineItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *MockGateway) UpdateQuantity(_ context.Context, _ string, id string, quantity int) error {
	if m.OnUpdate != nil {
		m.OnUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "update")
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.items {
		if m.items[i].AnnouncementID == id {
			m.items[i].Quantity = quantity
			m.items[i].Total = m.items[i].Price.Mul(decimal.NewFromInt(int64(quantity)))
		}
	}
	return nil
}

func (m *MockGateway) RemoveItem(_ context.Context, _ string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "remove")
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	kept := m.items[:0]
	for _, item := range m.items {
		if item.AnnouncementID != id {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

func (m *MockGateway) ClearCart(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "clear")
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.items = nil
	return nil
}

func (m *MockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockCredentials returns a fixed token or error.
type MockCredentials struct {
	Token string
	Err   error
}

func (m MockCredentials) Credential() (string, error) {
	return m.Token, m.Err
}

func lineItem(id string, price int64, quantity int) domain.CartLineItem {
	p := decimal.NewFromInt(price)
	return domain.CartLineItem{
		AnnouncementID: id,
		Price:          p,
		Quantity:       quantity,
		Total:          p.Mul(decimal.NewFromInt(int64(quantity))),
	}
}
