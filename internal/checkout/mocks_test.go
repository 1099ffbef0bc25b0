package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/identity"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/notify"
)

// MockGateway implements Gateway and records every request.
type MockGateway struct {
	mu sync.Mutex

	Items    []domain.CartLineItem
	FetchErr error

	SendCodeAck  string
	SendCodeErr  error
	SendCodeReqs []gateway.SendCodeRequest

	VerifyMsg  string
	VerifyErr  error
	VerifyReqs []gateway.VerifyCodeRequest
	// VerifyBlock, when set, makes VerifyCode wait until it is closed.
	VerifyBlock   chan struct{}
	VerifyStarted chan struct{}
}

func (m *MockGateway) FetchCart(_ context.Context, _ string) ([]domain.CartLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	out := make([]domain.CartLineItem, len(m.Items))
	copy(out, m.Items)
	return out, nil
}

func (m *MockGateway) SendCode(_ context.Context, _ string, req gateway.SendCodeRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCodeReqs = append(m.SendCodeReqs, req)
	return m.SendCodeAck, m.SendCodeErr
}

func (m *MockGateway) VerifyCode(_ context.Context, _ string, req gateway.VerifyCodeRequest) (string, error) {
	if m.VerifyStarted != nil {
		close(m.VerifyStarted)
	}
	if m.VerifyBlock != nil {
		<-m.VerifyBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VerifyReqs = append(m.VerifyReqs, req)
	return m.VerifyMsg, m.VerifyErr
}

func (m *MockGateway) networkCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendCodeReqs) + len(m.VerifyReqs)
}

// MockIdentity implements Identity.
type MockIdentity struct {
	Email string
	Err   error
}

func (m MockIdentity) Identity() (identity.Identity, error) {
	if m.Err != nil {
		return identity.Identity{}, m.Err
	}
	return identity.Identity{Email: m.Email}, nil
}

func (m MockIdentity) Credential() (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "tok", nil
}

// MockCartClearer counts Clear calls.
type MockCartClearer struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (m *MockCartClearer) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Err
}

func (m *MockCartClearer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockNotifier records receipts and answers with Result.
type MockNotifier struct {
	mu       sync.Mutex
	Receipts []notify.Receipt
	Result   notify.Result
}

func (m *MockNotifier) Dispatch(_ context.Context, r notify.Receipt) <-chan notify.Result {
	m.mu.Lock()
	m.Receipts = append(m.Receipts, r)
	res := m.Result
	m.mu.Unlock()

	out := make(chan notify.Result, 1)
	out <- res
	close(out)
	return out
}

func (m *MockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Receipts)
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

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.FixedZone("CET", 3600))
