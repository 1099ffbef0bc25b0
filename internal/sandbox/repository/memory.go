package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryCartRepository struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{carts: make(map[string]*Cart)}
}

func (m *memoryCartRepository) GetCart(_ context.Context, userID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	out := *cart
	out.Items = append([]CartItem(nil), cart.Items...)
	return &out, nil
}

func (m *memoryCartRepository) AddItem(_ context.Context, userID string, item CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	item.AddedAt = now

	cart, ok := m.carts[userID]
	if !ok {
		m.carts[userID] = &Cart{UserID: userID, Items: []CartItem{item}, CreatedAt: now, UpdatedAt: now}
		return nil
	}
	cart.UpdatedAt = now
	for i := range cart.Items {
		if cart.Items[i].AnnouncementID == item.AnnouncementID {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (m *memoryCartRepository) UpdateItemQuantity(_ context.Context, userID, announcementID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].AnnouncementID == announcementID {
			cart.Items[i].Quantity = quantity
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

func (m *memoryCartRepository) RemoveItem(_ context.Context, userID, announcementID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.AnnouncementID != announcementID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	cart.UpdatedAt = time.Now()
	return nil
}

func (m *memoryCartRepository) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.carts[userID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type memoryOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*Order
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{orders: make(map[string]*Order)}
}

func (m *memoryOrderRepository) CreateOrder(_ context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := order.ID.String()
	if _, ok := m.orders[key]; ok {
		return ErrDuplicateOrder
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := *order
	m.orders[key] = &stored
	return nil
}

func (m *memoryOrderRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Order
	for _, o := range m.orders {
		if o.UserID == userID {
			copied := *o
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryOrderRepository) Close() error { return nil }
