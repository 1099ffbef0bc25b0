// Package repository stores the sandbox gateway's carts and recorded orders.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
)

var (
	ErrCartNotFound   = errors.New("cart not found")
	ErrItemNotFound   = errors.New("item not found in cart")
	ErrDuplicateOrder = errors.New("order already recorded")
)

type CartItem struct {
	AnnouncementID string    `bson:"announcement_id"`
	Title          string    `bson:"title,omitempty"`
	PicURL         string    `bson:"pic_url,omitempty"`
	Price          float64   `bson:"price"`
	Quantity       int       `bson:"quantity"`
	AddedAt        time.Time `bson:"added_at"`
}

func (i CartItem) Total() float64 {
	return i.Price * float64(i.Quantity)
}

type Cart struct {
	UserID    string     `bson:"user_id"`
	Items     []CartItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	// AddItem inserts the item or, when it is already in the cart, adds to its quantity.
	AddItem(ctx context.Context, userID string, item CartItem) error
	UpdateItemQuantity(ctx context.Context, userID, announcementID string, quantity int) error
	RemoveItem(ctx context.Context, userID, announcementID string) error
	DeleteCart(ctx context.Context, userID string) error
}

// Order is a verified purchase.
type Order struct {
	ID            uuid.UUID
	UserID        string
	ContactMethod string
	TotalAmount   float64
	PaymentMethod string
	PaymentStatus string
	Items         []gateway.PurchaseItem
	CreatedAt     time.Time
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	ListOrdersByUserID(ctx context.Context, userID string) ([]*Order, error)
	Close() error
}
