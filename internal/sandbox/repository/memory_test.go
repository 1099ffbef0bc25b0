package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/gateway"
)

// cartRepositoryContract runs the behaviour every CartRepository must share.
func cartRepositoryContract(t *testing.T, repo CartRepository) {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	_, err := repo.GetCart(ctx, userID)
	assert.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, repo.AddItem(ctx, userID, CartItem{AnnouncementID: "a", Title: "Lamp", Price: 10, Quantity: 2}))
	require.NoError(t, repo.AddItem(ctx, userID, CartItem{AnnouncementID: "b", Price: 5, Quantity: 1}))
	require.NoError(t, repo.AddItem(ctx, userID, CartItem{AnnouncementID: "a", Price: 10, Quantity: 1}))

	cart, err := repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "a", cart.Items[0].AnnouncementID)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "Lamp", cart.Items[0].Title)
	assert.InDelta(t, 30.0, cart.Items[0].Total(), 0.001)

	require.NoError(t, repo.UpdateItemQuantity(ctx, userID, "b", 4))
	assert.ErrorIs(t, repo.UpdateItemQuantity(ctx, userID, "missing", 4), ErrItemNotFound)

	require.NoError(t, repo.RemoveItem(ctx, userID, "a"))
	cart, err = repo.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	require.NoError(t, repo.DeleteCart(ctx, userID))
	assert.ErrorIs(t, repo.DeleteCart(ctx, userID), ErrCartNotFound)
}

func orderRepositoryContract(t *testing.T, repo OrderRepository) {
	ctx := context.Background()
	userID := "user-" + uuid.NewString()

	first := &Order{
		ID:            uuid.New(),
		UserID:        userID,
		ContactMethod: "email",
		TotalAmount:   25,
		PaymentMethod: "Credit Card",
		PaymentStatus: "Success",
		Items:         []gateway.PurchaseItem{{AnnouncementID: "a", Quantity: 2, Total: 20}, {AnnouncementID: "b", Quantity: 1, Total: 5}},
	}
	require.NoError(t, repo.CreateOrder(ctx, first))
	assert.False(t, first.CreatedAt.IsZero())
	assert.ErrorIs(t, repo.CreateOrder(ctx, first), ErrDuplicateOrder)

	time.Sleep(10 * time.Millisecond)
	second := &Order{ID: uuid.New(), UserID: userID, ContactMethod: "sms", TotalAmount: 5,
		PaymentMethod: "Credit Card", PaymentStatus: "Success", Items: []gateway.PurchaseItem{{AnnouncementID: "b", Quantity: 1, Total: 5}}}
	require.NoError(t, repo.CreateOrder(ctx, second))

	orders, err := repo.ListOrdersByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.Items, orders[1].Items)
	assert.InDelta(t, 25.0, orders[1].TotalAmount, 0.001)

	orders, err = repo.ListOrdersByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestMemoryCartRepository(t *testing.T) {
	cartRepositoryContract(t, NewMemoryCartRepository())
}

func TestMemoryCartRepository_GetReturnsCopy(t *testing.T) {
	repo := NewMemoryCartRepository()
	ctx := context.Background()
	require.NoError(t, repo.AddItem(ctx, "u", CartItem{AnnouncementID: "a", Price: 1, Quantity: 1}))

	cart, err := repo.GetCart(ctx, "u")
	require.NoError(t, err)
	cart.Items[0].Quantity = 99

	cart, err = repo.GetCart(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestMemoryOrderRepository(t *testing.T) {
	orderRepositoryContract(t, NewMemoryOrderRepository())
}
