package gateway

import (
	"context"
	"net/http"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

type cartResponse struct {
	Cart []domain.CartLineItem `json:"cart"`
}

type updateQuantityRequest struct {
	AnnouncementID string `json:"announcementId"`
	NewQuantity    int    `json:"newQuantity"`
}

type removeItemRequest struct {
	AnnouncementID string `json:"announcementId"`
}

// FetchCart returns the cart line items in server order.
func (c *Client) FetchCart(ctx context.Context, token string) ([]domain.CartLineItem, error) {
	body, err := c.do(ctx, "fetch_cart", http.MethodGet, "/user/cart", token, nil)
	if err != nil {
		return nil, err
	}
	var resp cartResponse
	if err := decode("fetch_cart", body, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return []domain.CartLineItem{}, nil
	}
	return resp.Cart, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, token, announcementID string, quantity int) error {
	req := updateQuantityRequest{AnnouncementID: announcementID, NewQuantity: quantity}
	_, err := c.do(ctx, "update_quantity", http.MethodPatch, "/user/cart/update", token, req)
	return err
}

func (c *Client) RemoveItem(ctx context.Context, token, announcementID string) error {
	req := removeItemRequest{AnnouncementID: announcementID}
	_, err := c.do(ctx, "remove_item", http.MethodDelete, "/user/cart/remove", token, req)
	return err
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	_, err := c.do(ctx, "clear_cart", http.MethodPost, "/user/cart/clear", token, struct{}{})
	return err
}
