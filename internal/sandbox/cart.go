package sandbox

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/sandbox/repository"
)

// cartLine is one cart row as the gateway serves it.
type cartLine struct {
	AnnouncementID string  `json:"announcementId"`
	Title          string  `json:"title,omitempty"`
	PicURL         string  `json:"picUrl,omitempty"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	Total          float64 `json:"total"`
}

type cartResponse struct {
	Cart []cartLine `json:"cart"`
}

type addItemRequest struct {
	AnnouncementID string  `json:"announcementId"`
	Title          string  `json:"title"`
	PicURL         string  `json:"picUrl"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
}

type updateQuantityRequest struct {
	AnnouncementID string `json:"announcementId"`
	NewQuantity    int    `json:"newQuantity"`
}

type removeItemRequest struct {
	AnnouncementID string `json:"announcementId"`
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := s.carts.GetCart(r.Context(), userFrom(r.Context()).ID)
	if errors.Is(err, repository.ErrCartNotFound) {
		respondJSON(w, http.StatusOK, cartResponse{Cart: []cartLine{}})
		return
	}
	if err != nil {
		s.internalError(w, r, "get_cart", err)
		return
	}

	lines := make([]cartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, cartLine{
			AnnouncementID: item.AnnouncementID,
			Title:          item.Title,
			PicURL:         item.PicURL,
			Price:          item.Price,
			Quantity:       item.Quantity,
			Total:          item.Total(),
		})
	}
	respondJSON(w, http.StatusOK, cartResponse{Cart: lines})
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AnnouncementID) == "" {
		respondMessage(w, http.StatusBadRequest, "announcementId is required.")
		return
	}
	if req.Price < 0 {
		respondMessage(w, http.StatusBadRequest, "Price cannot be negative.")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		respondMessage(w, http.StatusBadRequest, "Quantity must be at least 1.")
		return
	}

	err := s.carts.AddItem(r.Context(), userFrom(r.Context()).ID, repository.CartItem{
		AnnouncementID: req.AnnouncementID,
		Title:          req.Title,
		PicURL:         req.PicURL,
		Price:          req.Price,
		Quantity:       req.Quantity,
	})
	if err != nil {
		s.internalError(w, r, "add_item", err)
		return
	}
	respondMessage(w, http.StatusCreated, "Item added to cart.")
}

func (s *Server) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.NewQuantity < 1 {
		respondMessage(w, http.StatusBadRequest, "Quantity must be at least 1.")
		return
	}

	err := s.carts.UpdateItemQuantity(r.Context(), userFrom(r.Context()).ID, req.AnnouncementID, req.NewQuantity)
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		respondMessage(w, http.StatusNotFound, "Item not found in cart.")
	case err != nil:
		s.internalError(w, r, "update_quantity", err)
	default:
		respondMessage(w, http.StatusOK, "Cart updated.")
	}
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	var req removeItemRequest
	if !decode(w, r, &req) {
		return
	}

	err := s.carts.RemoveItem(r.Context(), userFrom(r.Context()).ID, req.AnnouncementID)
	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		respondMessage(w, http.StatusNotFound, "Cart not found.")
	case err != nil:
		s.internalError(w, r, "remove_item", err)
	default:
		respondMessage(w, http.StatusOK, "Item removed from cart.")
	}
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	err := s.carts.DeleteCart(r.Context(), userFrom(r.Context()).ID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.internalError(w, r, "clear_cart", err)
		return
	}
	respondMessage(w, http.StatusOK, "Cart cleared.")
}
