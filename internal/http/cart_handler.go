package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/cart"
	"github.com/RobbanaAmenallah/Touskie-Byou3/internal/domain"
)

type CartHandler struct {
	workspaces *Workspaces
}

func NewCartHandler(workspaces *Workspaces) *CartHandler {
	return &CartHandler{workspaces: workspaces}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	AnnouncementID string          `json:"announcement_id"`
	Title          string          `json:"title"`
	PicURL         string          `json:"pic_url"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
}

type CartResponseDTO struct {
	Items   []CartItemDTO   `json:"items"`
	Total   decimal.Decimal `json:"total"`
	Loading bool            `json:"loading"`
}

func newCartResponse(snapshot domain.CartSnapshot, loading bool) CartResponseDTO {
	items := snapshot.Items()
	out := make([]CartItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, CartItemDTO{
			AnnouncementID: item.AnnouncementID,
			Title:          item.DisplayTitle(),
			PicURL:         item.DisplayPicURL(),
			Price:          item.Price,
			Quantity:       item.Quantity,
			Total:          item.Total,
		})
	}
	return CartResponseDTO{Items: out, Total: snapshot.Total(), Loading: loading}
}

func (h *CartHandler) store(r *http.Request) *cart.Store {
	return h.workspaces.Get(r.Context(), getClientID(r.Context())).Cart
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	snapshot, err := store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(snapshot, store.Loading()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	announcementID := chi.URLParam(r, "announcement_id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.store(r)
	if err := store.UpdateQuantity(r.Context(), announcementID, req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot(), store.Loading()))
}

func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if err := store.Increment(r.Context(), chi.URLParam(r, "announcement_id")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot(), store.Loading()))
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if err := store.Decrement(r.Context(), chi.URLParam(r, "announcement_id")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot(), store.Loading()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if err := store.RemoveItem(r.Context(), chi.URLParam(r, "announcement_id")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot(), store.Loading()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.store(r)
	if err := store.Clear(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(store.Snapshot(), store.Loading()))
}
