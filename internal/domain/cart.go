package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	fallbackTitle  = "Untitled"
	fallbackPicURL = "/uploads/default-image.jpg"
)

// CartLineItem is one announcement in the cart. Total is computed by the gateway
// and is never recomputed locally.
type CartLineItem struct {
	AnnouncementID string          `json:"announcementId"`
	Title          string          `json:"title,omitempty"`
	PicURL         string          `json:"picUrl,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
}

func (i CartLineItem) DisplayTitle() string {
	if i.Title == "" {
		return fallbackTitle
	}
	return i.Title
}

func (i CartLineItem) DisplayPicURL() string {
	if i.PicURL == "" {
		return fallbackPicURL
	}
	return i.PicURL
}

// CartSnapshot represents the cart as last confirmed by the gateway.
// Total is always the sum of the item totals; build snapshots with NewCartSnapshot.
type CartSnapshot struct {
	items []CartLineItem
	total decimal.Decimal
}

// NewCartSnapshot copies items and derives the total from them.
func NewCartSnapshot(items []CartLineItem) CartSnapshot {
	copied := make([]CartLineItem, len(items))
	copy(copied, items)

	total := decimal.Zero
	for _, item := range copied {
		total = total.Add(item.Total)
	}
	return CartSnapshot{items: copied, total: total}
}

func EmptySnapshot() CartSnapshot {
	return NewCartSnapshot(nil)
}

// Items returns a copy of the line items in server order.
func (s CartSnapshot) Items() []CartLineItem {
	out := make([]CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s CartSnapshot) Total() decimal.Decimal {
	return s.total
}

func (s CartSnapshot) Len() int {
	return len(s.items)
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.items) == 0
}

// Find returns the line item for announcementID, if present.
func (s CartSnapshot) Find(announcementID string) (CartLineItem, bool) {
	for _, item := range s.items {
		if item.AnnouncementID == announcementID {
			return item, true
		}
	}
	return CartLineItem{}, false
}

// cartSnapshotJSON is the presentation shape of a snapshot.
type cartSnapshotJSON struct {
	Items []CartLineItem  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s CartSnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartSnapshotJSON{Items: s.Items(), Total: s.total})
}
