package domain

import "time"

// Item is one catalog entry with pricing, inventory, and performance metrics.
// ItemID is immutable once created; the analytics core never mutates any field.
type Item struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	SKU      string `json:"sku"`
	Barcode  string `json:"barcode"`
	Brand    string `json:"brand"`
	Category string `json:"category"`

	MSRP            float64 `json:"msrp"`
	StorePrice      float64 `json:"storePrice"`
	EcomPrice       float64 `json:"ecomPrice"`
	CostPrice       float64 `json:"costPrice"`
	DiscountPercent float64 `json:"discountPercent"`

	Promotion  string    `json:"promotion,omitempty"`
	PromoStart time.Time `json:"promoStartDate,omitempty"`
	PromoEnd   time.Time `json:"promoEndDate,omitempty"`

	QuantityInStock int  `json:"quantityInStock"`
	OnlineAvailable bool `json:"onlineAvailable"`
	StoreAvailable  bool `json:"storeAvailable"`

	CreatedAt       time.Time `json:"createdAt"`
	LastUpdated     time.Time `json:"lastUpdated,omitempty"`
	LastPurchasedAt time.Time `json:"lastPurchasedAt,omitempty"`

	AverageRating   float64 `json:"averageRating"`
	NumberOfReviews int     `json:"numberOfReviews"`
	UnitsSold       int     `json:"unitsSold"`
}

// LastActivity returns the most recent purchase timestamp, falling back to
// CreatedAt. The zero time means the item has no recorded activity at all.
func (it *Item) LastActivity() time.Time {
	if !it.LastPurchasedAt.IsZero() {
		return it.LastPurchasedAt
	}
	return it.CreatedAt
}
