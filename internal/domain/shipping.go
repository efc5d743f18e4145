package domain

import "time"

// ShippingMethod is one entry of the shipping catalog. Only active methods
// are offered to checkouts; the catalog is immutable from the checkout's
// perspective.
type ShippingMethod struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// PriceAmount is the shipping cost in minor currency units.
	PriceAmount int64     `json:"price_amount"`
	Icon        string    `json:"icon,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
