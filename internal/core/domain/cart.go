package domain

// CartItem is one line of the shopping cart. ProductID is unique within a
// cart; adding an existing product increments Quantity instead of appending.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
}
