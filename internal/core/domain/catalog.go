package domain

import "time"

// Product is a catalog entry as served by the remote API. Pricing and stock
// are computed server-side; the client only displays them.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Stock    int     `json:"stock"`
}

// Appointment is a booking as served by the remote API. Slot allocation is
// entirely server-side.
type Appointment struct {
	ID       string    `json:"id"`
	SalonID  string    `json:"salon_id"`
	ClientID string    `json:"client_id"`
	Service  string    `json:"service"`
	StartsAt time.Time `json:"starts_at"`
	Status   string    `json:"status"`
}
