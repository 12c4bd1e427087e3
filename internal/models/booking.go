package models

import "time"

type Booking struct {
	ID         int64     `json:"id"`
	CabinID    int64     `json:"cabin_id"`
	CabinName  string    `json:"cabin_name"`
	GuestName  string    `json:"guest_name"`
	GuestPhone string    `json:"guest_phone"`
	GuestEmail string    `json:"guest_email,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"` // pending, approved, rejected, cancelled
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Block marks a date unavailable for a stated reason, distinct from a booking.
// Reason is a legend id, either one of the built-in statuses or a custom one.
type Block struct {
	ID        int64     `json:"id"`
	CabinID   int64     `json:"cabin_id"`
	Date      Date      `json:"date"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
