package models

import "time"

// Legend is a named, colored category used to label blocked dates with a
// reason and to drive calendar styling. Owners may define their own on top
// of the five built-in ones.
type Legend struct {
	ID          string    `json:"id"`
	CompanySlug string    `json:"company_slug,omitempty"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DefaultLegends returns the five fixed built-in categories used when no
// custom legends are loaded.
func DefaultLegends() []Legend {
	return []Legend{
		{ID: StatusAvailable, Name: "Available", Color: "#4caf50", IsActive: true, IsDefault: true},
		{ID: StatusBooked, Name: "Booked", Color: "#f44336", IsActive: true, IsDefault: true},
		{ID: StatusPartiallyBooked, Name: "Partially booked", Color: "#ff9800", IsActive: true, IsDefault: true},
		{ID: StatusMaintenance, Name: "Maintenance", Color: "#9e9e9e", IsActive: true, IsDefault: true},
		{ID: StatusUnavailable, Name: "Unavailable", Color: "#607d8b", IsActive: true, IsDefault: true},
	}
}

// LegendIndex builds a lookup map keyed by legend id.
func LegendIndex(legends []Legend) map[string]Legend {
	idx := make(map[string]Legend, len(legends))
	for _, l := range legends {
		idx[l.ID] = l
	}
	return idx
}
