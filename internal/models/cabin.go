package models

import "time"

// Cabin is decoded both from the API JSON and from the seed list in the
// YAML config, so fields carry both tag sets.
type Cabin struct {
	ID             int64     `yaml:"id" json:"id"`
	Slug           string    `yaml:"slug" json:"slug"`
	Name           string    `yaml:"name" json:"name"`
	Description    string    `yaml:"description" json:"description,omitempty"`
	CompanySlug    string    `yaml:"company_slug" json:"company_slug"`
	HalfDayEnabled bool      `yaml:"half_day_enabled" json:"half_day_enabled"`
	IsActive       bool      `yaml:"is_active" json:"is_active"`
	CreatedAt      time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt      time.Time `yaml:"updated_at" json:"updated_at"`
}
