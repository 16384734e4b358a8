package model

import "time"

type Quote struct {
	OrganizationID string     `json:"organization_id"`
	ID             string     `json:"id"`
	CustomerID     *string    `json:"customer_id,omitempty"`
	VehicleID      *string    `json:"vehicle_id,omitempty"`
	QuoteNumber    string     `json:"quote_number"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes"`
	Total          float64    `json:"total"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
