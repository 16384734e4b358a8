package model

import "time"

type Setting struct {
	OrganizationID string    `json:"organization_id"`
	ID             string    `json:"id"`
	Key            string    `json:"key"`
	Value          string    `json:"value"`
	CreatedBy      string    `json:"created_by"`
	UpdatedAt      time.Time `json:"updated_at"`
}
