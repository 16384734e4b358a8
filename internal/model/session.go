package model

import "time"

type Session struct {
	ID             int64     `json:"id"`
	Token          string    `json:"token"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}
