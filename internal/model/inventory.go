package model

import "time"

type InventoryPart struct {
	OrganizationID string    `json:"organization_id"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PartNumber     string    `json:"part_number"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Quantity       int       `json:"quantity"`
	MinQuantity    int       `json:"min_quantity"`
	UnitCost       float64   `json:"unit_cost"`
	RetailPrice    float64   `json:"retail_price"`
	Supplier       string    `json:"supplier"`
	Location       string    `json:"location"`
	ImagePath      *string   `json:"image_path,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
