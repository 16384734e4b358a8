package model

import "time"

type ServiceRecord struct {
	OrganizationID string     `json:"organization_id"`
	ID             string     `json:"id"`
	VehicleID      string     `json:"vehicle_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ServiceDate    *time.Time `json:"service_date,omitempty"`
	Mileage        *int       `json:"mileage,omitempty"`
	Status         string     `json:"status"`
	Technician     string     `json:"technician"`
	InvoiceNumber  string     `json:"invoice_number"`
	TotalCost      float64    `json:"total_cost"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PartItem is a part line on a service record or a quote. ParentID is the
// owning service record or quote id.
type PartItem struct {
	OrganizationID  string  `json:"organization_id"`
	ID              string  `json:"id"`
	ParentID        string  `json:"parent_id"`
	InventoryPartID *string `json:"inventory_part_id,omitempty"`
	Name            string  `json:"name"`
	PartNumber      string  `json:"part_number"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Total           float64 `json:"total"`
	CreatedBy       string  `json:"created_by"`
}

// LaborItem is a labor line on a service record or a quote.
type LaborItem struct {
	OrganizationID string  `json:"organization_id"`
	ID             string  `json:"id"`
	ParentID       string  `json:"parent_id"`
	Description    string  `json:"description"`
	Hours          float64 `json:"hours"`
	Rate           float64 `json:"rate"`
	Total          float64 `json:"total"`
	CreatedBy      string  `json:"created_by"`
}

type Attachment struct {
	OrganizationID  string    `json:"organization_id"`
	ID              string    `json:"id"`
	ServiceRecordID string    `json:"service_record_id"`
	FileName        string    `json:"file_name"`
	FilePath        string    `json:"file_path"`
	MimeType        string    `json:"mime_type"`
	Size            int64     `json:"size"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type Payment struct {
	OrganizationID  string     `json:"organization_id"`
	ID              string     `json:"id"`
	ServiceRecordID string     `json:"service_record_id"`
	Amount          float64    `json:"amount"`
	Method          string     `json:"method"`
	Reference       string     `json:"reference"`
	Notes           string     `json:"notes"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedBy       string     `json:"created_by"`
}
