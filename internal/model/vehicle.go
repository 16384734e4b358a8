package model

import "time"

type Vehicle struct {
	OrganizationID string    `json:"organization_id"`
	ID             string    `json:"id"`
	CustomerID     *string   `json:"customer_id,omitempty"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	VIN            string    `json:"vin"`
	LicensePlate   string    `json:"license_plate"`
	Color          string    `json:"color"`
	Mileage        int       `json:"mileage"`
	ImagePath      *string   `json:"image_path,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VehicleNote struct {
	OrganizationID string    `json:"organization_id"`
	ID             string    `json:"id"`
	VehicleID      string    `json:"vehicle_id"`
	Content        string    `json:"content"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type FuelLog struct {
	OrganizationID string     `json:"organization_id"`
	ID             string     `json:"id"`
	VehicleID      string     `json:"vehicle_id"`
	Date           *time.Time `json:"date,omitempty"`
	Odometer       int        `json:"odometer"`
	Gallons        float64    `json:"gallons"`
	PricePerGallon float64    `json:"price_per_gallon"`
	TotalCost      float64    `json:"total_cost"`
	FullTank       bool       `json:"full_tank"`
	Notes          string     `json:"notes"`
	CreatedBy      string     `json:"created_by"`
}

type Reminder struct {
	OrganizationID string     `json:"organization_id"`
	ID             string     `json:"id"`
	VehicleID      string     `json:"vehicle_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	DueMileage     *int       `json:"due_mileage,omitempty"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedBy      string     `json:"created_by"`
}
