// Package snapshot defines the backup envelope schema and the stages that turn
// a request body into a validated envelope: payload classification and the
// version gate.
//
// Field types are strict. A string where a number is expected is rejected when
// the envelope is decoded; nothing is coerced. Fields that may be absent or
// null are pointers; everything else falls back to its zero value.
package snapshot

// Version 1 envelopes are decoded with the version 2 schema. Fields a version 1
// export never wrote are simply absent and take their defaults.
const (
	VersionLegacy  = 1
	VersionCurrent = 2
)

type Envelope struct {
	Version int       `json:"version"`
	Data    *Document `json:"data"`
}

type Document struct {
	Settings               []Setting               `json:"settings"`
	Customers              []Customer              `json:"customers"`
	CustomFieldDefinitions []CustomFieldDefinition `json:"customFieldDefinitions"`
	InventoryParts         []InventoryPart         `json:"inventoryParts"`
	Vehicles               []Vehicle               `json:"vehicles"`
	ServiceRecords         []ServiceRecord         `json:"serviceRecords"`
	Quotes                 []Quote                 `json:"quotes"`
}

type Setting struct {
	ID    *string `json:"id"`
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

type Customer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Notes     string  `json:"notes"`
	CreatedAt *string `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}

type CustomFieldDefinition struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	EntityType string             `json:"entityType"`
	FieldType  string             `json:"fieldType"`
	Options    []string           `json:"options"`
	Required   bool               `json:"required"`
	SortOrder  int                `json:"sortOrder"`
	CreatedAt  *string            `json:"createdAt"`
	Values     []CustomFieldValue `json:"values"`
}

type CustomFieldValue struct {
	ID           string  `json:"id"`
	DefinitionID *string `json:"definitionId"`
	EntityID     string  `json:"entityId"`
	Value        string  `json:"value"`
}

type InventoryPart struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	PartNumber  string  `json:"partNumber"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity"`
	MinQuantity int     `json:"minQuantity"`
	UnitCost    float64 `json:"unitCost"`
	RetailPrice float64 `json:"retailPrice"`
	Supplier    string  `json:"supplier"`
	Location    string  `json:"location"`
	ImagePath   *string `json:"imagePath"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

type Vehicle struct {
	ID           string  `json:"id"`
	CustomerID   *string `json:"customerId"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	VIN          string  `json:"vin"`
	LicensePlate string  `json:"licensePlate"`
	Color        string  `json:"color"`
	Mileage      int     `json:"mileage"`
	ImagePath    *string `json:"imagePath"`
	CreatedAt    *string `json:"createdAt"`
	UpdatedAt    *string `json:"updatedAt"`

	Notes          []VehicleNote   `json:"notes"`
	FuelLogs       []FuelLog       `json:"fuelLogs"`
	Reminders      []Reminder      `json:"reminders"`
	ServiceRecords []ServiceRecord `json:"serviceRecords"`
}

type VehicleNote struct {
	ID        string  `json:"id"`
	VehicleID *string `json:"vehicleId"`
	Content   string  `json:"content"`
	CreatedAt *string `json:"createdAt"`
}

type FuelLog struct {
	ID             string  `json:"id"`
	VehicleID      *string `json:"vehicleId"`
	Date           *string `json:"date"`
	Odometer       int     `json:"odometer"`
	Gallons        float64 `json:"gallons"`
	PricePerGallon float64 `json:"pricePerGallon"`
	TotalCost      float64 `json:"totalCost"`
	FullTank       bool    `json:"fullTank"`
	Notes          string  `json:"notes"`
}

type Reminder struct {
	ID          string  `json:"id"`
	VehicleID   *string `json:"vehicleId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
	DueMileage  *int    `json:"dueMileage"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt"`
}

type ServiceRecord struct {
	ID            string  `json:"id"`
	VehicleID     *string `json:"vehicleId"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ServiceDate   *string `json:"serviceDate"`
	Mileage       *int    `json:"mileage"`
	Status        string  `json:"status"`
	Technician    string  `json:"technician"`
	InvoiceNumber string  `json:"invoiceNumber"`
	TotalCost     float64 `json:"totalCost"`
	CreatedAt     *string `json:"createdAt"`
	UpdatedAt     *string `json:"updatedAt"`

	PartItems   []PartItem   `json:"partItems"`
	LaborItems  []LaborItem  `json:"laborItems"`
	Attachments []Attachment `json:"attachments"`
	Payments    []Payment    `json:"payments"`
}

// PartItem is a part line on either a service record or a quote; only one of
// the parent references is set by an export.
type PartItem struct {
	ID              string  `json:"id"`
	ServiceRecordID *string `json:"serviceRecordId"`
	QuoteID         *string `json:"quoteId"`
	InventoryPartID *string `json:"inventoryPartId"`
	Name            string  `json:"name"`
	PartNumber      string  `json:"partNumber"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	Total           float64 `json:"total"`
}

type LaborItem struct {
	ID              string  `json:"id"`
	ServiceRecordID *string `json:"serviceRecordId"`
	QuoteID         *string `json:"quoteId"`
	Description     string  `json:"description"`
	Hours           float64 `json:"hours"`
	Rate            float64 `json:"rate"`
	Total           float64 `json:"total"`
}

type Attachment struct {
	ID              string  `json:"id"`
	ServiceRecordID *string `json:"serviceRecordId"`
	FileName        string  `json:"fileName"`
	FilePath        string  `json:"filePath"`
	MimeType        string  `json:"mimeType"`
	Size            int64   `json:"size"`
	CreatedAt       *string `json:"createdAt"`
}

type Payment struct {
	ID              string  `json:"id"`
	ServiceRecordID *string `json:"serviceRecordId"`
	Amount          float64 `json:"amount"`
	Method          string  `json:"method"`
	Reference       string  `json:"reference"`
	Notes           string  `json:"notes"`
	PaidAt          *string `json:"paidAt"`
}

type Quote struct {
	ID          string  `json:"id"`
	CustomerID  *string `json:"customerId"`
	VehicleID   *string `json:"vehicleId"`
	QuoteNumber string  `json:"quoteNumber"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes"`
	Total       float64 `json:"total"`
	ValidUntil  *string `json:"validUntil"`
	CreatedAt   *string `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`

	PartItems  []PartItem  `json:"partItems"`
	LaborItems []LaborItem `json:"laborItems"`
}
