package model

import "time"

// CustomFieldDefinition describes an extra field attached to customers or vehicles.
// Options holds the JSON-encoded list of choices for select fields.
type CustomFieldDefinition struct {
	OrganizationID string    `json:"organization_id"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EntityType     string    `json:"entity_type"`
	FieldType      string    `json:"field_type"`
	Options        string    `json:"options"`
	Required       bool      `json:"required"`
	SortOrder      int       `json:"sort_order"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

type CustomFieldValue struct {
	OrganizationID string `json:"organization_id"`
	ID             string `json:"id"`
	DefinitionID   string `json:"definition_id"`
	EntityID       string `json:"entity_id"`
	Value          string `json:"value"`
	CreatedBy      string `json:"created_by"`
}
