package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/garagebook/internal/model"
	"github.com/google/uuid"
)

type OrganizationStore struct {
	db *sql.DB
}

func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

func scanOrganization(scanner interface{ Scan(...any) error }) (*model.Organization, error) {
	var o model.Organization
	err := scanner.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrganizationMember(scanner interface{ Scan(...any) error }) (*model.OrganizationMember, error) {
	var m model.OrganizationMember
	err := scanner.Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const organizationCols = `id, name, created_at, updated_at`
const organizationMemberCols = `organization_id, user_id, role, created_at`

func (s *OrganizationStore) Create(name string) (*model.Organization, error) {
	id := uuid.NewString()
	if _, err := s.db.Exec(`INSERT INTO organizations (id, name) VALUES (?, ?)`, id, name); err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrganizationStore) GetByID(id string) (*model.Organization, error) {
	row := s.db.QueryRow(`SELECT `+organizationCols+` FROM organizations WHERE id = ?`, id)
	o, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func (s *OrganizationStore) AddMember(orgID, userID, role string) (*model.OrganizationMember, error) {
	_, err := s.db.Exec(
		`INSERT INTO organization_members (organization_id, user_id, role) VALUES (?, ?, ?)`,
		orgID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return s.GetMember(orgID, userID)
}

func (s *OrganizationStore) GetMember(orgID, userID string) (*model.OrganizationMember, error) {
	row := s.db.QueryRow(
		`SELECT `+organizationMemberCols+` FROM organization_members WHERE organization_id = ? AND user_id = ?`,
		orgID, userID,
	)
	m, err := scanOrganizationMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *OrganizationStore) RemoveMember(orgID, userID string) error {
	_, err := s.db.Exec(
		`DELETE FROM organization_members WHERE organization_id = ? AND user_id = ?`,
		orgID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
