package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goTenant/organization"
	"github.com/google/uuid"
)

// OrganizationStore implements organization.Store. Members live in a join
// table whose primary key gives them set semantics.
type OrganizationStore struct {
	db *sql.DB
}

// NewOrganizationStore returns a store over a database opened with [Open].
func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

// Insert assigns a UUID. A taken name yields organization.ErrNameTaken.
func (s *OrganizationStore) Insert(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	org.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO organizations (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		org.ID, org.Name, org.Description, toMillis(org.CreatedAt), toMillis(org.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return organization.Organization{}, organization.ErrNameTaken
		}
		return organization.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return s.FindByID(ctx, org.ID)
}

// FindByID loads the organization and its members.
func (s *OrganizationStore) FindByID(ctx context.Context, id string) (organization.Organization, error) {
	var (
		org                  organization.Organization
		createdAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM organizations WHERE id = ?", id,
	).Scan(&org.ID, &org.Name, &org.Description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return organization.Organization{}, organization.ErrNotFound
	}
	if err != nil {
		return organization.Organization{}, fmt.Errorf("query organization: %w", err)
	}
	org.CreatedAt = fromMillis(createdAt)
	org.UpdatedAt = fromMillis(updatedAt)

	members, err := s.members(ctx, "WHERE organization_id = ?", id)
	if err != nil {
		return organization.Organization{}, err
	}
	org.Members = members[id]
	if org.Members == nil {
		org.Members = []string{}
	}
	return org, nil
}

// List returns every organization, oldest first.
func (s *OrganizationStore) List(ctx context.Context) ([]organization.Organization, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM organizations ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	orgs := []organization.Organization{}
	for rows.Next() {
		var (
			org                  organization.Organization
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		org.CreatedAt = fromMillis(createdAt)
		org.UpdatedAt = fromMillis(updatedAt)
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	// Release the single connection before the members query.
	rows.Close()

	members, err := s.members(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range orgs {
		orgs[i].Members = members[orgs[i].ID]
		if orgs[i].Members == nil {
			orgs[i].Members = []string{}
		}
	}
	return orgs, nil
}

func (s *OrganizationStore) members(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT organization_id, identity_id FROM organization_members "+where+" ORDER BY added_at, rowid",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	out := map[string][]string{}
	for rows.Next() {
		var orgID, identityID string
		if err := rows.Scan(&orgID, &identityID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out[orgID] = append(out[orgID], identityID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	return out, nil
}

// Update applies patch and bumps updated_at.
func (s *OrganizationStore) Update(ctx context.Context, id string, patch organization.Patch, updatedAt time.Time) (organization.Organization, error) {
	var name, description sql.NullString
	if patch.Name != nil {
		name = sql.NullString{String: *patch.Name, Valid: true}
	}
	if patch.Description != nil {
		description = sql.NullString{String: *patch.Description, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations
SET name = COALESCE(?, name), description = COALESCE(?, description), updated_at = ?
WHERE id = ?`,
		name, description, toMillis(updatedAt), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return organization.Organization{}, organization.ErrNameTaken
		}
		return organization.Organization{}, fmt.Errorf("update organization: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return organization.Organization{}, organization.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes the organization and its member rows.
func (s *OrganizationStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM organization_members WHERE organization_id = ?", id); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return organization.ErrNotFound
	}
	return tx.Commit()
}

// AddMember inserts memberID once. Repeat invites leave updated_at alone.
func (s *OrganizationStore) AddMember(ctx context.Context, id, memberID string, updatedAt time.Time) (organization.Organization, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return organization.Organization{}, fmt.Errorf("begin invite: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM organizations WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return organization.Organization{}, organization.ErrNotFound
		}
		return organization.Organization{}, fmt.Errorf("query organization: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO organization_members (organization_id, identity_id, added_at) VALUES (?, ?, ?)",
		id, memberID, toMillis(updatedAt),
	)
	if err != nil {
		return organization.Organization{}, fmt.Errorf("insert member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		if _, err := tx.ExecContext(ctx,
			"UPDATE organizations SET updated_at = ? WHERE id = ?", toMillis(updatedAt), id,
		); err != nil {
			return organization.Organization{}, fmt.Errorf("touch organization: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return organization.Organization{}, fmt.Errorf("commit invite: %w", err)
	}

	return s.FindByID(ctx, id)
}
