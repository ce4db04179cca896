package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/google/uuid"
)

// IdentityStore implements goTenant.IdentityStore.
type IdentityStore struct {
	db *sql.DB
}

// NewIdentityStore returns a store over a database opened with [Open].
func NewIdentityStore(db *sql.DB) *IdentityStore {
	return &IdentityStore{db: db}
}

const identityColumns = "id, name, email, password_hash, role, created_at"

// FindByEmail looks up a normalized email.
func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (goTenant.Identity, error) {
	return s.findOne(ctx, "SELECT "+identityColumns+" FROM identities WHERE email = ?", email)
}

// FindByID returns goTenant.ErrIdentityNotFound for unknown ids.
func (s *IdentityStore) FindByID(ctx context.Context, id string) (goTenant.Identity, error) {
	return s.findOne(ctx, "SELECT "+identityColumns+" FROM identities WHERE id = ?", id)
}

func (s *IdentityStore) findOne(ctx context.Context, query string, arg string) (goTenant.Identity, error) {
	var (
		identity  goTenant.Identity
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.PasswordHash,
		&identity.Role,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return goTenant.Identity{}, goTenant.ErrIdentityNotFound
	}
	if err != nil {
		return goTenant.Identity{}, fmt.Errorf("query identity: %w", err)
	}
	identity.CreatedAt = fromMillis(createdAt)
	return identity, nil
}

// Insert assigns a UUID and stores identity. A taken email yields
// goTenant.ErrIdentityExists.
func (s *IdentityStore) Insert(ctx context.Context, identity goTenant.Identity) (goTenant.Identity, error) {
	identity.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO identities ("+identityColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		identity.ID,
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		identity.Role,
		toMillis(identity.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goTenant.Identity{}, goTenant.ErrIdentityExists
		}
		return goTenant.Identity{}, fmt.Errorf("insert identity: %w", err)
	}
	identity.CreatedAt = fromMillis(toMillis(identity.CreatedAt))
	return identity, nil
}

// UpdatePasswordHash replaces the stored hash of id.
func (s *IdentityStore) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE identities SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n == 0 {
		return goTenant.ErrIdentityNotFound
	}
	return nil
}
