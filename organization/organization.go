package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	goTenant "github.com/MrEthical07/goTenant"
)

// Description length bounds, counted in runes.
const (
	MinDescriptionLength = 12
	MaxDescriptionLength = 120
)

var (
	// ErrNotFound is returned for absent or malformed organization ids.
	ErrNotFound = errors.New("organization not found")
	// ErrNameTaken is returned when another organization has the name.
	ErrNameTaken = errors.New("organization name already exists")
	// ErrInvalid wraps every input validation failure.
	ErrInvalid = errors.New("invalid organization")
	// ErrUnknownMember is returned when an invitee has no identity.
	ErrUnknownMember = errors.New("no user found with that email")
	// ErrStore wraps unexpected store failures.
	ErrStore = errors.New("organization store failure")
)

// Organization is a tenant. Members holds identity IDs and never contains
// duplicates.
type Organization struct {
	ID          string    `json:"organization_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []string  `json:"organization_members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
}

// Store persists organizations. Implementations return ErrNotFound for
// absent or malformed ids and ErrNameTaken on a unique name violation.
type Store interface {
	Insert(ctx context.Context, org Organization) (Organization, error)
	FindByID(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (Organization, error)
	Delete(ctx context.Context, id string) error
	// AddMember adds memberID with set semantics.
	AddMember(ctx context.Context, id, memberID string, updatedAt time.Time) (Organization, error)
}

// MemberLookup resolves invitees. goTenant.IdentityStore satisfies it.
type MemberLookup interface {
	FindByEmail(ctx context.Context, email string) (goTenant.Identity, error)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: organization name is required", ErrInvalid)
	}
	return name, nil
}

func validateDescription(description string) error {
	n := utf8.RuneCountInString(description)
	switch {
	case n == 0:
		return fmt.Errorf("%w: description is required", ErrInvalid)
	case n < MinDescriptionLength:
		return fmt.Errorf("%w: description must be at least %d characters", ErrInvalid, MinDescriptionLength)
	case n > MaxDescriptionLength:
		return fmt.Errorf("%w: description must not exceed %d characters", ErrInvalid, MaxDescriptionLength)
	}
	return nil
}
