package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goTenant "github.com/MrEthical07/goTenant"
	"go.uber.org/zap"
)

// Service applies validation and membership rules on top of a [Store].
type Service struct {
	store   Store
	members MemberLookup
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a service. A nil logger discards output.
func NewService(store Store, members MemberLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		members: members,
		logger:  logger.Named("organization"),
		now:     time.Now,
	}
}

// Create validates and stores a new organization with no members.
func (s *Service) Create(ctx context.Context, name, description string) (Organization, error) {
	name, err := validateName(name)
	if err != nil {
		return Organization{}, err
	}
	if err := validateDescription(description); err != nil {
		return Organization{}, err
	}

	now := s.now().UTC()
	created, err := s.store.Insert(ctx, Organization{
		Name:        name,
		Description: description,
		Members:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Organization{}, s.storeError("create", err)
	}

	s.logger.Info("organization created", zap.String("organization_id", created.ID))
	return created, nil
}

// List returns every organization.
func (s *Service) List(ctx context.Context) ([]Organization, error) {
	orgs, err := s.store.List(ctx)
	if err != nil {
		return nil, s.storeError("list", err)
	}
	if orgs == nil {
		orgs = []Organization{}
	}
	return orgs, nil
}

// Get returns one organization or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Organization, error) {
	if strings.TrimSpace(id) == "" {
		return Organization{}, ErrNotFound
	}
	org, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Organization{}, s.storeError("get", err)
	}
	return org, nil
}

// Update applies patch. An empty patch only reloads the organization.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Organization, error) {
	if strings.TrimSpace(id) == "" {
		return Organization{}, ErrNotFound
	}
	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return Organization{}, err
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return Organization{}, err
		}
	}
	if patch.Name == nil && patch.Description == nil {
		return s.Get(ctx, id)
	}

	updated, err := s.store.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		return Organization{}, s.storeError("update", err)
	}
	return updated, nil
}

// Delete removes an organization or reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError("delete", err)
	}
	s.logger.Info("organization deleted", zap.String("organization_id", id))
	return nil
}

// Invite adds the identity registered under email to the organization's
// members. Inviting an existing member is a no-op.
func (s *Service) Invite(ctx context.Context, id, email string) (Organization, error) {
	if strings.TrimSpace(id) == "" {
		return Organization{}, ErrNotFound
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return Organization{}, fmt.Errorf("%w: user_email is required", ErrInvalid)
	}

	identity, err := s.members.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, goTenant.ErrIdentityNotFound) {
			return Organization{}, ErrUnknownMember
		}
		return Organization{}, s.storeError("invite lookup", err)
	}

	org, err := s.store.AddMember(ctx, id, identity.ID, s.now().UTC())
	if err != nil {
		return Organization{}, s.storeError("invite", err)
	}

	s.logger.Info("member invited",
		zap.String("organization_id", id),
		zap.String("user_id", identity.ID),
	)
	return org, nil
}

func (s *Service) storeError(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNameTaken) || errors.Is(err, ErrInvalid) {
		return err
	}
	s.logger.Error("organization store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %v", ErrStore, err)
}
