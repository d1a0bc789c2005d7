package clients

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// AccountProvisioner ensures a subsidiary ledger account for an entity.
type AccountProvisioner interface {
	Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error)
}

// Service manages the client registry. Ledger provisioning is best-effort
// here; the provisioner runs again before the first invoice posting, so a
// failure at create time costs nothing but a warning.
type Service struct {
	repo        Repository
	provisioner AccountProvisioner
	logger      *slog.Logger
}

func NewService(repo Repository, provisioner AccountProvisioner, logger *slog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, logger: logger}
}

// Create registers a client and provisions its receivable account.
func (s *Service) Create(ctx context.Context, name, email, phone, notes string) (Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Client{}, fmt.Errorf("%w: client name required", shared.ErrValidation)
	}
	client := Client{ID: uuid.New(), Name: name, Email: strings.TrimSpace(email), Phone: phone, Notes: notes}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return Client{}, err
	}

	if s.provisioner != nil {
		entity := shared.Entity{Type: shared.EntityClient, ID: created.ID}
		if _, err := s.provisioner.Ensure(ctx, entity, created.Name); err != nil {
			s.logger.Warn("client account provisioning deferred",
				slog.String("client_id", created.ID.String()), slog.Any("error", err))
		}
	}
	return created, nil
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Client, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns clients matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	return s.repo.List(ctx, filter)
}

// Update applies partial changes to a client.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Client, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return Client{}, fmt.Errorf("%w: client name cannot be empty", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, in)
}

// Deactivate hides a client from active listings. The client row and its
// ledger history are retained.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}
