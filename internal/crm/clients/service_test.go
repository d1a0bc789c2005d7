package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

type memRepo struct {
	clients map[uuid.UUID]Client
}

func newMemRepo() *memRepo {
	return &memRepo{clients: make(map[uuid.UUID]Client)}
}

func (m *memRepo) Create(ctx context.Context, client Client) (Client, error) {
	client.IsActive = true
	m.clients[client.ID] = client
	return client, nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return Client{}, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	return client, nil
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	var out []Client
	for _, client := range m.clients {
		if filter.IsActive != nil && client.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, client)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return Client{}, fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	if in.Name != nil {
		client.Name = *in.Name
	}
	if in.Email != nil {
		client.Email = *in.Email
	}
	m.clients[id] = client
	return client, nil
}

func (m *memRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	client, ok := m.clients[id]
	if !ok {
		return fmt.Errorf("%w: client %s", shared.ErrNotFound, id)
	}
	client.IsActive = active
	m.clients[id] = client
	return nil
}

type stubProvisioner struct {
	err     error
	ensured []shared.Entity
}

func (s *stubProvisioner) Ensure(ctx context.Context, entity shared.Entity, displayName string) (accounts.Account, error) {
	s.ensured = append(s.ensured, entity)
	if s.err != nil {
		return accounts.Account{}, s.err
	}
	return accounts.Account{Code: "1100-" + entity.CodeSuffix(), Name: displayName, Type: accounts.AccountTypeAsset}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCreateProvisionsReceivable(t *testing.T) {
	repo := newMemRepo()
	prov := &stubProvisioner{}
	svc := NewService(repo, prov, discardLogger())

	client, err := svc.Create(context.Background(), "  Acme Corp  ", "billing@acme.test", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", client.Name)

	require.Len(t, prov.ensured, 1)
	assert.Equal(t, shared.EntityClient, prov.ensured[0].Type)
	assert.Equal(t, client.ID, prov.ensured[0].ID)
}

func TestCreateSurvivesProvisionerFailure(t *testing.T) {
	repo := newMemRepo()
	prov := &stubProvisioner{err: errors.New("postgres down")}
	svc := NewService(repo, prov, discardLogger())

	client, err := svc.Create(context.Background(), "Acme Corp", "", "", "")
	require.NoError(t, err)

	// The client row stands; provisioning retries before the first invoice.
	stored, err := svc.Get(context.Background(), client.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemRepo(), &stubProvisioner{}, discardLogger())

	_, err := svc.Create(context.Background(), "   ", "", "", "")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateRejectsEmptyName(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &stubProvisioner{}, discardLogger())

	client, err := svc.Create(context.Background(), "Acme Corp", "", "", "")
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(context.Background(), client.ID, UpdateInput{Name: &empty})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeactivateKeepsClientRow(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &stubProvisioner{}, discardLogger())

	client, err := svc.Create(context.Background(), "Acme Corp", "", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), client.ID))

	stored, err := svc.Get(context.Background(), client.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}
