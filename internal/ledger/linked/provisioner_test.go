package linked

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-bms/meridian-bms/internal/ledger/accounts"
	"github.com/meridian-bms/meridian-bms/internal/ledger/settings"
	"github.com/meridian-bms/meridian-bms/internal/ledger/shared"
)

// memRepo mimics the unique-constraint upsert with a mutex-guarded map.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]accounts.Account
	inserts  int
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[string]accounts.Account)}
}

func (m *memRepo) FindByCode(ctx context.Context, code string) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[code]
	if !ok {
		return accounts.Account{}, fmt.Errorf("%w: account %s", shared.ErrNotFound, code)
	}
	return account, nil
}

func (m *memRepo) InsertIfAbsent(ctx context.Context, account accounts.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if _, exists := m.accounts[account.Code]; exists {
		return nil
	}
	m.accounts[account.Code] = account
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEnsureCreatesSubsidiaryAccount(t *testing.T) {
	repo := newMemRepo()
	p := NewProvisioner(repo, settings.Defaults(), discardLogger())

	id := uuid.MustParse("3f2504e0-4f89-41d3-9a0c-0305e8ab12cd")
	entity := shared.Entity{Type: shared.EntityClient, ID: id}

	account, err := p.Ensure(context.Background(), entity, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "1100-AB12CD", account.Code)
	assert.Equal(t, "Acme Corp (client)", account.Name)
	assert.Equal(t, accounts.AccountTypeAsset, account.Type)
	require.NotNil(t, account.ParentCode)
	assert.Equal(t, "1100", *account.ParentCode)
	assert.True(t, account.IsActive)
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	p := NewProvisioner(repo, settings.Defaults(), discardLogger())
	entity := shared.Entity{Type: shared.EntityEmployee, ID: uuid.New()}

	first, err := p.Ensure(context.Background(), entity, "Jordan Lee")
	require.NoError(t, err)
	second, err := p.Ensure(context.Background(), entity, "Jordan Lee")
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.Len(t, repo.accounts, 1)
	assert.Equal(t, accounts.AccountTypeLiability, first.Type)
}

func TestEnsureConcurrentCallsConverge(t *testing.T) {
	repo := newMemRepo()
	p := NewProvisioner(repo, settings.Defaults(), discardLogger())
	entity := shared.Entity{Type: shared.EntityVendor, ID: uuid.New()}

	var g errgroup.Group
	codes := make([]string, 16)
	for i := 0; i < 16; i++ {
		i := i
		g.Go(func() error {
			account, err := p.Ensure(context.Background(), entity, "Vendor Inc")
			if err != nil {
				return err
			}
			codes[i] = account.Code
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, repo.accounts, 1)
	for _, code := range codes {
		assert.Equal(t, codes[0], code)
	}
}

func TestEnsureUnknownEntityType(t *testing.T) {
	p := NewProvisioner(newMemRepo(), settings.Defaults(), discardLogger())
	_, err := p.Ensure(context.Background(), shared.Entity{Type: "partner", ID: uuid.New()}, "X")
	require.ErrorIs(t, err, shared.ErrValidation)
}
