package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/api-sage/ledger-replay/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepositoryGetOrCreate(t *testing.T) {
	repo := memory.NewAccountRepository()

	_, ok := repo.Get(4)
	assert.False(t, ok)

	account := repo.GetOrCreate(4)
	assert.Equal(t, domain.ClientID(4), account.ClientID)
	assert.True(t, account.Available.IsZero())
	assert.True(t, account.Held.IsZero())
	assert.False(t, account.Locked)

	_, ok = repo.Get(4)
	assert.True(t, ok)
	assert.Len(t, repo.Snapshot(), 1)
}

func TestAccountRepositoryApplyCommitsOnSuccess(t *testing.T) {
	repo := memory.NewAccountRepository()

	err := repo.Apply(1, func(account *domain.Account) error {
		return account.Credit(decimal.RequireFromString("2.50"))
	})
	require.NoError(t, err)

	account, ok := repo.Get(1)
	require.True(t, ok)
	assert.Equal(t, "2.5", account.Available.String())
	assert.Equal(t, domain.ClientID(1), account.ClientID)
}

func TestAccountRepositoryApplyDiscardsFailedMutation(t *testing.T) {
	repo := memory.NewAccountRepository()
	require.NoError(t, repo.Apply(1, func(account *domain.Account) error {
		return account.Credit(decimal.NewFromInt(10))
	}))

	boom := errors.New("boom")
	err := repo.Apply(1, func(account *domain.Account) error {
		if err := account.Credit(decimal.NewFromInt(5)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	account, _ := repo.Get(1)
	assert.True(t, account.Available.Equal(decimal.NewFromInt(10)))
}

func TestAccountRepositoryFailedApplyDoesNotCreateAccount(t *testing.T) {
	repo := memory.NewAccountRepository()

	err := repo.Apply(9, func(account *domain.Account) error {
		return account.Debit(decimal.NewFromInt(1))
	})
	require.ErrorIs(t, err, domain.ErrInsufficientMoney)

	_, ok := repo.Get(9)
	assert.False(t, ok)
	assert.Empty(t, repo.Snapshot())
}

func TestAccountRepositoryRejectsUnlockAndInvalidState(t *testing.T) {
	repo := memory.NewAccountRepository()
	require.NoError(t, repo.Apply(1, func(account *domain.Account) error {
		account.Locked = true
		return nil
	}))

	err := repo.Apply(1, func(account *domain.Account) error {
		account.Locked = false
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrAccountLocked)

	err = repo.Apply(1, func(account *domain.Account) error {
		account.Held = decimal.NewFromInt(-1)
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientMoney)

	account, _ := repo.Get(1)
	assert.True(t, account.Locked)
	assert.True(t, account.Held.IsZero())
}

func TestAccountRepositorySnapshotIsOrdered(t *testing.T) {
	repo := memory.NewAccountRepository()
	for _, id := range []domain.ClientID{5, 2, 9, 1} {
		repo.GetOrCreate(id)
	}

	snapshot := repo.Snapshot()
	require.Len(t, snapshot, 4)
	for i, want := range []domain.ClientID{1, 2, 5, 9} {
		assert.Equal(t, want, snapshot[i].ClientID)
	}
}

func TestAccountRepositoryConcurrentApply(t *testing.T) {
	repo := memory.NewAccountRepository()
	one := decimal.RequireFromString("0.01")

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				clientID := domain.ClientID(i % 4)
				_ = repo.Apply(clientID, func(account *domain.Account) error {
					return account.Credit(one)
				})
			}
		}(worker)
	}
	wg.Wait()

	snapshot := repo.Snapshot()
	require.Len(t, snapshot, 4)
	for _, account := range snapshot {
		assert.Equal(t, "10", account.Available.String(), "client %d", account.ClientID)
		assert.True(t, account.Total().Equal(account.Available.Add(account.Held)))
	}
}
