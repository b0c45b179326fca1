package implementations

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAccounts() []domain.Account {
	return []domain.Account{
		{ClientID: 1, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero},
		{ClientID: 2, Available: decimal.RequireFromString("2"), Held: decimal.RequireFromString("0.5"), Locked: true},
	}
}

func TestSaveSnapshotCommitsRunAndAccounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO replay_runs")).
		WithArgs("abc", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO account_snapshots")).
		WithArgs("abc", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewSnapshotRepository(db)
	require.NoError(t, repo.SaveSnapshot(context.Background(), "abc", snapshotAccounts()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSnapshotDuplicateDigest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO replay_runs")).
		WithArgs("abc", 2).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	repo := NewSnapshotRepository(db)
	err = repo.SaveSnapshot(context.Background(), "abc", snapshotAccounts())
	assert.ErrorIs(t, err, domain.ErrRunAlreadyExported)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSnapshotRollsBackOnAccountInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO replay_runs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO account_snapshots")).
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewSnapshotRepository(db)
	err = repo.SaveSnapshot(context.Background(), "abc", snapshotAccounts())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrRunAlreadyExported)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}
