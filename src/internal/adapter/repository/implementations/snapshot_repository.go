package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/lib/pq"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshot writes the run header and every account row in one transaction.
// A digest that was already exported yields domain.ErrRunAlreadyExported.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, digest string, accounts []domain.Account) error {
	logger.Info("snapshot repository save snapshot", logger.Fields{
		"digest":   digest,
		"accounts": len(accounts),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertRun = `
INSERT INTO replay_runs (digest, accounts)
VALUES ($1, $2)`

	if _, err := tx.ExecContext(ctx, insertRun, digest, len(accounts)); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRunAlreadyExported
		}
		logger.Error("snapshot repository insert run failed", err, logger.Fields{
			"digest": digest,
		})
		return fmt.Errorf("insert replay run: %w", err)
	}

	clientIDs := make([]int64, 0, len(accounts))
	available := make([]string, 0, len(accounts))
	held := make([]string, 0, len(accounts))
	total := make([]string, 0, len(accounts))
	locked := make([]bool, 0, len(accounts))
	for _, account := range accounts {
		clientIDs = append(clientIDs, int64(account.ClientID))
		available = append(available, account.Available.String())
		held = append(held, account.Held.String())
		total = append(total, account.Total().String())
		locked = append(locked, account.Locked)
	}

	const insertAccounts = `
INSERT INTO account_snapshots (run_digest, client_id, available, held, total, locked)
SELECT $1, client_id, available, held, total, locked
FROM unnest($2::integer[], $3::numeric[], $4::numeric[], $5::numeric[], $6::boolean[])
	AS s (client_id, available, held, total, locked)`

	if _, err := tx.ExecContext(
		ctx,
		insertAccounts,
		digest,
		pq.Array(clientIDs),
		pq.Array(available),
		pq.Array(held),
		pq.Array(total),
		pq.Array(locked),
	); err != nil {
		logger.Error("snapshot repository insert accounts failed", err, logger.Fields{
			"digest": digest,
		})
		return fmt.Errorf("insert account snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot tx: %w", err)
	}

	logger.Info("snapshot repository save snapshot success", logger.Fields{
		"digest":   digest,
		"accounts": len(accounts),
	})
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
