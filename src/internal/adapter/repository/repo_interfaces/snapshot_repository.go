package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-replay/src/internal/domain"
)

type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, digest string, accounts []domain.Account) error
}
