package services

import (
	"context"
	"errors"

	"github.com/api-sage/ledger-replay/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/api-sage/ledger-replay/src/internal/usecase/service_interfaces"
)

var _ service_interfaces.ExportService = (*ExportService)(nil)

type ExportService struct {
	snapshotRepo repo_interfaces.SnapshotRepository
	accountRepo  repo_interfaces.AccountRepository
}

func NewExportService(
	snapshotRepo repo_interfaces.SnapshotRepository,
	accountRepo repo_interfaces.AccountRepository,
) *ExportService {
	return &ExportService{
		snapshotRepo: snapshotRepo,
		accountRepo:  accountRepo,
	}
}

// Export stores the final ledger once per input digest. Re-exporting the same input is a no-op.
func (s *ExportService) Export(ctx context.Context, digest string) error {
	accounts := s.accountRepo.Snapshot()

	logger.Info("export service save snapshot request", logger.Fields{
		"digest":   digest,
		"accounts": len(accounts),
	})

	if err := s.snapshotRepo.SaveSnapshot(ctx, digest, accounts); err != nil {
		if errors.Is(err, domain.ErrRunAlreadyExported) {
			exportsTotal.WithLabelValues("skipped").Inc()
			logger.Info("export service snapshot already exported", logger.Fields{
				"digest": digest,
			})
			return nil
		}

		exportsTotal.WithLabelValues("failed").Inc()
		logger.Error("export service save snapshot failed", err, logger.Fields{
			"digest": digest,
		})
		return err
	}

	exportsTotal.WithLabelValues("saved").Inc()
	logger.Info("export service save snapshot success", logger.Fields{
		"digest":   digest,
		"accounts": len(accounts),
	})
	return nil
}
