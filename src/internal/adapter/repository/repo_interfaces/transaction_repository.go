package repo_interfaces

import "github.com/api-sage/ledger-replay/src/internal/domain"

type TransactionRepository interface {
	InsertNew(record domain.TransactionRecord) error
	Get(txID domain.TxID) (domain.TransactionRecord, bool)
	SetStatus(txID domain.TxID, status domain.TransactionStatus) error
	Len() int
}
