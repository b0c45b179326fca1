package service_interfaces

import "github.com/api-sage/ledger-replay/src/internal/domain"

// TransactionService applies one operation to the ledger.
type TransactionService interface {
	Execute(op domain.Operation) error
}
