package repo_interfaces

import "github.com/api-sage/ledger-replay/src/internal/domain"

// AccountRepository is the ledger store. Apply runs mutate on a private copy of the
// account and commits it only when mutate returns nil.
type AccountRepository interface {
	GetOrCreate(clientID domain.ClientID) domain.Account
	Get(clientID domain.ClientID) (domain.Account, bool)
	Apply(clientID domain.ClientID, mutate func(account *domain.Account) error) error
	Snapshot() []domain.Account
}
