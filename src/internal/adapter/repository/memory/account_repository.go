package memory

import (
	"sort"
	"sync"

	"github.com/api-sage/ledger-replay/src/internal/domain"
)

type accountSlot struct {
	mu      sync.Mutex
	account domain.Account
	exists  bool
}

// AccountRepository keeps one lock per client so unrelated accounts never contend.
type AccountRepository struct {
	mu    sync.RWMutex
	slots map[domain.ClientID]*accountSlot
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{slots: make(map[domain.ClientID]*accountSlot)}
}

func (r *AccountRepository) slot(clientID domain.ClientID) *accountSlot {
	r.mu.RLock()
	s, ok := r.slots[clientID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok = r.slots[clientID]; ok {
		return s
	}

	s = &accountSlot{account: domain.NewAccount(clientID)}
	r.slots[clientID] = s
	return s
}

func (r *AccountRepository) GetOrCreate(clientID domain.ClientID) domain.Account {
	s := r.slot(clientID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exists = true
	return s.account
}

func (r *AccountRepository) Get(clientID domain.ClientID) (domain.Account, bool) {
	r.mu.RLock()
	s, ok := r.slots[clientID]
	r.mu.RUnlock()
	if !ok {
		return domain.Account{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exists {
		return domain.Account{}, false
	}

	return s.account, true
}

// Apply runs mutate against a copy of the account under the account lock. The copy
// replaces the stored account only when mutate succeeds and the result is valid.
// An unseen client that fails to mutate stays unseen.
func (r *AccountRepository) Apply(clientID domain.ClientID, mutate func(account *domain.Account) error) error {
	s := r.slot(clientID)
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.account
	if err := mutate(&work); err != nil {
		return err
	}

	if s.account.Locked && !work.Locked {
		return domain.ErrAccountLocked
	}
	if err := work.Validate(); err != nil {
		return err
	}

	work.ClientID = clientID
	s.account = work
	s.exists = true
	return nil
}

func (r *AccountRepository) Snapshot() []domain.Account {
	r.mu.RLock()
	slots := make([]*accountSlot, 0, len(r.slots))
	for _, s := range r.slots {
		slots = append(slots, s)
	}
	r.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		if s.exists {
			accounts = append(accounts, s.account)
		}
		s.mu.Unlock()
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].ClientID < accounts[j].ClientID
	})

	return accounts
}
