package memory

import (
	"sync"

	"github.com/api-sage/ledger-replay/src/internal/domain"
)

type TransactionRepository struct {
	mu      sync.RWMutex
	records map[domain.TxID]domain.TransactionRecord
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{records: make(map[domain.TxID]domain.TransactionRecord)}
}

func (r *TransactionRepository) InsertNew(record domain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[record.TxID]; ok {
		return domain.ErrDuplicateTransaction
	}

	if record.Status == "" {
		record.Status = domain.TransactionStatusWithoutDisputes
	}
	r.records[record.TxID] = record
	return nil
}

func (r *TransactionRepository) Get(txID domain.TxID) (domain.TransactionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[txID]
	return record, ok
}

// SetStatus moves a record along the dispute lifecycle, failing on unknown ids and illegal moves.
func (r *TransactionRepository) SetStatus(txID domain.TxID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[txID]
	if !ok {
		return domain.ErrOriginTransactionNotFound
	}

	next, err := record.Status.Transition(status)
	if err != nil {
		return err
	}

	record.Status = next
	r.records[txID] = record
	return nil
}

func (r *TransactionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}
