package services

import (
	"fmt"

	"github.com/api-sage/ledger-replay/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/api-sage/ledger-replay/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.TransactionService = (*TransactionService)(nil)

type Options struct {
	// DisputeWithdrawals lets disputes target withdrawals as well as deposits.
	DisputeWithdrawals bool
}

func DefaultOptions() Options {
	return Options{DisputeWithdrawals: true}
}

// TransactionService applies input operations to the ledger and the transaction history.
// Each operation either fully applies or leaves both stores untouched.
type TransactionService struct {
	accountRepo     repo_interfaces.AccountRepository
	transactionRepo repo_interfaces.TransactionRepository
	options         Options
}

func NewTransactionService(
	accountRepo repo_interfaces.AccountRepository,
	transactionRepo repo_interfaces.TransactionRepository,
	options Options,
) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		options:         options,
	}
}

func (s *TransactionService) Execute(op domain.Operation) error {
	var err error
	switch op.Kind {
	case domain.OperationDeposit:
		err = s.deposit(op)
	case domain.OperationWithdrawal:
		err = s.withdraw(op)
	case domain.OperationDispute:
		err = s.dispute(op)
	case domain.OperationResolve:
		err = s.resolve(op)
	case domain.OperationChargeback:
		err = s.chargeback(op)
	default:
		err = fmt.Errorf("unsupported operation %q", op.Kind)
	}

	if err != nil {
		operationsTotal.WithLabelValues(string(op.Kind), "failed").Inc()
		operationFailuresTotal.WithLabelValues(domain.ErrorKind(err)).Inc()
		return fmt.Errorf("%s tx %d client %d: %w", op.Kind, op.TxID, op.ClientID, err)
	}

	operationsTotal.WithLabelValues(string(op.Kind), "applied").Inc()
	logger.Debug("transaction service operation applied", logger.Fields{
		"type":   op.Kind,
		"client": op.ClientID,
		"tx":     op.TxID,
	})
	return nil
}

func (s *TransactionService) deposit(op domain.Operation) error {
	amount, err := requireAmount(op)
	if err != nil {
		return err
	}
	if _, exists := s.transactionRepo.Get(op.TxID); exists {
		return domain.ErrDuplicateTransaction
	}

	return s.accountRepo.Apply(op.ClientID, func(account *domain.Account) error {
		if err := account.Credit(amount); err != nil {
			return err
		}
		return s.record(account, op, domain.TransactionKindDeposit, amount)
	})
}

func (s *TransactionService) withdraw(op domain.Operation) error {
	amount, err := requireAmount(op)
	if err != nil {
		return err
	}
	if _, exists := s.transactionRepo.Get(op.TxID); exists {
		return domain.ErrDuplicateTransaction
	}

	return s.accountRepo.Apply(op.ClientID, func(account *domain.Account) error {
		if err := account.Debit(amount); err != nil {
			return err
		}
		return s.record(account, op, domain.TransactionKindWithdrawal, amount)
	})
}

func (s *TransactionService) dispute(op domain.Operation) error {
	origin, err := s.origin(op)
	if err != nil {
		return err
	}
	if _, err := origin.Status.Transition(domain.TransactionStatusDisputed); err != nil {
		return err
	}

	return s.accountRepo.Apply(op.ClientID, func(account *domain.Account) error {
		if err := account.Hold(origin.Amount); err != nil {
			return err
		}
		return s.transition(account, origin.TxID, domain.TransactionStatusDisputed)
	})
}

func (s *TransactionService) resolve(op domain.Operation) error {
	origin, err := s.origin(op)
	if err != nil {
		return err
	}
	if _, err := origin.Status.Transition(domain.TransactionStatusResolved); err != nil {
		return err
	}

	return s.accountRepo.Apply(op.ClientID, func(account *domain.Account) error {
		if err := account.Release(origin.Amount); err != nil {
			return err
		}
		return s.transition(account, origin.TxID, domain.TransactionStatusResolved)
	})
}

func (s *TransactionService) chargeback(op domain.Operation) error {
	origin, err := s.origin(op)
	if err != nil {
		return err
	}
	if _, err := origin.Status.Transition(domain.TransactionStatusChargebacked); err != nil {
		return err
	}

	return s.accountRepo.Apply(op.ClientID, func(account *domain.Account) error {
		if err := account.Reverse(origin.Amount); err != nil {
			return err
		}
		return s.transition(account, origin.TxID, domain.TransactionStatusChargebacked)
	})
}

// origin resolves the record a dispute-family operation refers to. Records owned by
// another client are reported as missing.
func (s *TransactionService) origin(op domain.Operation) (domain.TransactionRecord, error) {
	record, ok := s.transactionRepo.Get(op.TxID)
	if !ok || record.ClientID != op.ClientID {
		return domain.TransactionRecord{}, domain.ErrOriginTransactionNotFound
	}
	if record.Kind == domain.TransactionKindWithdrawal && !s.options.DisputeWithdrawals {
		return domain.TransactionRecord{}, domain.ErrOriginTransactionNotFound
	}

	return record, nil
}

// record and transition run inside the account critical section. The history write is
// the last step that can fail, so a rejected write also discards the account change.
func (s *TransactionService) record(account *domain.Account, op domain.Operation, kind domain.TransactionKind, amount decimal.Decimal) error {
	if err := account.Validate(); err != nil {
		return err
	}

	return s.transactionRepo.InsertNew(domain.TransactionRecord{
		TxID:     op.TxID,
		ClientID: op.ClientID,
		Kind:     kind,
		Amount:   amount,
		Status:   domain.TransactionStatusWithoutDisputes,
	})
}

func (s *TransactionService) transition(account *domain.Account, txID domain.TxID, status domain.TransactionStatus) error {
	if err := account.Validate(); err != nil {
		return err
	}

	return s.transactionRepo.SetStatus(txID, status)
}

func requireAmount(op domain.Operation) (decimal.Decimal, error) {
	if op.Amount == nil {
		return decimal.Zero, domain.ErrEmptyAmount
	}
	if op.Amount.IsNegative() {
		return decimal.Zero, domain.ErrNegativeAmount
	}
	if err := domain.ValidateAmount(*op.Amount); err != nil {
		return decimal.Zero, err
	}

	return *op.Amount, nil
}
