package domain

import "github.com/shopspring/decimal"

type TxID uint64

type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
)

// TransactionStatus tracks the dispute lifecycle of a recorded transaction.
//
//	WITHOUT_DISPUTES -> DISPUTED -> RESOLVED | CHARGEBACKED
//
// RESOLVED and CHARGEBACKED are terminal.
type TransactionStatus string

const (
	TransactionStatusWithoutDisputes TransactionStatus = "WITHOUT_DISPUTES"
	TransactionStatusDisputed        TransactionStatus = "DISPUTED"
	TransactionStatusResolved        TransactionStatus = "RESOLVED"
	TransactionStatusChargebacked    TransactionStatus = "CHARGEBACKED"
)

// Transition returns the next status or the error describing why the move is illegal.
func (s TransactionStatus) Transition(to TransactionStatus) (TransactionStatus, error) {
	switch to {
	case TransactionStatusDisputed:
		if s != TransactionStatusWithoutDisputes {
			return s, ErrTransactionMultipleDispute
		}
	case TransactionStatusResolved, TransactionStatusChargebacked:
		if s != TransactionStatusDisputed {
			return s, ErrTransactionNotDisputed
		}
	default:
		return s, ErrInvalidStatusTransition
	}

	return to, nil
}

type TransactionRecord struct {
	TxID     TxID
	ClientID ClientID
	Kind     TransactionKind
	Amount   decimal.Decimal
	Status   TransactionStatus
}
