package domain

import "errors"

// AccountError is raised by balance mutations on a single account.
type AccountError string

func (e AccountError) Error() string {
	return string(e)
}

const (
	ErrBalanceOverflow   AccountError = "balance overflow"
	ErrInsufficientMoney AccountError = "insufficient money"
	ErrAccountLocked     AccountError = "account is locked"
	ErrAccountNotFound   AccountError = "account not found"
)

// TransactionError is raised while validating an operation against the transaction history.
type TransactionError string

func (e TransactionError) Error() string {
	return string(e)
}

const (
	ErrNegativeAmount             TransactionError = "transaction provides negative amount"
	ErrEmptyAmount                TransactionError = "transaction amount is missing"
	ErrDuplicateTransaction       TransactionError = "transaction already exists"
	ErrOriginTransactionNotFound  TransactionError = "origin transaction not found"
	ErrTransactionNotDisputed     TransactionError = "transaction not disputed"
	ErrTransactionMultipleDispute TransactionError = "multiple transaction dispute"
	ErrInvalidStatusTransition    TransactionError = "invalid transaction status transition"
)

var ErrRunAlreadyExported = errors.New("replay run already exported")

// ErrorKind returns the bare error kind carried by err, or "unknown".
func ErrorKind(err error) string {
	var accountErr AccountError
	if errors.As(err, &accountErr) {
		return string(accountErr)
	}

	var transactionErr TransactionError
	if errors.As(err, &transactionErr) {
		return string(transactionErr)
	}

	return "unknown"
}
