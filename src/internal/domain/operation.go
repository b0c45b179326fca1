package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OperationKind string

const (
	OperationDeposit    OperationKind = "deposit"
	OperationWithdrawal OperationKind = "withdrawal"
	OperationDispute    OperationKind = "dispute"
	OperationResolve    OperationKind = "resolve"
	OperationChargeback OperationKind = "chargeback"
)

func ParseOperationKind(raw string) (OperationKind, error) {
	kind := OperationKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case OperationDeposit, OperationWithdrawal, OperationDispute, OperationResolve, OperationChargeback:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown operation type %q", raw)
	}
}

// Operation is one input row. Amount is nil when the row left it blank.
type Operation struct {
	Kind     OperationKind
	ClientID ClientID
	TxID     TxID
	Amount   *decimal.Decimal
}
