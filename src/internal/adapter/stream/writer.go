package stream

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/shopspring/decimal"
)

var outputHeader = []string{"client", "available", "held", "total", "locked"}

type Writer struct {
	csv *csv.Writer
}

func NewWriter(dst io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(dst)}
}

func (w *Writer) WriteAccounts(accounts []domain.Account) error {
	if err := w.csv.Write(outputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, account := range accounts {
		row := []string{
			strconv.FormatUint(uint64(account.ClientID), 10),
			FormatAmount(account.Available),
			FormatAmount(account.Held),
			FormatAmount(account.Total()),
			strconv.FormatBool(account.Locked),
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", account.ClientID, err)
		}
	}

	w.csv.Flush()
	return w.csv.Error()
}

// FormatAmount renders value with the scale it was computed at, so 1.0 stays "1.0".
func FormatAmount(value decimal.Decimal) string {
	if exp := value.Exponent(); exp < 0 {
		return value.StringFixed(-exp)
	}

	return value.String()
}
