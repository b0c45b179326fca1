package models

import (
	"github.com/api-sage/ledger-replay/src/internal/adapter/stream"
	"github.com/api-sage/ledger-replay/src/internal/domain"
)

type AccountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// NewAccountResponse renders balances with the same scale as the CSV output.
func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		Client:    uint16(account.ClientID),
		Available: stream.FormatAmount(account.Available),
		Held:      stream.FormatAmount(account.Held),
		Total:     stream.FormatAmount(account.Total()),
		Locked:    account.Locked,
	}
}

func NewAccountsResponse(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, NewAccountResponse(account))
	}
	return out
}
