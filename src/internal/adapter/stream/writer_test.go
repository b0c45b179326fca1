package stream_test

import (
	"bytes"
	"testing"

	"github.com/api-sage/ledger-replay/src/internal/adapter/stream"
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterKeepsComputedScale(t *testing.T) {
	one := decimal.RequireFromString("1.0")

	disputed := domain.NewAccount(1)
	require.NoError(t, disputed.Credit(one))
	require.NoError(t, disputed.Hold(one))

	charged := domain.NewAccount(2)
	require.NoError(t, charged.Credit(decimal.RequireFromString("2.5000")))
	require.NoError(t, charged.Hold(decimal.RequireFromString("0.5")))
	require.NoError(t, charged.Reverse(decimal.RequireFromString("0.5")))

	var buf bytes.Buffer
	require.NoError(t, stream.NewWriter(&buf).WriteAccounts([]domain.Account{disputed, charged, domain.NewAccount(3)}))

	want := "client,available,held,total,locked\n" +
		"1,0.0,1.0,1.0,false\n" +
		"2,2.0000,0.0,2.0000,true\n" +
		"3,0,0,0,false\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"1.0":     "1.0",
		"0.0001":  "0.0001",
		"-4.50":   "-4.50",
		"12":      "12",
		"1e3":     "1000",
		"3.14159": "3.14159",
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, stream.FormatAmount(decimal.RequireFromString(raw)))
		})
	}
}
