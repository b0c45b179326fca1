package stream

import (
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/blake2b"
)

// RowErrorFunc receives rows that could not be turned into an operation.
type RowErrorFunc func(line int, err error)

type columns struct {
	kind   int
	client int
	tx     int
	amount int
}

// Reader turns `type,client,tx,amount` rows into operations and hashes the raw
// input as it goes.
type Reader struct {
	src     io.Reader
	digest  hash.Hash
	onError RowErrorFunc
}

func NewReader(src io.Reader, onError RowErrorFunc) (*Reader, error) {
	digest, err := blake2b.New256(nil)
	if err != nil {
		return nil, fmt.Errorf("init input digest: %w", err)
	}
	if onError == nil {
		onError = func(int, error) {}
	}

	return &Reader{
		src:     src,
		digest:  digest,
		onError: onError,
	}, nil
}

// Stream sends every valid row to out in input order and closes out when done.
// Malformed rows go to the row error callback; only I/O and header errors are returned.
func (r *Reader) Stream(ctx context.Context, out chan<- domain.Operation) error {
	defer close(out)

	cr := csv.NewReader(io.TeeReader(r.src, r.digest))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read header: %w", err)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				r.onError(parseErr.Line, err)
				continue
			}
			return fmt.Errorf("read input: %w", err)
		}

		line, _ := cr.FieldPos(0)
		op, err := parseRow(record, cols)
		if err != nil {
			r.onError(line, err)
			continue
		}

		select {
		case out <- op:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Digest is the hex BLAKE2b-256 of everything read so far.
func (r *Reader) Digest() string {
	return hex.EncodeToString(r.digest.Sum(nil))
}

func parseHeader(header []string) (columns, error) {
	cols := columns{kind: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}

	var missing []string
	if cols.kind < 0 {
		missing = append(missing, "type")
	}
	if cols.client < 0 {
		missing = append(missing, "client")
	}
	if cols.tx < 0 {
		missing = append(missing, "tx")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("input header is missing columns: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

func parseRow(record []string, cols columns) (domain.Operation, error) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	kind, err := domain.ParseOperationKind(field(cols.kind))
	if err != nil {
		return domain.Operation{}, err
	}

	client, err := strconv.ParseUint(field(cols.client), 10, 16)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("invalid client %q: %w", field(cols.client), err)
	}

	tx, err := strconv.ParseUint(field(cols.tx), 10, 64)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("invalid tx %q: %w", field(cols.tx), err)
	}

	op := domain.Operation{
		Kind:     kind,
		ClientID: domain.ClientID(client),
		TxID:     domain.TxID(tx),
	}

	if raw := field(cols.amount); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Operation{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		if err := domain.ValidateAmount(amount); err != nil {
			return domain.Operation{}, fmt.Errorf("invalid amount %q: %w", raw, err)
		}
		op.Amount = &amount
	}

	return op, nil
}
