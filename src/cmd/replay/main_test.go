package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REPLAY_WORKERS", "REPLAY_CHANNEL_SIZE", "DISPUTE_WITHDRAWALS", "LOG_LEVEL",
		"LOG_FORMAT", "METRICS_ADDR", "OPS_USERNAME", "OPS_PASSWORD", "DATABASE_DSN",
		"EXPORT_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
	logger.SetOutput(io.Discard)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
}

func TestRunReplaysFileToStdout(t *testing.T) {
	isolate(t)
	path := writeInput(t, "type, client, tx, amount\n"+
		"deposit, 1, 1, 1.0\n"+
		"deposit, 2, 2, 2.0\n"+
		"deposit, 1, 3, 2.0\n"+
		"withdrawal, 1, 4, 1.5\n"+
		"withdrawal, 2, 5, 3.0\n")

	var out bytes.Buffer
	code := run([]string{path}, &out)

	require.Equal(t, 0, code)
	assert.Equal(t, "client,available,held,total,locked\n"+
		"1,1.5,0,1.5,false\n"+
		"2,2.0,0,2.0,false\n", out.String())
}

func TestRunPartitionedMatchesSequential(t *testing.T) {
	isolate(t)
	path := writeInput(t, "type,client,tx,amount\n"+
		"deposit,1,1,10\n"+
		"deposit,2,2,5\n"+
		"dispute,1,1,\n"+
		"deposit,3,3,1.25\n"+
		"chargeback,1,1,\n"+
		"withdrawal,3,4,0.25\n")

	var sequential, partitioned bytes.Buffer
	require.Equal(t, 0, run([]string{path}, &sequential))
	require.Equal(t, 0, run([]string{"-workers", "4", path}, &partitioned))

	assert.Equal(t, sequential.String(), partitioned.String())
	assert.Contains(t, sequential.String(), "1,0,0,0,true\n")
}

func TestRunSkipsMalformedRows(t *testing.T) {
	isolate(t)
	path := writeInput(t, "type,client,tx,amount\n"+
		"deposit,1,1,1\n"+
		"teleport,1,2,1\n"+
		"deposit,x,3,1\n"+
		"deposit,1,4,2\n")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{path}, &out))
	assert.Equal(t, "client,available,held,total,locked\n1,3,0,3,false\n", out.String())
}

func TestRunLogsRecordedTransactions(t *testing.T) {
	isolate(t)
	hook := test.NewLocal(logger.Logrus())
	path := writeInput(t, "type,client,tx,amount\n"+
		"deposit,1,1,5\n"+
		"withdrawal,1,2,9\n"+
		"withdrawal,1,3,1\n"+
		"dispute,1,1,\n")

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{path}, &out))

	var finished bool
	for _, entry := range hook.AllEntries() {
		if entry.Message != "replay finished" {
			continue
		}
		finished = true
		assert.Equal(t, 2, entry.Data["recorded"])
		assert.Equal(t, 4, entry.Data["processed"])
		assert.Equal(t, 3, entry.Data["applied"])
	}
	assert.True(t, finished)
}

func TestRunFailsOnMissingFile(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "missing.csv")}, &out))
	assert.Empty(t, out.String())
}

func TestRunFailsOnBadHeader(t *testing.T) {
	isolate(t)
	path := writeInput(t, "kind,account\ndeposit,1\n")

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &out))
	assert.Empty(t, out.String())
}

func TestRunRequiresExactlyOneInput(t *testing.T) {
	isolate(t)

	var out bytes.Buffer
	assert.Equal(t, 2, run(nil, &out))
	assert.Equal(t, 2, run([]string{"a.csv", "b.csv"}, &out))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("REPLAY_WORKERS", "lots")

	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"ignored.csv"}, &out))
}
