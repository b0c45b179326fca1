package services

import (
	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

func OperationsCounter(kind domain.OperationKind, result string) prometheus.Counter {
	return operationsTotal.WithLabelValues(string(kind), result)
}

func ExportsCounter(result string) prometheus.Counter {
	return exportsTotal.WithLabelValues(result)
}
