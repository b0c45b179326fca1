package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_operations_total",
		Help: "Operations executed by the transaction engine",
	}, []string{"operation", "result"})

	operationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_operation_failures_total",
		Help: "Rejected operations by error kind",
	}, []string{"reason"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_exports_total",
		Help: "Snapshot export attempts",
	}, []string{"result"})
)
