package services

import (
	"context"

	"github.com/api-sage/ledger-replay/src/internal/domain"
	"github.com/api-sage/ledger-replay/src/internal/logger"
	"github.com/api-sage/ledger-replay/src/internal/usecase/service_interfaces"
	"golang.org/x/sync/errgroup"
)

type Summary struct {
	Processed int
	Applied   int
	Failed    int
	Failures  map[string]int
}

func newSummary() Summary {
	return Summary{Failures: make(map[string]int)}
}

func (s *Summary) merge(other Summary) {
	s.Processed += other.Processed
	s.Applied += other.Applied
	s.Failed += other.Failed
	for kind, count := range other.Failures {
		s.Failures[kind] += count
	}
}

// Processor feeds operations to the engine in arrival order. With more than one worker,
// operations are partitioned by client so each client's history stays sequential.
type Processor struct {
	executor   service_interfaces.TransactionService
	workers    int
	bufferSize int
}

func NewProcessor(executor service_interfaces.TransactionService, workers int, bufferSize int) *Processor {
	if workers < 1 {
		workers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}

	return &Processor{
		executor:   executor,
		workers:    workers,
		bufferSize: bufferSize,
	}
}

// Run consumes ops until the channel is closed or ctx is cancelled. Rejected
// operations are logged and counted; they never stop the run.
func (p *Processor) Run(ctx context.Context, ops <-chan domain.Operation) (Summary, error) {
	logger.Info("processor starting", logger.Fields{"workers": p.workers})

	if p.workers == 1 {
		summary := newSummary()
		err := p.consume(ctx, ops, &summary)
		p.logSummary(summary)
		return summary, err
	}

	g, gctx := errgroup.WithContext(ctx)

	partitions := make([]chan domain.Operation, p.workers)
	summaries := make([]Summary, p.workers)
	for i := range partitions {
		partitions[i] = make(chan domain.Operation, p.bufferSize)
		summaries[i] = newSummary()

		i := i
		g.Go(func() error {
			return p.consume(gctx, partitions[i], &summaries[i])
		})
	}

	g.Go(func() error {
		defer func() {
			for _, partition := range partitions {
				close(partition)
			}
		}()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case op, ok := <-ops:
				if !ok {
					return nil
				}

				select {
				case partitions[p.partition(op.ClientID)] <- op:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	err := g.Wait()

	summary := newSummary()
	for _, partial := range summaries {
		summary.merge(partial)
	}
	p.logSummary(summary)

	return summary, err
}

func (p *Processor) partition(clientID domain.ClientID) int {
	return int(clientID) % p.workers
}

func (p *Processor) consume(ctx context.Context, ops <-chan domain.Operation, summary *Summary) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op, ok := <-ops:
			if !ok {
				return nil
			}
			p.handle(op, summary)
		}
	}
}

func (p *Processor) handle(op domain.Operation, summary *Summary) {
	summary.Processed++

	if err := p.executor.Execute(op); err != nil {
		summary.Failed++
		summary.Failures[domain.ErrorKind(err)]++

		logger.Warn("processor operation rejected", logger.Fields{
			"type":   op.Kind,
			"client": op.ClientID,
			"tx":     op.TxID,
			"error":  err.Error(),
		})
		return
	}

	summary.Applied++
}

func (p *Processor) logSummary(summary Summary) {
	logger.Info("processor finished", logger.Fields{
		"processed": summary.Processed,
		"applied":   summary.Applied,
		"failed":    summary.Failed,
		"failures":  summary.Failures,
	})
}
