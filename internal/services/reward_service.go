package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"rewards/internal/core"
	"rewards/internal/ports"
)

// DefaultBatchWorkers bounds concurrent per-customer work in AllCustomerRewards.
const DefaultBatchWorkers = 4

// RewardService computes reward summaries from a transaction source.
type RewardService struct {
	source  ports.TransactionSource
	workers int
}

func NewRewardService(source ports.TransactionSource, workers int) *RewardService {
	if workers < 1 {
		workers = DefaultBatchWorkers
	}
	return &RewardService{
		source:  source,
		workers: workers,
	}
}

// CustomerRewards returns the summary for one customer, optionally limited to r.
// A customer with no transactions in the window yields *core.CustomerNotFoundError.
func (s *RewardService) CustomerRewards(ctx context.Context, customerID int64, r *core.DateRange) (core.CustomerRewardSummary, error) {
	if r != nil {
		if err := r.Validate(); err != nil {
			return core.CustomerRewardSummary{}, err
		}
	}

	txs, err := s.source.FindTransactions(ctx, customerID, r)
	if err != nil {
		return core.CustomerRewardSummary{}, fmt.Errorf("find transactions for customer %d: %w", customerID, err)
	}
	return core.Aggregate(customerID, txs)
}

// AllCustomerRewards returns one summary per known customer in ascending ID
// order. If any customer has nothing inside r the whole batch fails with that
// customer's *core.CustomerNotFoundError.
func (s *RewardService) AllCustomerRewards(ctx context.Context, r *core.DateRange) ([]core.CustomerRewardSummary, error) {
	if r != nil {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	ids, err := s.source.DistinctCustomerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	summaries := make([]core.CustomerRewardSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, id := range ids {
		g.Go(func() error {
			summary, err := s.CustomerRewards(gctx, id, r)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Batch reward computation aborted", "customers", len(ids), "error", err)
		return nil, err
	}
	return summaries, nil
}
