package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/folio/internal/domain"
)

// FetchPortfolioData assembles a full PortfolioSnapshot. Valuations, assets,
// history and holdings are fetched concurrently once the accounts are known.
//
// With DegradeOnError set, any upstream failure yields an empty snapshot and
// a nil error, so callers cannot tell "no data" from "upstream down".
func (s *Service) FetchPortfolioData(ctx context.Context) (domain.PortfolioSnapshot, error) {
	snap, err := s.fetchPortfolio(ctx)
	if err != nil {
		if s.opts.DegradeOnError {
			slog.Warn("portfolio fetch failed, serving empty snapshot", "error", err)
			s.recorder.PortfolioFetch(OutcomeDegraded)
			return domain.EmptySnapshot(), nil
		}
		s.recorder.PortfolioFetch(OutcomeError)
		return domain.PortfolioSnapshot{}, err
	}
	s.recorder.PortfolioFetch(OutcomeOK)
	return snap, nil
}

func (s *Service) fetchPortfolio(ctx context.Context) (domain.PortfolioSnapshot, error) {
	accounts, err := s.upstream.ListAccounts(ctx)
	if err != nil {
		return domain.PortfolioSnapshot{}, fmt.Errorf("fetching accounts: %w", err)
	}
	accountIDs := domain.AccountIDs(accounts)

	var (
		valuations []domain.Valuation
		assets     []domain.Asset
		history    []domain.HistoryPoint
		holdings   []domain.HoldingItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.upstream.ListLatestValuations(gctx, accountIDs)
		if err != nil {
			return fmt.Errorf("fetching valuations: %w", err)
		}
		valuations = v
		return nil
	})
	g.Go(func() error {
		a, err := s.upstream.ListAssets(gctx)
		if err != nil {
			return fmt.Errorf("fetching assets: %w", err)
		}
		assets = a
		return nil
	})
	g.Go(func() error {
		h, err := s.upstream.ListHistory(gctx, domain.TotalAccountID, s.opts.HistoryDays)
		if err != nil {
			return fmt.Errorf("fetching history: %w", err)
		}
		history = h
		return nil
	})
	g.Go(func() error {
		h, err := s.ListHoldings(gctx, accountIDs)
		if err != nil {
			return fmt.Errorf("fetching holdings: %w", err)
		}
		holdings = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.PortfolioSnapshot{}, err
	}

	return domain.PortfolioSnapshot{
		Accounts:   orEmpty(accounts),
		Valuations: orEmpty(valuations),
		Assets:     orEmpty(assets),
		History:    orEmpty(history),
		Holdings:   orEmpty(holdings),
		Summary:    ComputeSummary(valuations),
	}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
