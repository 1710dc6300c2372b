package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/wealthfolio"
)

// ListHoldings returns the holdings of the given accounts. It tries the bulk
// endpoint first; when the upstream answers 400 or 404 the configured
// FallbackPolicy decides the result. Any other failure is returned.
func (s *Service) ListHoldings(ctx context.Context, accountIDs []string) ([]domain.HoldingItem, error) {
	if len(accountIDs) == 0 {
		return []domain.HoldingItem{}, nil
	}

	items, err := s.upstream.ListHoldings(ctx, accountIDs)
	if err == nil {
		return items, nil
	}
	if !bulkUnsupported(err) {
		return nil, err
	}

	s.recorder.HoldingsFallback(string(s.opts.Fallback))

	if s.opts.Fallback != FallbackPerItem {
		slog.Info("bulk holdings unsupported, per-item fallback disabled",
			"accounts", len(accountIDs), "error", err)
		return []domain.HoldingItem{}, nil
	}

	slog.Info("bulk holdings unsupported, resolving per item", "accounts", len(accountIDs))
	return s.resolvePerItem(ctx, accountIDs)
}

// resolvePerItem looks up every priceable asset in every account, accounts
// in the outer loop and assets in the inner loop, keeping only holdings the
// upstream knows about.
func (s *Service) resolvePerItem(ctx context.Context, accountIDs []string) ([]domain.HoldingItem, error) {
	assets, err := s.upstream.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing assets for holdings fallback: %w", err)
	}

	priceable := lo.Filter(assets, func(a domain.Asset, _ int) bool { return a.IsPriceable() })

	items := []domain.HoldingItem{}
	for _, accountID := range accountIDs {
		for _, asset := range priceable {
			item, err := s.upstream.GetHoldingItem(ctx, accountID, asset.ID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				slog.Debug("no holding", "account", accountID, "asset", asset.ID)
				continue
			}
			items = append(items, *item)
		}
	}
	return items, nil
}

func bulkUnsupported(err error) bool {
	status, ok := wealthfolio.StatusCode(err)
	return ok && (status == http.StatusBadRequest || status == http.StatusNotFound)
}
