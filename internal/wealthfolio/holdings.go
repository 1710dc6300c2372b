package wealthfolio

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mtlprog/folio/internal/domain"
)

// ListHoldings calls the bulk holdings endpoint for the given accounts.
// Deployments that do not support it answer 400 or 404.
func (c *Client) ListHoldings(ctx context.Context, accountIDs []string) ([]domain.HoldingItem, error) {
	var items []domain.HoldingItem
	if err := c.getJSON(ctx, "/holdings", repeated("accountIds", accountIDs), &items); err != nil {
		return nil, fmt.Errorf("fetching holdings: %w", err)
	}
	return orEmpty(items), nil
}

// GetHoldingItem retrieves a single holding. It returns nil without error
// when the upstream reports 404.
func (c *Client) GetHoldingItem(ctx context.Context, accountID, assetID string) (*domain.HoldingItem, error) {
	params := url.Values{}
	params.Set("accountId", accountID)
	params.Set("assetId", assetID)

	var item *domain.HoldingItem
	if err := c.getJSON(ctx, "/holdings/item", params, &item); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching holding %s/%s: %w", accountID, assetID, err)
	}
	return item, nil
}
