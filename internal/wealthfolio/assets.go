package wealthfolio

import (
	"context"
	"fmt"

	"github.com/mtlprog/folio/internal/domain"
)

// ListAssets retrieves all assets.
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := c.getJSON(ctx, "/assets", nil, &assets); err != nil {
		return nil, fmt.Errorf("fetching assets: %w", err)
	}
	return orEmpty(assets), nil
}
