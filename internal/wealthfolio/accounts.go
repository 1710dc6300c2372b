package wealthfolio

import (
	"context"
	"fmt"

	"github.com/mtlprog/folio/internal/domain"
)

// ListAccounts retrieves all accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.getJSON(ctx, "/accounts", nil, &accounts); err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	return orEmpty(accounts), nil
}
