package wealthfolio

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mtlprog/folio/internal/domain"
)

// DefaultHistoryDays is the history window used when none is given.
const DefaultHistoryDays = 30

const isoDate = "2006-01-02"

// ListLatestValuations retrieves the latest valuation of each given account.
func (c *Client) ListLatestValuations(ctx context.Context, accountIDs []string) ([]domain.Valuation, error) {
	var valuations []domain.Valuation
	if err := c.getJSON(ctx, "/valuations/latest", repeated("accountIds", accountIDs), &valuations); err != nil {
		return nil, fmt.Errorf("fetching latest valuations: %w", err)
	}
	return orEmpty(valuations), nil
}

// ListHistory retrieves daily valuations of accountID over the last days days,
// ending today. An empty accountID selects domain.TotalAccountID and a
// non-positive days selects DefaultHistoryDays.
func (c *Client) ListHistory(ctx context.Context, accountID string, days int) ([]domain.HistoryPoint, error) {
	if accountID == "" {
		accountID = domain.TotalAccountID
	}
	if days <= 0 {
		days = DefaultHistoryDays
	}

	end := c.now()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("accountId", accountID)
	params.Set("startDate", start.Format(isoDate))
	params.Set("endDate", end.Format(isoDate))

	var history []domain.HistoryPoint
	if err := c.getJSON(ctx, "/valuations/history", params, &history); err != nil {
		return nil, fmt.Errorf("fetching valuation history for %s: %w", accountID, err)
	}
	return orEmpty(history), nil
}
