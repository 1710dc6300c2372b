package domain

// Valuation is the latest valuation of one account.
type Valuation struct {
	AccountID       string `json:"accountId"`
	ValuationDate   string `json:"valuationDate,omitempty"`
	AccountCurrency string `json:"accountCurrency,omitempty"`
	CashBalance     Amount `json:"cashBalance"`
	TotalValue      Amount `json:"totalValue"`
	CostBasis       Amount `json:"costBasis"`
	NetContribution Amount `json:"netContribution"`
}

// HistoryPoint is the total value of an account (or of TotalAccountID) on one date.
type HistoryPoint struct {
	AccountID  string `json:"accountId,omitempty"`
	Date       string `json:"date"`
	TotalValue Amount `json:"totalValue"`
}

// HoldingItem is a single position, keyed by account and asset.
type HoldingItem struct {
	AccountID     string `json:"accountId"`
	AssetID       string `json:"assetId"`
	Quantity      Amount `json:"quantity"`
	PurchasePrice Amount `json:"purchasePrice"`
	CurrentPrice  Amount `json:"currentPrice"`
	TotalValue    Amount `json:"totalValue"`
	CostBasis     Amount `json:"costBasis"`
	GainLoss      Amount `json:"gainLoss"`
}
