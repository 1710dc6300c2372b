package domain

// Summary holds the figures derived from a set of valuations.
type Summary struct {
	TotalValue           float64 `json:"total_value"`
	TotalCost            float64 `json:"total_cost"`
	TotalContribution    float64 `json:"total_contribution"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
}

// PortfolioSnapshot is the composite result of one aggregation call.
type PortfolioSnapshot struct {
	Accounts   []Account      `json:"accounts"`
	Valuations []Valuation    `json:"valuations"`
	Assets     []Asset        `json:"assets"`
	History    []HistoryPoint `json:"history"`
	Holdings   []HoldingItem  `json:"holdings"`
	Summary    Summary        `json:"summary"`
}

// EmptySnapshot returns a snapshot with every list empty and every summary figure zero.
func EmptySnapshot() PortfolioSnapshot {
	return PortfolioSnapshot{
		Accounts:   []Account{},
		Valuations: []Valuation{},
		Assets:     []Asset{},
		History:    []HistoryPoint{},
		Holdings:   []HoldingItem{},
	}
}

// IsEmpty reports whether the snapshot carries no data at all.
func (s PortfolioSnapshot) IsEmpty() bool {
	return len(s.Accounts) == 0 && len(s.Valuations) == 0 && len(s.Assets) == 0 &&
		len(s.History) == 0 && len(s.Holdings) == 0 && s.Summary == Summary{}
}
