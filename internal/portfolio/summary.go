package portfolio

import (
	"github.com/samber/lo"

	"github.com/mtlprog/folio/internal/domain"
)

// ComputeSummary derives portfolio totals from valuations. The gain/loss
// percentage is zero whenever the total cost is not positive.
func ComputeSummary(valuations []domain.Valuation) domain.Summary {
	totalValue := lo.SumBy(valuations, func(v domain.Valuation) float64 { return v.TotalValue.Float64() })
	totalCost := lo.SumBy(valuations, func(v domain.Valuation) float64 { return v.CostBasis.Float64() })
	totalContribution := lo.SumBy(valuations, func(v domain.Valuation) float64 { return v.NetContribution.Float64() })

	gainLoss := totalValue - totalCost
	var gainLossPercent float64
	if totalCost > 0 {
		gainLossPercent = gainLoss / totalCost * 100
	}

	return domain.Summary{
		TotalValue:           totalValue,
		TotalCost:            totalCost,
		TotalContribution:    totalContribution,
		TotalGainLoss:        gainLoss,
		TotalGainLossPercent: gainLossPercent,
	}
}
