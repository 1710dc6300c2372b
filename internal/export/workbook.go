package export

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/folio/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary    = "Summary"
	SheetAccounts   = "Accounts"
	SheetValuations = "Valuations"
	SheetHoldings   = "Holdings"
	SheetHistory    = "History"
)

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheet struct {
	name string
	rows [][]any
}

// WriteWorkbook renders snap as an XLSX workbook with one sheet per collection.
func WriteWorkbook(w io.Writer, snap domain.PortfolioSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sheets := []sheet{
		{SheetSummary, summaryRows(snap.Summary)},
		{SheetAccounts, accountRows(snap.Accounts)},
		{SheetValuations, valuationRows(snap.Valuations)},
		{SheetHoldings, holdingRows(snap.Holdings)},
		{SheetHistory, historyRows(snap.History)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("renaming first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.name, err)
		}

		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("writing %s row %d: %w", s.name, r+1, err)
			}
		}
		if err := f.SetRowStyle(s.name, 1, 1, bold); err != nil {
			return fmt.Errorf("styling %s header: %w", s.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// money rounds a currency figure to cents for display.
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func summaryRows(s domain.Summary) [][]any {
	return [][]any{
		{"Metric", "Value"},
		{"Total value", money(s.TotalValue)},
		{"Total cost", money(s.TotalCost)},
		{"Total contribution", money(s.TotalContribution)},
		{"Total gain/loss", money(s.TotalGainLoss)},
		{"Total gain/loss %", money(s.TotalGainLossPercent)},
	}
}

func accountRows(accounts []domain.Account) [][]any {
	header := []any{"ID", "Name", "Currency", "Active"}
	return append([][]any{header}, lo.Map(accounts, func(a domain.Account, _ int) []any {
		return []any{a.ID, a.Name, a.Currency, a.IsActive}
	})...)
}

func valuationRows(valuations []domain.Valuation) [][]any {
	header := []any{"Account", "Date", "Currency", "Cash", "Total value", "Cost basis", "Net contribution"}
	return append([][]any{header}, lo.Map(valuations, func(v domain.Valuation, _ int) []any {
		return []any{
			v.AccountID, v.ValuationDate, v.AccountCurrency,
			money(v.CashBalance.Float64()), money(v.TotalValue.Float64()),
			money(v.CostBasis.Float64()), money(v.NetContribution.Float64()),
		}
	})...)
}

func holdingRows(items []domain.HoldingItem) [][]any {
	header := []any{"Account", "Asset", "Quantity", "Purchase price", "Current price", "Total value", "Cost basis", "Gain/loss"}
	return append([][]any{header}, lo.Map(items, func(h domain.HoldingItem, _ int) []any {
		return []any{
			h.AccountID, h.AssetID, h.Quantity.Float64(),
			money(h.PurchasePrice.Float64()), money(h.CurrentPrice.Float64()),
			money(h.TotalValue.Float64()), money(h.CostBasis.Float64()), money(h.GainLoss.Float64()),
		}
	})...)
}

func historyRows(points []domain.HistoryPoint) [][]any {
	header := []any{"Date", "Account", "Total value"}
	return append([][]any{header}, lo.Map(points, func(p domain.HistoryPoint, _ int) []any {
		return []any{p.Date, lo.CoalesceOrEmpty(p.AccountID, domain.TotalAccountID), money(p.TotalValue.Float64())}
	})...)
}
