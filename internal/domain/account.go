package domain

import "github.com/samber/lo"

// TotalAccountID is the synthetic account the upstream service uses for
// portfolio-wide history.
const TotalAccountID = "TOTAL"

// Account is an investment account as reported by the upstream service.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	IsActive bool   `json:"isActive"`
}

// AccountIDs returns the identifiers of the given accounts in order.
func AccountIDs(accounts []Account) []string {
	return lo.Map(accounts, func(a Account, _ int) string { return a.ID })
}
