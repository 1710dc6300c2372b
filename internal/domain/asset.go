package domain

import (
	"encoding/json"
	"strings"
)

// Asset types that carry no price-based gain/loss and are never enumerated
// as holdings.
const (
	AssetTypeCash  = "CASH"
	AssetTypeForex = "FOREX"
)

// Asset describes an instrument known to the upstream service.
type Asset struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol,omitempty"`
	Name      string `json:"name"`
	AssetType string `json:"assetType"`
	Currency  string `json:"currency,omitempty"`
}

// UnmarshalJSON falls back to the symbol when the upstream omits an id.
func (a *Asset) UnmarshalJSON(data []byte) error {
	type plain Asset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = p.Symbol
	}
	*a = Asset(p)
	return nil
}

// IsPriceable reports whether holdings of this asset have a market price,
// i.e. the asset is neither cash nor a currency pair.
func (a Asset) IsPriceable() bool {
	return !strings.EqualFold(a.AssetType, AssetTypeCash) && !strings.EqualFold(a.AssetType, AssetTypeForex)
}
