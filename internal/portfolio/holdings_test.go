package portfolio

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/wealthfolio"
)

func perItemOptions() Options {
	opts := DefaultOptions()
	opts.Fallback = FallbackPerItem
	return opts
}

func TestListHoldingsEmptyAccountsMakesNoCalls(t *testing.T) {
	up := newMockUpstream()
	svc := NewService(up, perItemOptions())

	for _, ids := range [][]string{nil, {}} {
		items, err := svc.ListHoldings(context.Background(), ids)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("items = %v, want empty non-nil slice", items)
		}
	}
	if n := up.totalCalls(); n != 0 {
		t.Errorf("upstream calls = %d, want 0", n)
	}
}

func TestListHoldingsBulkSuccess(t *testing.T) {
	up := newMockUpstream()
	up.bulk = []domain.HoldingItem{{AccountID: "acc1", AssetID: "AAPL", Quantity: 10}}
	svc := NewService(up, perItemOptions())

	items, err := svc.ListHoldings(context.Background(), []string{"acc1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].AssetID != "AAPL" {
		t.Errorf("items = %+v", items)
	}
	if n := up.callCount("item"); n != 0 {
		t.Errorf("per-item calls = %d, want 0 when bulk succeeds", n)
	}
	if n := up.callCount("assets"); n != 0 {
		t.Errorf("asset calls = %d, want 0 when bulk succeeds", n)
	}
}

func TestListHoldingsFallbackOrderAndFiltering(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = statusErr(http.StatusNotFound)
	up.assets = []domain.Asset{
		{ID: "AAPL", AssetType: "stock"},
		{ID: "$CASH-USD", AssetType: "CASH"},
		{ID: "BTC", AssetType: "crypto"},
		{ID: "EURUSD=X", AssetType: "FOREX"},
	}
	up.items[holdingKey{"acc1", "AAPL"}] = domain.HoldingItem{AccountID: "acc1", AssetID: "AAPL"}
	up.items[holdingKey{"acc1", "BTC"}] = domain.HoldingItem{AccountID: "acc1", AssetID: "BTC"}
	up.items[holdingKey{"acc2", "BTC"}] = domain.HoldingItem{AccountID: "acc2", AssetID: "BTC"}
	rec := &recordedOutcomes{}
	svc := NewService(up, perItemOptions(), rec)

	items, err := svc.ListHoldings(context.Background(), []string{"acc1", "acc2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLookups := []holdingKey{{"acc1", "AAPL"}, {"acc1", "BTC"}, {"acc2", "AAPL"}, {"acc2", "BTC"}}
	if len(up.itemLookups) != len(wantLookups) {
		t.Fatalf("lookups = %v, want %v", up.itemLookups, wantLookups)
	}
	for i, want := range wantLookups {
		if up.itemLookups[i] != want {
			t.Errorf("lookups[%d] = %v, want %v", i, up.itemLookups[i], want)
		}
	}

	wantItems := []holdingKey{{"acc1", "AAPL"}, {"acc1", "BTC"}, {"acc2", "BTC"}}
	if len(items) != len(wantItems) {
		t.Fatalf("items = %+v, want %v", items, wantItems)
	}
	for i, want := range wantItems {
		got := holdingKey{items[i].AccountID, items[i].AssetID}
		if got != want {
			t.Errorf("items[%d] = %v, want %v", i, got, want)
		}
	}

	if len(rec.fallbacks) != 1 || rec.fallbacks[0] != string(FallbackPerItem) {
		t.Errorf("fallbacks = %v, want [per-item]", rec.fallbacks)
	}
}

func TestListHoldingsFallbackNeverLooksUpCashOrForex(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = statusErr(http.StatusBadRequest)
	up.assets = []domain.Asset{
		{ID: "$CASH-EUR", AssetType: "CASH"},
		{ID: "GBPUSD=X", AssetType: "FOREX"},
	}
	svc := NewService(up, perItemOptions())

	items, err := svc.ListHoldings(context.Background(), []string{"acc1", "acc2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want none", items)
	}
	if n := up.callCount("item"); n != 0 {
		t.Errorf("per-item calls = %d, want 0", n)
	}
}

func TestListHoldingsFallbackIsDeterministic(t *testing.T) {
	build := func() *mockUpstream {
		up := newMockUpstream()
		up.bulkErr = statusErr(http.StatusNotFound)
		up.assets = []domain.Asset{{ID: "A", AssetType: "stock"}, {ID: "B", AssetType: "stock"}}
		for _, acc := range []string{"x", "y"} {
			for _, asset := range []string{"A", "B"} {
				up.items[holdingKey{acc, asset}] = domain.HoldingItem{AccountID: acc, AssetID: asset}
			}
		}
		return up
	}

	first, err := NewService(build(), perItemOptions()).ListHoldings(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := NewService(build(), perItemOptions()).ListHoldings(context.Background(), []string{"x", "y"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run differs at %d: %+v vs %+v", i, first[i], again[i])
			}
		}
	}
}

func TestListHoldingsFallbackDisabledReturnsEmpty(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = statusErr(http.StatusNotFound)
	up.assets = []domain.Asset{{ID: "AAPL", AssetType: "stock"}}
	rec := &recordedOutcomes{}
	svc := NewService(up, DefaultOptions(), rec)

	items, err := svc.ListHoldings(context.Background(), []string{"acc1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", items)
	}
	if n := up.callCount("item") + up.callCount("assets"); n != 0 {
		t.Errorf("fallback calls = %d, want 0 with fallback disabled", n)
	}
	if len(rec.fallbacks) != 1 || rec.fallbacks[0] != string(FallbackDisabled) {
		t.Errorf("fallbacks = %v, want [disabled]", rec.fallbacks)
	}
}

func TestListHoldingsOtherStatusDoesNotFallBack(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError, http.StatusBadGateway} {
		up := newMockUpstream()
		up.bulkErr = statusErr(status)
		up.assets = []domain.Asset{{ID: "AAPL", AssetType: "stock"}}
		svc := NewService(up, perItemOptions())

		_, err := svc.ListHoldings(context.Background(), []string{"acc1"})
		got, ok := wealthfolio.StatusCode(err)
		if !ok || got != status {
			t.Errorf("status %d: error = %v, want UpstreamError with that status", status, err)
		}
		if n := up.callCount("item") + up.callCount("assets"); n != 0 {
			t.Errorf("status %d: fallback calls = %d, want 0", status, n)
		}
	}
}

func TestListHoldingsTransportErrorDoesNotFallBack(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = &wealthfolio.TransportError{Path: "/holdings", Err: errors.New("connection refused")}
	svc := NewService(up, perItemOptions())

	_, err := svc.ListHoldings(context.Background(), []string{"acc1"})
	var te *wealthfolio.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TransportError", err)
	}
	if n := up.callCount("item"); n != 0 {
		t.Errorf("per-item calls = %d, want 0", n)
	}
}

func TestListHoldingsFallbackItemErrorPropagates(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = statusErr(http.StatusNotFound)
	up.assets = []domain.Asset{{ID: "AAPL", AssetType: "stock"}, {ID: "MSFT", AssetType: "stock"}}
	up.itemErr[holdingKey{"acc1", "AAPL"}] = statusErr(http.StatusInternalServerError)
	svc := NewService(up, perItemOptions())

	_, err := svc.ListHoldings(context.Background(), []string{"acc1"})
	if got, ok := wealthfolio.StatusCode(err); !ok || got != http.StatusInternalServerError {
		t.Fatalf("error = %v, want 500 UpstreamError", err)
	}
}

func TestListHoldingsFallbackAssetErrorPropagates(t *testing.T) {
	up := newMockUpstream()
	up.bulkErr = statusErr(http.StatusNotFound)
	up.assetsErr = statusErr(http.StatusServiceUnavailable)
	svc := NewService(up, perItemOptions())

	_, err := svc.ListHoldings(context.Background(), []string{"acc1"})
	if got, ok := wealthfolio.StatusCode(err); !ok || got != http.StatusServiceUnavailable {
		t.Fatalf("error = %v, want 503 UpstreamError", err)
	}
}

func TestParseFallbackPolicy(t *testing.T) {
	for _, s := range []string{"disabled", "per-item"} {
		if _, err := ParseFallbackPolicy(s); err != nil {
			t.Errorf("ParseFallbackPolicy(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFallbackPolicy("sometimes"); err == nil {
		t.Error("ParseFallbackPolicy(sometimes) error = nil, want error")
	}
}
