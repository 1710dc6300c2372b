package portfolio

import (
	"context"
	"sync"

	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/wealthfolio"
)

type holdingKey struct {
	account, asset string
}

type mockUpstream struct {
	mu sync.Mutex

	accounts   []domain.Account
	valuations []domain.Valuation
	assets     []domain.Asset
	history    []domain.HistoryPoint
	bulk       []domain.HoldingItem
	items      map[holdingKey]domain.HoldingItem

	accountsErr   error
	valuationsErr error
	assetsErr     error
	historyErr    error
	bulkErr       error
	itemErr       map[holdingKey]error

	// hook runs at the start of each of the four concurrent composite calls.
	hook func(ctx context.Context, name string) error

	calls       map[string]int
	itemLookups []holdingKey
	historyDays int
	historyAcct string
}

func newMockUpstream() *mockUpstream {
	return &mockUpstream{
		items:   map[holdingKey]domain.HoldingItem{},
		itemErr: map[holdingKey]error{},
		calls:   map[string]int{},
	}
}

func (m *mockUpstream) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockUpstream) callCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockUpstream) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *mockUpstream) runHook(ctx context.Context, name string) error {
	if m.hook == nil {
		return nil
	}
	return m.hook(ctx, name)
}

func (m *mockUpstream) ListAccounts(_ context.Context) ([]domain.Account, error) {
	m.record("accounts")
	return m.accounts, m.accountsErr
}

func (m *mockUpstream) ListLatestValuations(ctx context.Context, _ []string) ([]domain.Valuation, error) {
	m.record("valuations")
	if err := m.runHook(ctx, "valuations"); err != nil {
		return nil, err
	}
	return m.valuations, m.valuationsErr
}

func (m *mockUpstream) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	m.record("assets")
	if err := m.runHook(ctx, "assets"); err != nil {
		return nil, err
	}
	return m.assets, m.assetsErr
}

func (m *mockUpstream) ListHistory(ctx context.Context, accountID string, days int) ([]domain.HistoryPoint, error) {
	m.record("history")
	m.mu.Lock()
	m.historyAcct, m.historyDays = accountID, days
	m.mu.Unlock()
	if err := m.runHook(ctx, "history"); err != nil {
		return nil, err
	}
	return m.history, m.historyErr
}

func (m *mockUpstream) ListHoldings(ctx context.Context, _ []string) ([]domain.HoldingItem, error) {
	m.record("holdings")
	if err := m.runHook(ctx, "holdings"); err != nil {
		return nil, err
	}
	return m.bulk, m.bulkErr
}

func (m *mockUpstream) GetHoldingItem(_ context.Context, accountID, assetID string) (*domain.HoldingItem, error) {
	m.record("item")
	key := holdingKey{accountID, assetID}
	m.mu.Lock()
	m.itemLookups = append(m.itemLookups, key)
	m.mu.Unlock()

	if err, ok := m.itemErr[key]; ok {
		return nil, err
	}
	item, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func statusErr(status int) error {
	return &wealthfolio.UpstreamError{StatusCode: status, Path: "/test", Message: "test"}
}

type recordedOutcomes struct {
	mu        sync.Mutex
	fetches   []string
	fallbacks []string
}

func (r *recordedOutcomes) PortfolioFetch(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, outcome)
}

func (r *recordedOutcomes) HoldingsFallback(policy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, policy)
}
