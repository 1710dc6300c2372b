package portfolio

import (
	"context"
	"fmt"

	"github.com/mtlprog/folio/internal/domain"
)

// Upstream defines the subset of the Wealthfolio API used by the Service.
type Upstream interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListLatestValuations(ctx context.Context, accountIDs []string) ([]domain.Valuation, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	ListHistory(ctx context.Context, accountID string, days int) ([]domain.HistoryPoint, error)
	ListHoldings(ctx context.Context, accountIDs []string) ([]domain.HoldingItem, error)
	GetHoldingItem(ctx context.Context, accountID, assetID string) (*domain.HoldingItem, error)
}

// Recorder receives aggregation outcomes for instrumentation.
type Recorder interface {
	PortfolioFetch(outcome string)
	HoldingsFallback(policy string)
}

// Outcomes reported to Recorder.PortfolioFetch.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeError    = "error"
)

// FallbackPolicy selects what ListHoldings does when the bulk endpoint is unsupported.
type FallbackPolicy string

const (
	// FallbackDisabled answers an empty holdings list instead of issuing
	// one upstream call per account and asset.
	FallbackDisabled FallbackPolicy = "disabled"
	// FallbackPerItem resolves every (account, priceable asset) pair individually.
	FallbackPerItem FallbackPolicy = "per-item"
)

// ParseFallbackPolicy converts a configuration value into a FallbackPolicy.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case FallbackDisabled, FallbackPerItem:
		return p, nil
	default:
		return "", fmt.Errorf("unknown holdings fallback policy %q", s)
	}
}

// Options controls aggregation policy.
type Options struct {
	Fallback FallbackPolicy
	// DegradeOnError makes FetchPortfolioData answer an empty snapshot
	// instead of an error when any upstream call fails.
	DegradeOnError bool
	// HistoryDays is the window of the composite history; non-positive selects the upstream default.
	HistoryDays int
}

// DefaultOptions returns the policy the service runs with unless configured otherwise.
func DefaultOptions() Options {
	return Options{
		Fallback:       FallbackDisabled,
		DegradeOnError: true,
		HistoryDays:    30,
	}
}

// Service aggregates upstream portfolio data.
type Service struct {
	upstream Upstream
	opts     Options
	recorder Recorder
}

// NewService creates a new aggregation Service. An optional Recorder can be
// provided to instrument fetch outcomes.
func NewService(upstream Upstream, opts Options, recorders ...Recorder) *Service {
	if upstream == nil {
		panic("portfolio.NewService: upstream is nil")
	}
	if opts.Fallback == "" {
		opts.Fallback = FallbackDisabled
	}
	var recorder Recorder = nopRecorder{}
	if len(recorders) > 0 && recorders[0] != nil {
		recorder = recorders[0]
	}
	return &Service{upstream: upstream, opts: opts, recorder: recorder}
}

// Options returns the policy the Service was built with.
func (s *Service) Options() Options {
	return s.opts
}

// ListAccounts returns all upstream accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.upstream.ListAccounts(ctx)
}

// ListLatestValuations returns the latest valuation of each given account.
func (s *Service) ListLatestValuations(ctx context.Context, accountIDs []string) ([]domain.Valuation, error) {
	return s.upstream.ListLatestValuations(ctx, accountIDs)
}

// ListAssets returns all upstream assets.
func (s *Service) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.upstream.ListAssets(ctx)
}

// ListHistory returns the valuation history of one account, or of the whole
// portfolio when accountID is empty.
func (s *Service) ListHistory(ctx context.Context, accountID string, days int) ([]domain.HistoryPoint, error) {
	return s.upstream.ListHistory(ctx, accountID, days)
}

// GetHoldingItem returns one holding, or nil when the upstream does not know it.
func (s *Service) GetHoldingItem(ctx context.Context, accountID, assetID string) (*domain.HoldingItem, error) {
	return s.upstream.GetHoldingItem(ctx, accountID, assetID)
}

type nopRecorder struct{}

func (nopRecorder) PortfolioFetch(string)   {}
func (nopRecorder) HoldingsFallback(string) {}
