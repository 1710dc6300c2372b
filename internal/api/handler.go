package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/export"
	"github.com/mtlprog/folio/internal/wealthfolio"
)

// PortfolioService defines the aggregation operations exposed over HTTP.
type PortfolioService interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListLatestValuations(ctx context.Context, accountIDs []string) ([]domain.Valuation, error)
	ListAssets(ctx context.Context) ([]domain.Asset, error)
	ListHistory(ctx context.Context, accountID string, days int) ([]domain.HistoryPoint, error)
	ListHoldings(ctx context.Context, accountIDs []string) ([]domain.HoldingItem, error)
	GetHoldingItem(ctx context.Context, accountID, assetID string) (*domain.HoldingItem, error)
	FetchPortfolioData(ctx context.Context) (domain.PortfolioSnapshot, error)
}

// Handler provides HTTP endpoints for the portfolio API.
type Handler struct {
	portfolio    PortfolioService
	historyDays  int
	assetFilters []string
}

// NewHandler creates a new API handler. historyDays is the default window of
// GET /valuations/history.
func NewHandler(portfolio PortfolioService, historyDays int, assetFilters []string) *Handler {
	return &Handler{portfolio: portfolio, historyDays: historyDays, assetFilters: assetFilters}
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.portfolio.ListAccounts(r.Context())
	if err != nil {
		writeUpstreamError(w, "list accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// ListLatestValuations handles GET /valuations/latest.
func (h *Handler) ListLatestValuations(w http.ResponseWriter, r *http.Request) {
	ids := accountIDsParam(r.URL.Query())
	valuations, err := h.portfolio.ListLatestValuations(r.Context(), ids)
	if err != nil {
		writeUpstreamError(w, "list latest valuations", err)
		return
	}
	writeJSON(w, http.StatusOK, valuations)
}

// ListAssets handles GET /assets.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.portfolio.ListAssets(r.Context())
	if err != nil {
		writeUpstreamError(w, "list assets", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// ListHistory handles GET /valuations/history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accountID := lo.CoalesceOrEmpty(q.Get("accountId"), domain.TotalAccountID)

	days := h.historyDays
	if d := q.Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	history, err := h.portfolio.ListHistory(r.Context(), accountID, days)
	if err != nil {
		writeUpstreamError(w, "list history", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GetHoldingItem handles GET /holdings/item.
func (h *Handler) GetHoldingItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accountID, assetID := q.Get("accountId"), q.Get("assetId")
	if accountID == "" || assetID == "" {
		writeError(w, http.StatusBadRequest, "accountId and assetId are required")
		return
	}

	item, err := h.portfolio.GetHoldingItem(r.Context(), accountID, assetID)
	if err != nil {
		writeUpstreamError(w, "get holding item", err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListHoldings handles GET /holdings.
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	ids := accountIDsParam(r.URL.Query())
	items, err := h.portfolio.ListHoldings(r.Context(), ids)
	if err != nil {
		writeUpstreamError(w, "list holdings", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// GetPortfolio handles GET /portfolio.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.fetchPortfolio(r)
	if err != nil {
		writeUpstreamError(w, "fetch portfolio", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ExportPortfolio handles GET /portfolio/export.xlsx.
func (h *Handler) ExportPortfolio(w http.ResponseWriter, r *http.Request) {
	snap, err := h.fetchPortfolio(r)
	if err != nil {
		writeUpstreamError(w, "export portfolio", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, snap); err != nil {
		slog.Error("failed to render workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render workbook")
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write workbook", "error", err)
	}
}

// Sync handles POST /sync. Synchronization is owned by the upstream service.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Synchronization triggered."})
}

func (h *Handler) fetchPortfolio(r *http.Request) (domain.PortfolioSnapshot, error) {
	slog.Debug("fetching portfolio", "assetFilters", h.assetFilters)
	return h.portfolio.FetchPortfolioData(r.Context())
}

// accountIDsParam collects account ids from accountIds and accountIds[],
// accepting repeated keys and comma-separated values.
func accountIDsParam(q url.Values) []string {
	raw := append(q["accountIds"], q["accountIds[]"]...)
	ids := lo.FlatMap(raw, func(v string, _ int) []string {
		return lo.Map(strings.Split(v, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
	})
	return lo.Uniq(lo.Compact(ids))
}

func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	slog.Error("request failed", "op", op, "error", err)

	var ue *wealthfolio.UpstreamError
	var te *wealthfolio.TransportError
	switch {
	case errors.As(err, &ue):
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: upstream returned HTTP %d", op, ue.StatusCode))
	case errors.As(err, &te) && isTimeout(err):
		writeError(w, http.StatusGatewayTimeout, op+": upstream timed out")
	case errors.As(err, &te):
		writeError(w, http.StatusBadGateway, op+": upstream unreachable")
	default:
		writeError(w, http.StatusInternalServerError, op+": internal error")
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
