package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tickerscope/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks to the pricing API. It owns the base URL and API key; every
// outbound call goes through do(). Construct one per process and inject it
// into the handlers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Tracer  trace.Tracer
	// HTTPClient overrides the default client; used by tests.
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("upstream")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		tracer:     tracer,
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTicker fetches the ticker for one symbol on one exchange. An upstream
// 404 is absence, not an error: the result is (nil, nil).
func (c *Client) GetTicker(ctx context.Context, exchange, symbol string) (*domain.Ticker, error) {
	path := fmt.Sprintf("/v1/ticker/%s/%s", url.PathEscape(exchange), url.PathEscape(ToWireSymbol(symbol)))

	var ticker domain.Ticker
	if err := c.do(ctx, path, nil, true, &ticker); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.IsNotFound() {
			return nil, nil
		}
		return nil, err
	}
	return &ticker, nil
}

// TickersQuery filters the cross-exchange ticker listing.
type TickersQuery struct {
	Exchange string
	Symbols  []string
	Limit    int
	Offset   int
}

// GetTickers fetches a filtered page of tickers. Symbols are upper-cased,
// converted to wire form, and joined by commas into one query parameter.
func (c *Client) GetTickers(ctx context.Context, q TickersQuery) (*domain.TickersPage, error) {
	query := url.Values{}
	if q.Exchange != "" {
		query.Set("exchange", q.Exchange)
	}
	if len(q.Symbols) > 0 {
		wire := make([]string, 0, len(q.Symbols))
		for _, symbol := range q.Symbols {
			wire = append(wire, ToWireSymbol(strings.ToUpper(strings.TrimSpace(symbol))))
		}
		query.Set("symbols", strings.Join(wire, ","))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}

	var page domain.TickersPage
	if err := c.do(ctx, "/v1/tickers", query, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HistoryQuery bounds a candle history request. The client passes interval
// through untouched; validating it is the caller's job.
type HistoryQuery struct {
	Interval string
	Start    string
	End      string
	Limit    int
}

func (c *Client) GetHistory(ctx context.Context, exchange, symbol string, q HistoryQuery) (*domain.OHLCVResponse, error) {
	path := fmt.Sprintf("/v1/history/%s/%s", url.PathEscape(exchange), url.PathEscape(ToWireSymbol(symbol)))

	query := url.Values{}
	if q.Interval != "" {
		query.Set("interval", q.Interval)
	}
	if q.Start != "" {
		query.Set("start", q.Start)
	}
	if q.End != "" {
		query.Set("end", q.End)
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp domain.OHLCVResponse
	if err := c.do(ctx, path, query, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetExchanges lists all exchanges. The only unauthenticated endpoint.
func (c *Client) GetExchanges(ctx context.Context) ([]domain.Exchange, error) {
	var resp struct {
		Exchanges []domain.Exchange `json:"exchanges"`
	}
	if err := c.do(ctx, "/v1/exchanges", nil, false, &resp); err != nil {
		return nil, err
	}
	return resp.Exchanges, nil
}

// MarketsQuery filters the market listing for one exchange.
type MarketsQuery struct {
	Quote  string
	Base   string
	Active *bool
	Limit  int
	Offset int
}

func (c *Client) GetMarkets(ctx context.Context, exchange string, q MarketsQuery) (*domain.MarketsPage, error) {
	path := "/v1/markets/" + url.PathEscape(exchange)

	query := url.Values{}
	if q.Quote != "" {
		query.Set("quote", strings.ToUpper(q.Quote))
	}
	if q.Base != "" {
		query.Set("base", strings.ToUpper(q.Base))
	}
	if q.Active != nil {
		query.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}

	var page domain.MarketsPage
	if err := c.do(ctx, path, query, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values, authenticated bool, out any) error {
	ctx, span := c.tracer.Start(ctx, "upstream.request")
	defer span.End()
	span.SetAttributes(attribute.String("upstream.path", path))

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read response from %s: %w", path, err)
	}

	span.SetAttributes(attribute.Int("upstream.status", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, body)
		span.RecordError(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
