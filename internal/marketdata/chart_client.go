package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"fund-momentum-lab/internal/domain"
	"fund-momentum-lab/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// ChartClient implements Provider against a Yahoo-style chart HTTP API
// (GET /v8/finance/chart/{symbol}?period1=..&period2=..&interval=1mo).
type ChartClient struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures ChartClient.
type ClientOption func(*ChartClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *ChartClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *ChartClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *ChartClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *ChartClient) {
		c.client = client
	}
}

// NewChartClient creates a chart API client rooted at baseURL.
func NewChartClient(baseURL string, opts ...ClientOption) *ChartClient {
	c := &ChartClient{
		baseURL:     baseURL,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Provider = (*ChartClient)(nil)

// chartResponse mirrors the chart API envelope. Price arrays carry JSON
// nulls for months without an observation, hence *float64.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *chartError) Error() string {
	return fmt.Sprintf("chart API error %s: %s", e.Code, e.Description)
}

// FetchMonthly returns monthly observations for ticker within [from, to).
// Adjusted close is preferred; months the API reports only a raw close for
// fall back to it. Months with neither are skipped.
func (c *ChartClient) FetchMonthly(ctx context.Context, ticker string, from, to time.Time) ([]domain.PriceObservation, error) {
	var resp chartResponse
	if err := c.get(ctx, ticker, from, to, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, resp.Chart.Error)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", ticker, ErrNoData)
	}

	result := resp.Chart.Result[0]

	var adjclose, close []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjclose = result.Indicators.AdjClose[0].AdjClose
	}
	if len(result.Indicators.Quote) > 0 {
		close = result.Indicators.Quote[0].Close
	}

	var obs []domain.PriceObservation
	for i, ts := range result.Timestamp {
		price := pick(adjclose, close, i)
		if price == nil {
			continue
		}
		obs = append(obs, domain.PriceObservation{
			Ticker:   ticker,
			Date:     monthStart(time.Unix(ts, 0).UTC()),
			AdjClose: *price,
		})
	}

	if len(obs) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", ticker, ErrNoData)
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs, nil
}

// pick returns the adjusted close at index i, else the raw close, else nil.
func pick(adjclose, close []*float64, i int) *float64 {
	if i < len(adjclose) && adjclose[i] != nil {
		return adjclose[i]
	}
	if i < len(close) && close[i] != nil {
		return close[i]
	}
	return nil
}

// monthStart truncates a timestamp to the first of its month, UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// get performs the chart request with retries and exponential backoff.
func (c *ChartClient) get(ctx context.Context, ticker string, from, to time.Time, out *chartResponse) error {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1mo&events=div%%2Csplit",
		c.baseURL, url.PathEscape(ticker), from.Unix(), to.Unix())

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			observability.RecordProviderRetry()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Retry server-side failures and throttling; anything else is final.
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("http status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch %s: http status %d", ticker, resp.StatusCode)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode chart response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("fetch %s: retries exhausted: %w", ticker, lastErr)
}
