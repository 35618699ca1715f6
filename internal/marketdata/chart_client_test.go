package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chartBody(timestamps []int64, adjclose, close []interface{}) string {
	render := func(vals []interface{}) string {
		parts := make([]string, len(vals))
		for i, v := range vals {
			if v == nil {
				parts[i] = "null"
			} else {
				parts[i] = fmt.Sprintf("%v", v)
			}
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	tsParts := make([]string, len(timestamps))
	for i, ts := range timestamps {
		tsParts[i] = fmt.Sprintf("%d", ts)
	}
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{"close":%s}],"adjclose":[{"adjclose":%s}]}}],"error":null}}`,
		strings.Join(tsParts, ","), render(close), render(adjclose))
}

func TestChartClient_FetchMonthly(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/ISF.L") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1mo" {
			t.Errorf("expected interval=1mo, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody(
			[]int64{jan.Unix(), feb.Unix()},
			[]interface{}{101.5, 103.25},
			[]interface{}{100.0, 102.0},
		))
	}))
	defer server.Close()

	client := NewChartClient(server.URL)
	obs, err := client.FetchMonthly(context.Background(), "ISF.L", jan, feb.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("FetchMonthly: %v", err)
	}

	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	// Adjusted close wins over raw close.
	if obs[0].AdjClose != 101.5 {
		t.Errorf("expected adjusted close 101.5, got %f", obs[0].AdjClose)
	}
	if !obs[0].Date.Equal(jan) {
		t.Errorf("expected date truncated to month start %v, got %v", jan, obs[0].Date)
	}
	if obs[0].Ticker != "ISF.L" {
		t.Errorf("expected ticker ISF.L, got %s", obs[0].Ticker)
	}
}

func TestChartClient_FallsBackToRawClose(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// First month misses the adjusted value, second misses both.
		fmt.Fprint(w, chartBody(
			[]int64{jan.Unix(), feb.Unix()},
			[]interface{}{nil, nil},
			[]interface{}{100.0, nil},
		))
	}))
	defer server.Close()

	client := NewChartClient(server.URL)
	obs, err := client.FetchMonthly(context.Background(), "ISF.L", jan, feb.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("FetchMonthly: %v", err)
	}

	if len(obs) != 1 {
		t.Fatalf("expected month with no price skipped, got %d observations", len(obs))
	}
	if obs[0].AdjClose != 100.0 {
		t.Errorf("expected raw close fallback 100.0, got %f", obs[0].AdjClose)
	}
}

func TestChartClient_RetriesServerErrors(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody([]int64{jan.Unix()}, []interface{}{101.5}, []interface{}{100.0}))
	}))
	defer server.Close()

	client := NewChartClient(server.URL,
		WithMaxRetries(3),
		WithRetryDelay(time.Millisecond),
	)
	obs, err := client.FetchMonthly(context.Background(), "ISF.L", jan, jan.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("FetchMonthly after retries: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if len(obs) != 1 {
		t.Errorf("expected 1 observation, got %d", len(obs))
	}
}

func TestChartClient_ExhaustedRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewChartClient(server.URL,
		WithMaxRetries(1),
		WithRetryDelay(time.Millisecond),
	)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := client.FetchMonthly(context.Background(), "ISF.L", jan, jan.AddDate(0, 1, 0)); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestChartClient_ClientErrorIsFinal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewChartClient(server.URL, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchMonthly(context.Background(), "BOGUS.L", jan, jan.AddDate(0, 1, 0))
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("client errors must not retry; got %d attempts", got)
	}
}

func TestChartClient_APIErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer server.Close()

	client := NewChartClient(server.URL)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchMonthly(context.Background(), "GONE.L", jan, jan.AddDate(0, 1, 0))
	if err == nil {
		t.Fatal("expected error from API error envelope")
	}
	var chartErr *chartError
	if !errors.As(err, &chartErr) {
		t.Fatalf("expected wrapped chartError, got %v", err)
	}
}

func TestChartClient_EmptyResultIsErrNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewChartClient(server.URL)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchMonthly(context.Background(), "ISF.L", jan, jan.AddDate(0, 1, 0))
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}
