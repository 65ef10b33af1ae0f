// Package yahoo implements the market data port against the Yahoo
// Finance chart and quote HTTP APIs.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/volodymyr-data/investment-tracker/internal/domain"
)

const (
	// DefaultBaseURL is the public Yahoo Finance query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// Yahoo rejects requests without a browser-ish user agent.
	userAgent = "Mozilla/5.0 (compatible; investment-tracker/1.0)"

	// historicalWindow bounds the search for the nearest trading date at
	// or after the requested purchase date. Two weeks covers any run of
	// weekends and market holidays.
	historicalWindow = 14 * 24 * time.Hour
)

// Client looks up closing prices over HTTP. It implements
// domain.PriceSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a new price lookup client. An empty baseURL selects
// the public Yahoo Finance endpoint.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// LookupHistorical returns the closing price on the nearest trading date
// at or after the given date.
func (c *Client) LookupHistorical(ctx context.Context, ticker string, date time.Time) (decimal.Decimal, error) {
	day := date.Truncate(24 * time.Hour)
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", day.Unix()))
	params.Set("period2", fmt.Sprintf("%d", day.Add(historicalWindow).Unix()))

	var resp chartResponse
	if err := c.fetchJSON(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, &resp); err != nil {
		return decimal.Zero, err
	}

	closes, timestamps, err := chartSeries(&resp, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	for i, ts := range timestamps {
		if ts < day.Unix() || closes[i] == nil {
			continue
		}
		return decimal.NewFromFloat(*closes[i]), nil
	}

	return decimal.Zero, fmt.Errorf("%w: no trading data for %s at or after %s",
		domain.ErrPriceUnavailable, ticker, day.Format("2006-01-02"))
}

// LookupLatest returns the most recent closing price as of the last
// completed trading session.
func (c *Client) LookupLatest(ctx context.Context, ticker string) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "7d")

	var resp chartResponse
	if err := c.fetchJSON(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, &resp); err != nil {
		return decimal.Zero, err
	}

	closes, _, err := chartSeries(&resp, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	// Walk back from the end: the last bucket can hold a null close
	// while a session is still open.
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil {
			return decimal.NewFromFloat(*closes[i]), nil
		}
	}

	return decimal.Zero, fmt.Errorf("%w: no recent closing price for %s", domain.ErrPriceUnavailable, ticker)
}

// LookupLatestBatch returns the latest prices for a set of tickers in a
// single quote request. Tickers Yahoo does not know are simply absent
// from the result map.
func (c *Client) LookupLatestBatch(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	if len(tickers) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	params := url.Values{}
	params.Set("symbols", strings.Join(tickers, ","))

	var resp quoteResponse
	if err := c.fetchJSON(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(resp.QuoteResponse.Result))
	for _, q := range resp.QuoteResponse.Result {
		if q.RegularMarketPrice == nil {
			continue
		}
		prices[domain.NormalizeTicker(q.Symbol)] = decimal.NewFromFloat(*q.RegularMarketPrice)
	}

	return prices, nil
}

func (c *Client) fetchJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.log.WithField("url", reqURL).Debug("fetching prices")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	// Yahoo answers 404 for symbols it has never listed.
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrPriceUnavailable, path)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode price response: %w", err)
	}
	return nil
}

// chartSeries extracts the close series from a chart response, mapping
// empty or error results onto ErrPriceUnavailable.
func chartSeries(resp *chartResponse, ticker string) ([]*float64, []int64, error) {
	if resp.Chart.Error != nil {
		return nil, nil, fmt.Errorf("%w: %s: %s", domain.ErrPriceUnavailable, ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("%w: no chart data for %s", domain.ErrPriceUnavailable, ticker)
	}

	result := resp.Chart.Result[0]
	return result.Indicators.Quote[0].Close, result.Timestamp, nil
}
