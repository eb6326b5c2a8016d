// Package quote fetches live prices from a Finnhub-style quote API.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/finance/internal/logging"
)

const (
	DefaultBaseURL   = "https://finnhub.io/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 60 // requests per minute
	DefaultBurst     = 30

	maxBody = 1 << 20
)

var (
	// ErrNetwork reports a request that got no response: transport error
	// or rate limiter wait.
	ErrNetwork = errors.New("network error")
	// ErrParse reports a response body that is not JSON, whatever its
	// status.
	ErrParse = errors.New("parse error")
)

// StockQuote is a transient price snapshot. Change is the percent move
// from the previous close.
type StockQuote struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// Client queries the provider one symbol at a time.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP timeout. Zero means no timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps requests per minute. Zero or less disables the
// limiter.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		c.limiter = newLimiter(perMinute)
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := min(perMinute, DefaultBurst)
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// NewClient creates a quote client authenticating with apiKey.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: newLimiter(DefaultRateLimit),
		logger:  logging.NewSilent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Quote fetches a single symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (StockQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return StockQuote{}, fmt.Errorf("%w: rate limit wait for %s: %v", ErrNetwork, symbol, err)
	}

	u, err := url.Parse(c.baseURL + "/quote")
	if err != nil {
		return StockQuote{}, fmt.Errorf("%w: bad base url: %v", ErrNetwork, err)
	}
	q := u.Query()
	q.Set("symbol", symbol)
	q.Set("token", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return StockQuote{}, fmt.Errorf("%w: request failed for %s: %v", ErrNetwork, symbol, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("symbol", symbol).Str("host", u.Host).Msg("quote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StockQuote{}, fmt.Errorf("%w: request failed for %s: %v", ErrNetwork, symbol, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return StockQuote{}, fmt.Errorf("%w: read failed for %s: %v", ErrNetwork, symbol, err)
	}

	// the body is read whatever the status: a JSON error reply has no
	// c or pc and prices the symbol at 0
	var jobj any
	if err := json.Unmarshal(body, &jobj); err != nil {
		return StockQuote{}, fmt.Errorf("%w: invalid response for %s (http %d): %v", ErrParse, symbol, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("symbol", symbol).
			Int("status", resp.StatusCode).
			Str("body", strings.TrimSpace(string(body))).
			Msg("quote provider returned an error status")
	}

	price := number(jobj, "$.c")
	prevClose := number(jobj, "$.pc")

	return StockQuote{
		Symbol: symbol,
		Name:   symbol,
		Price:  price,
		Change: PercentChange(price, prevClose),
	}, nil
}

// Fetch quotes every symbol in order, one request at a time. The first
// failure aborts the batch and no quotes are returned, including those
// already fetched.
func (c *Client) Fetch(ctx context.Context, symbols []string) ([]StockQuote, error) {
	c.logger.Debug().Strs("symbols", symbols).Msg("fetching quotes")

	quotes := make([]StockQuote, 0, len(symbols))
	for _, s := range symbols {
		q, err := c.Quote(ctx, s)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", s).Msg("quote batch aborted")
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// PercentChange is (price-prevClose)/prevClose*100, or 0 when prevClose
// is 0.
func PercentChange(price, prevClose float64) float64 {
	if prevClose == 0 {
		return 0
	}
	return (price - prevClose) / prevClose * 100
}

// number reads a numeric field; anything missing or non-numeric is 0.
func number(jobj any, path string) float64 {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	f, ok := jval.(float64)
	if !ok {
		return 0
	}
	return f
}

// redact keeps the API key out of transport errors, which embed the URL.
func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
}
