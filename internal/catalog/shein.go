package catalog

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

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultBaseURL is the RapidAPI endpoint of the unofficial SHEIN API.
	DefaultBaseURL = "https://unofficial-shein.p.rapidapi.com"

	// DefaultHost is sent as X-RapidAPI-Host.
	DefaultHost = "unofficial-shein.p.rapidapi.com"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 5 * time.Second

	// UserAgentName is the application name used in the User-Agent header.
	UserAgentName = "outfit-analyzer"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 8 << 20
)

// ClientConfig configures a SHEIN search client.
type ClientConfig struct {
	// BaseURL is the API root. If empty, DefaultBaseURL is used.
	BaseURL string

	// APIKey is sent as X-RapidAPI-Key.
	APIKey string

	// Host is sent as X-RapidAPI-Host. If empty, DefaultHost is used.
	Host string

	// Timeout bounds each request. If zero, DefaultTimeout is used.
	Timeout time.Duration

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// HTTPClient overrides the transport. Its Timeout is left untouched.
	HTTPClient *http.Client

	// Formatter converts records and builds fallbacks. If nil, defaults apply.
	Formatter *Formatter

	// Logger receives request diagnostics. If nil, logging is discarded.
	Logger hclog.Logger
}

// Client searches products through the SHEIN RapidAPI.
//
// Upstream failures of any kind (transport errors, non-200 responses,
// malformed bodies, empty product lists) are absorbed into the fallback
// list. Only cancellation or expiry of the caller's context is reported as
// an error.
type Client struct {
	endpoint  string
	apiKey    string
	host      string
	userAgent string
	http      *http.Client
	formatter *Formatter
	logger    hclog.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = UserAgentName
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	formatter := cfg.Formatter
	if formatter == nil {
		formatter = NewFormatter(nil, nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Client{
		endpoint:  base + "/products/search",
		apiKey:    cfg.APIKey,
		host:      host,
		userAgent: userAgent,
		http:      httpClient,
		formatter: formatter,
		logger:    logger,
	}
}

// searchResponse is the envelope returned by the search endpoint.
type searchResponse struct {
	Code json.RawMessage `json:"code"`
	Msg  string          `json:"msg"`
	Info struct {
		Products []rawProduct `json:"products"`
	} `json:"info"`
}

// Search queries the API for q. See Client for the error contract.
func (c *Client) Search(ctx context.Context, q Query) ([]Product, error) {
	products, err := c.search(ctx, q)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("product search failed, using fallback",
			"keywords", q.Keywords(), "error", err)
		return c.formatter.Fallback(q), nil
	}
	if len(products) == 0 {
		c.logger.Debug("no products found, using fallback", "keywords", q.Keywords())
		return c.formatter.Fallback(q), nil
	}
	return products, nil
}

func (c *Client) search(ctx context.Context, q Query) ([]Product, error) {
	limit := q.limit()
	params := url.Values{}
	params.Set("keywords", q.Keywords())
	params.Set("language", "en")
	params.Set("country", "US")
	params.Set("currency", Currency)
	params.Set("page", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort", "7")
	params.Set("price_min", "0")
	params.Set("price_max", "200")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	c.logger.Debug("searching products", "keywords", q.Keywords(), "limit", limit)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var body searchResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if scalarString(body.Code) != "0" || body.Msg != "ok" {
		return nil, fmt.Errorf("unsuccessful response: code=%s msg=%q", scalarString(body.Code), body.Msg)
	}

	records := body.Info.Products
	if len(records) > limit {
		records = records[:limit]
	}

	products := make([]Product, 0, len(records))
	for _, r := range records {
		p := c.formatter.format(r, q)
		products = append(products, p)
		c.logger.Debug("added product", "title", p.Title, "price", p.Price.Current)
	}
	return products, nil
}
