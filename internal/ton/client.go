package ton

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

const (
	defaultTimeout = 7 * time.Second
	defaultWindow  = 50
)

type ClientConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
	Timeout time.Duration
}

// Client is a thin toncenter-style indexer client. All calls are read-only;
// a circuit breaker keeps a dead indexer from tying up request handlers for
// the full timeout on every poll.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

type TransactionsResponse struct {
	Ok     bool          `json:"ok"`
	Result []Transaction `json:"result"`
}

type Transaction struct {
	InMsg *InMsg `json:"in_msg"`
}

type InMsg struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	// Value is a decimal string in the smallest on-chain unit (nanoton).
	Value string `json:"value"`
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	settings := gobreaker.Settings{
		Name:    "ton-indexer",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Logger().Info("indexer circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// GetTransactions fetches the most recent transactions for an address.
// Archival mode is requested so entries pruned from non-archival nodes are
// still visible.
func (c *Client) GetTransactions(ctx context.Context, address string, limit int) (*TransactionsResponse, error) {
	if limit <= 0 {
		limit = defaultWindow
	}

	q := url.Values{}
	q.Set("address", address)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("archival", "true")

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getTransactions?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if key := strings.TrimSpace(c.apiKey); key != "" {
			req.Header.Set("X-API-Key", key)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("indexer returned status %d", resp.StatusCode)
		}

		var body TransactionsResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode indexer response: %w", err)
		}
		if !body.Ok {
			return nil, fmt.Errorf("indexer getTransactions: ok=false")
		}
		return &body, nil
	})
	if err != nil {
		return nil, err
	}

	return out.(*TransactionsResponse), nil
}
