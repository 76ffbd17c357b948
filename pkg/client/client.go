// Package client is a small HTTP client for the Aetheria backend API, used
// by tooling and by the payment poll loop.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aetheria_skylands/pkg/poller"

	"github.com/goccy/go-json"
)

var ErrAccountNotFound = errors.New("account not found")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type VerifyMintResult struct {
	Success bool            `json:"success"`
	Status  string          `json:"status"`
	Error   string          `json:"error"`
	User    json.RawMessage `json:"user"`
}

// VerifyMint asks the backend to reconcile the early access payment once.
// A pending payment (HTTP 402) is reported as Success=false with a nil
// error so callers can retry; 404 is terminal.
func (c *Client) VerifyMint(ctx context.Context, walletAddress string) (*VerifyMintResult, error) {
	body, err := json.Marshal(map[string]string{"walletAddress": walletAddress})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payment/verify-mint", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result VerifyMintResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusPaymentRequired:
		return &result, nil
	case http.StatusNotFound:
		return nil, ErrAccountNotFound
	default:
		return nil, fmt.Errorf("verify-mint returned status %d: %s", resp.StatusCode, result.Error)
	}
}

// WaitForPayment polls VerifyMint until the payment is confirmed or the
// attempt budget runs out (20 attempts, 3s apart, ≈60s worst case). The
// returned state distinguishes "confirmed" from "still processing"; the
// caller may invoke WaitForPayment again as a manual "check again". The
// loop stops promptly when ctx is cancelled.
func (c *Client) WaitForPayment(ctx context.Context, walletAddress string) (poller.State, error) {
	p := poller.New(poller.DefaultMaxAttempts, poller.DefaultDelay)
	return p.Run(ctx, func(ctx context.Context) (bool, error) {
		result, err := c.VerifyMint(ctx, walletAddress)
		if err != nil {
			return false, err
		}
		return result.Success, nil
	})
}
