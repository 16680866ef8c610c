package funds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anhbaysgalan1/arena/internal/config"
)

// Client talks to the platform wallet service. Every request carries the
// caller's context so payout deadlines propagate to the wire.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	currency   string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:  cfg.FundsAPIURL,
		apiKey:   cfg.FundsAPIKey,
		currency: cfg.Currency,
	}
}

// APIError represents an error response from the wallet service
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("wallet service error %s: %s", e.Code, e.Message)
}

// TransferRequest credits a destination account
type TransferRequest struct {
	Destination string            `json:"destination"`
	Amount      int64             `json:"amount"`
	Asset       string            `json:"asset"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// TransferResponse carries the wallet service's transfer identifier
type TransferResponse struct {
	TransferID string `json:"transfer_id"`
}

// CreateTransfer posts a single credit to the wallet service and returns
// the transfer ID on success
func (c *Client) CreateTransfer(ctx context.Context, destination string, amount int64, metadata map[string]string) (string, error) {
	reqBody := TransferRequest{
		Destination: destination,
		Amount:      amount,
		Asset:       c.currency,
		Metadata:    metadata,
	}

	var resp TransferResponse
	url := fmt.Sprintf("%s/v1/transfers", c.baseURL)
	if err := c.makeRequest(ctx, http.MethodPost, url, reqBody, &resp); err != nil {
		return "", err
	}
	if resp.TransferID == "" {
		return "", fmt.Errorf("wallet service returned empty transfer id")
	}
	return resp.TransferID, nil
}

func (c *Client) makeRequest(ctx context.Context, method, url string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet service request failed: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if unmarshalErr := json.Unmarshal(respData, &apiErr); unmarshalErr == nil && apiErr.Message != "" {
			return apiErr
		}
		return fmt.Errorf("wallet service returned status %d: %s", resp.StatusCode, string(respData))
	}

	if result != nil {
		if err := json.Unmarshal(respData, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
