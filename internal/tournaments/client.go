package tournaments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anhbaysgalan1/arena/internal/config"
	"github.com/anhbaysgalan1/arena/internal/models"
	"github.com/google/uuid"
)

// Client fetches tournament configuration and final standings from the
// tournament service. Both are consumed read-only; the ledger never writes
// back.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: cfg.TournamentAPIURL,
		apiKey:  cfg.TournamentAPIKey,
	}
}

// GetFinanceConfig fetches and validates the financial slice of a
// tournament's configuration
func (c *Client) GetFinanceConfig(ctx context.Context, tournamentID uuid.UUID) (*models.FinanceConfig, error) {
	url := fmt.Sprintf("%s/v1/tournaments/%s/finance-config", c.baseURL, tournamentID)

	var cfg models.FinanceConfig
	if err := c.getJSON(ctx, url, &cfg); err != nil {
		return nil, fmt.Errorf("failed to fetch finance config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("tournament %s has invalid finance config: %w", tournamentID, err)
	}
	return &cfg, nil
}

// GetResults fetches a tournament's final rank-to-winner standing
func (c *Client) GetResults(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentResult, error) {
	url := fmt.Sprintf("%s/v1/tournaments/%s/results", c.baseURL, tournamentID)

	var payload struct {
		Results []models.TournamentResult `json:"results"`
	}
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch tournament results: %w", err)
	}
	return payload.Results, nil
}

func (c *Client) getJSON(ctx context.Context, url string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tournament service request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("tournament service returned status %d: %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, result)
}
