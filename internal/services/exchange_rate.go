package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const exchangeRateBaseURL = "https://open.er-api.com"

// ExchangeRateClient fetches currency rates from the open.er-api.com
// service. No auth, no retry, no caching: every call is a fresh round trip.
type ExchangeRateClient struct {
	client  *http.Client
	baseURL string
}

type exchangeRateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func NewExchangeRateClient() *ExchangeRateClient {
	return &ExchangeRateClient{
		client: &http.Client{
			Timeout: justTCGDefaultTimeout,
		},
		baseURL: exchangeRateBaseURL,
	}
}

// GetUSDRates returns the rate table for a USD base.
func (c *ExchangeRateClient) GetUSDRates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v6/latest/USD", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API error: status %d", resp.StatusCode)
	}

	var rateResp exchangeRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return rateResp.Rates, nil
}
