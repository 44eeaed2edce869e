package services

import (
	"context"
	"errors"
)

// ErrRateNotFound is returned when the exchange-rate response does not carry
// the MXN rate. It is distinct from transport failures so callers can tell a
// malformed rate table apart from a dead network.
var ErrRateNotFound = errors.New("MXN rate not found")

// CurrencyRepository fetches the USD to MXN exchange rate. One call, one
// value; no retry and no caching.
type CurrencyRepository struct {
	api *ExchangeRateClient
}

func NewCurrencyRepository(api *ExchangeRateClient) *CurrencyRepository {
	return &CurrencyRepository{api: api}
}

// FetchUSDToMXNRate fetches the current rate table and extracts MXN.
func (r *CurrencyRepository) FetchUSDToMXNRate(ctx context.Context) (float64, error) {
	rates, err := r.api.GetUSDRates(ctx)
	if err != nil {
		return 0, err
	}
	rate, ok := rates["MXN"]
	if !ok {
		return 0, ErrRateNotFound
	}
	return rate, nil
}
