package coingecko

import (
	"adledger-server/internal/observability"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is the simple-price endpoint for TON in USD with the 24h change
const DefaultURL = "https://api.coingecko.com/api/v3/simple/price?ids=the-open-network&vs_currencies=usd&include_24hr_change=true"

const coinID = "the-open-network"

var (
	ErrUnexpectedStatus = errors.New("unexpected price feed status")
	ErrMissingPrice     = errors.New("price feed response has no usd price")
)

// Quote is a display price and its 24 hour change in percent
type Quote struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
}

type coinPrice struct {
	USD          *float64 `json:"usd"`
	USD24hChange float64  `json:"usd_24h_change"`
}

// Client fetches quotes from the CoinGecko simple-price API
type Client struct {
	url        string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a new price feed client. An empty url uses DefaultURL.
func NewClient(url string, logger *observability.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// FetchTONPrice returns the current TON/USD quote
func (c *Client) FetchTONPrice(ctx context.Context) (Quote, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "price_feed", Value: "coingecko"},
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		c.logger.Error(ctx, "failed to create price feed request", err)
		return Quote{}, fmt.Errorf("failed to create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnWithError(ctx, "failed to call price feed", err)
		return Quote{}, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Quote{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var body map[string]coinPrice
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WarnWithError(ctx, "failed to parse price feed response", err)
		return Quote{}, fmt.Errorf("failed to parse price response: %w", err)
	}

	coin, ok := body[coinID]
	if !ok || coin.USD == nil || *coin.USD <= 0 {
		return Quote{}, ErrMissingPrice
	}

	return Quote{Price: *coin.USD, Change24h: coin.USD24hChange}, nil
}
