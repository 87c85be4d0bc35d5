// Package oracle reads reference spot prices from Binance.
package oracle

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"polymarket-hunter/pkg/httpclient"
)

const DefaultTimeout = 5 * time.Second

const (
	SymbolBTC = "BTCUSDT"
	SymbolETH = "ETHUSDT"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
	}
}

// SymbolForTitle resolves the reference symbol for a market title:
// anything mentioning bitcoin is BTC, everything else is treated as ETH.
func SymbolForTitle(title string) string {
	upper := strings.ToUpper(title)
	if strings.Contains(upper, "BITCOIN") || strings.Contains(upper, "BTC") {
		return SymbolBTC
	}
	return SymbolETH
}

type ticker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Price fetches the current spot price for a symbol.
func (c *Client) Price(ctx context.Context, symbol string) (float64, error) {
	endpoint := "/api/v3/ticker/price?symbol=" + symbol
	t, err := httpclient.GetResource[ticker](ctx, c.httpClient, c.baseURL, endpoint, []int{200})
	if err != nil {
		return 0, fmt.Errorf("couldn't get ticker for %s: %w", symbol, err)
	}

	p, err := strconv.ParseFloat(t.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse ticker price %q for %s: %w", t.Price, symbol, err)
	}
	return p, nil
}
