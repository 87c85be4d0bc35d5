// Package clob is used to call clob Polymarket endpoints.
package clob

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/pkg/httpclient"
)

// BookTimeout is deliberately short: a stale-liquidity check that has
// to wait is already stale.
const BookTimeout = 2 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: BookTimeout},
		baseURL:    baseURL,
	}
}

type BookLevel struct {
	Price price.Price `json:"price"`
	Size  string      `json:"size"`
}

type Book struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// Book fetches the current order book for a token.
func (c *Client) Book(ctx context.Context, tokenID string) (*Book, error) {
	endpoint := "/book?token_id=" + url.QueryEscape(tokenID)
	book, err := httpclient.GetResource[*Book](ctx, c.httpClient, c.baseURL, endpoint, []int{200})
	if err != nil {
		return nil, fmt.Errorf("couldn't get order book for token %s: %w", tokenID, err)
	}
	return book, nil
}
