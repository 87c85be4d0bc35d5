// Package websocket streams price updates from Polymarket.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	HandshakeTimeout    = 30 * time.Second
	DefaultCloseTimeout = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second
	PingInterval        = 50 * time.Second
)

type Client struct {
	conn     *websocket.Conn
	stopPing chan struct{}
}

// PriceSubscription asks the venue for price updates on a set of assets.
type PriceSubscription struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
	Channel   string   `json:"channel"`
}

// Tick is one price update. Payloads that don't carry an asset id and a
// price decode to zero values and are skipped by the caller.
type Tick struct {
	AssetID string     `json:"asset_id"`
	Price   FlexString `json:"price"`
}

// FlexString decodes either a JSON string or a bare number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func New(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: HandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("couldn't dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c := &Client{
		conn:     conn,
		stopPing: make(chan struct{}),
	}
	go c.pingLoop()

	return c, nil
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopPing:
			return
		case <-ticker.C:
			deadline := time.Now().Add(DefaultWriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (c *Client) Close(ctx context.Context) error {
	select {
	case <-c.stopPing:
	default:
		close(c.stopPing)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultCloseTimeout)
	}

	// Best effort; the peer may already be gone.
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		deadline,
	)

	return c.conn.Close()
}

// SubscribePrices subscribes to the price channel for the given assets.
func (c *Client) SubscribePrices(ctx context.Context, tokenIDs []string) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultWriteTimeout)
	}
	c.conn.SetWriteDeadline(deadline)

	sub := PriceSubscription{
		Type:      "Subscribe",
		AssetsIDs: tokenIDs,
		Channel:   "price",
	}
	return c.conn.WriteJSON(sub)
}

type result struct {
	RawMessage []byte
	Error      error
}

// ReadTicks blocks for the next message and normalizes it to a tick
// list: the venue sends either a single update or a batch.
func (c *Client) ReadTicks(ctx context.Context) ([]Tick, error) {
	resultCh := make(chan result, 1)

	go func() {
		_, msg, err := c.conn.ReadMessage()
		resultCh <- result{
			RawMessage: msg,
			Error:      err,
		}
	}()

	select {
	case <-ctx.Done():
		c.conn.SetReadDeadline(time.Now())
		return nil, fmt.Errorf("reading message: %w", ctx.Err())
	case result := <-resultCh:
		if result.Error != nil {
			return nil, fmt.Errorf("couldn't read message: %w", result.Error)
		}
		return ParseTicks(result.RawMessage)
	}
}

// ParseTicks decodes a raw message into ticks.
func ParseTicks(msg []byte) ([]Tick, error) {
	i := 0
	for i < len(msg) && (msg[i] == ' ' || msg[i] == '\n' || msg[i] == '\t' || msg[i] == '\r') {
		i++
	}
	if i == len(msg) {
		return nil, fmt.Errorf("empty message")
	}

	if msg[i] == '[' {
		var ticks []Tick
		if err := json.Unmarshal(msg, &ticks); err != nil {
			return nil, fmt.Errorf("couldn't parse tick batch: %w", err)
		}
		return ticks, nil
	}

	var tick Tick
	if err := json.Unmarshal(msg, &tick); err != nil {
		return nil, fmt.Errorf("couldn't parse tick: %w", err)
	}
	return []Tick{tick}, nil
}
