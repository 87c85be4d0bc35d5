// Package gamma consumes Polymarket gamma endpoints.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"polymarket-hunter/pkg/httpclient"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
	header     http.Header
}

// New creates a gamma client. The header is attached to every request
// (the venue rejects requests without a browser-ish User-Agent).
func New(baseURL string, header http.Header) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		header:     header,
	}
}

// StringList tolerates both a native JSON array and the API's
// double-encoded variant, where the array arrives as a serialized
// string like "[\"Yes\",\"No\"]". A value that parses as neither
// decodes to nil rather than failing the surrounding events batch;
// one garbled sub-market must not cost the whole scan cycle.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, (*[]string)(l)); err != nil {
			*l = nil
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(s), (*[]string)(l)); err != nil {
		*l = nil
	}
	return nil
}

// Volume tolerates both a JSON number and a quoted decimal string.
// Anything unparseable decodes to zero, leaving the sub-market to the
// volume floor instead of failing the batch.
type Volume float64

func (v *Volume) UnmarshalJSON(data []byte) error {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*v = 0
		return nil
	}
	*v = Volume(f)
	return nil
}

// Timestamp parses RFC3339 strings and decodes empty or missing values
// to the zero time instead of failing the whole event.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

type Tag struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

type Market struct {
	Volume         Volume     `json:"volume"`
	Outcomes       StringList `json:"outcomes"`
	ClobTokenIDs   StringList `json:"clobTokenIds"`
	GroupItemTitle string     `json:"groupItemTitle"`
}

type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	StartDate Timestamp `json:"startDate"`
	EndDate   Timestamp `json:"endDate"`
	Tags      []Tag     `json:"tags"`
	Markets   []*Market `json:"markets"`
}

// Events fetches active events for one tag slug, highest volume first.
func (c *Client) Events(ctx context.Context, tagSlug string, limit int) ([]*Event, error) {
	q := url.Values{}
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("tag_slug", tagSlug)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order", "volume")
	q.Set("ascending", "false")

	events, err := httpclient.GetResourceHeader[[]*Event](ctx, c.httpClient, c.baseURL, "/events?"+q.Encode(), c.header, []int{200})
	if err != nil {
		return nil, fmt.Errorf("couldn't get events for tag %s: %w", tagSlug, err)
	}
	return events, nil
}
