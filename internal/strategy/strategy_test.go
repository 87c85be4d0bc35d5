package strategy

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/oracle"
	"polymarket-hunter/internal/polymarket/clob"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeEvent(title string, endsIn time.Duration, tags ...gamma.Tag) *gamma.Event {
	return &gamma.Event{
		ID:      "ev",
		Title:   title,
		Slug:    "slug",
		EndDate: gamma.Timestamp{Time: testNow.Add(endsIn)},
		Tags:    tags,
	}
}

func TestCryptoFilterEvent(t *testing.T) {
	c := NewCrypto(Config{EndingWithinHours: 6}, nil, testLogger())

	tests := []struct {
		name string
		ev   *gamma.Event
		want bool
	}{
		{"btc target in window", makeEvent("Will Bitcoin reach $100,000?", 2*time.Hour), true},
		{"eth target in window", makeEvent("Ethereum above $5,000 today?", 3*time.Hour), true},
		{"too far out", makeEvent("Will Bitcoin reach $100,000?", 8*time.Hour), false},
		{"already ended", makeEvent("Will Bitcoin reach $100,000?", -time.Hour), false},
		{"season long", makeEvent("Bitcoin cycle winner 2026", 2*time.Hour), false},
		{"not btc or eth", makeEvent("Will Solana reach $500?", 2*time.Hour), false},
		{"coin flip market", makeEvent("Bitcoin up or down at 1pm", 2*time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.FilterEvent(tt.ev, testNow); got != tt.want {
				t.Errorf("FilterEvent(%q) = %v, want %v", tt.ev.Title, got, tt.want)
			}
		})
	}
}

func TestCryptoFilterEventTagWhitelist(t *testing.T) {
	c := NewCrypto(Config{EndingWithinHours: 6, TargetTags: []string{"crypto"}}, nil, testLogger())

	tagged := makeEvent("Will Bitcoin reach $100,000?", 2*time.Hour, gamma.Tag{Label: "Crypto", Slug: "crypto"})
	if !c.FilterEvent(tagged, testNow) {
		t.Error("tagged event should pass")
	}

	untagged := makeEvent("Will Bitcoin reach $100,000?", 2*time.Hour, gamma.Tag{Label: "Politics", Slug: "politics"})
	if c.FilterEvent(untagged, testNow) {
		t.Error("event outside the tag whitelist should be rejected")
	}
}

func TestSportsFilterEvent(t *testing.T) {
	s := NewSports(Config{TargetTags: []string{"nba"}}, nil, testLogger())
	nba := gamma.Tag{Label: "NBA", Slug: "nba"}

	tests := []struct {
		name string
		ev   *gamma.Event
		want bool
	}{
		{"game tomorrow", makeEvent("Lakers vs Celtics", 20*time.Hour, nba), true},
		{"game running over", makeEvent("Lakers vs Celtics", -2*time.Hour, nba), true},
		{"too far out", makeEvent("Lakers vs Celtics", 50*time.Hour, nba), false},
		{"long finished", makeEvent("Lakers vs Celtics", -4*time.Hour, nba), false},
		{"wrong tag", makeEvent("Lakers vs Celtics", 20*time.Hour, gamma.Tag{Label: "NFL", Slug: "nfl"}), false},
		// Matches the tag whitelist but is a season-long market, not a game.
		{"championship future", makeEvent("NBA Finals Champion", 20*time.Hour, gamma.Tag{Label: "NBA Finals", Slug: "nba-finals"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.FilterEvent(tt.ev, testNow); got != tt.want {
				t.Errorf("FilterEvent(%q, end %v) = %v, want %v", tt.ev.Title, tt.ev.EndDate.Time, got, tt.want)
			}
		})
	}
}

func TestSportsInstrumentLiveFlag(t *testing.T) {
	s := NewSports(Config{}, nil, testLogger())
	m := &gamma.Market{Volume: 1000}

	tests := []struct {
		endsIn time.Duration
		live   bool
	}{
		{time.Hour, true},         // starting soon or running
		{-30 * time.Minute, true}, // running over its end time
		{5 * time.Hour, false},
		{-2 * time.Hour, false},
	}
	for _, tt := range tests {
		ev := makeEvent("Lakers vs Celtics", tt.endsIn)
		inst := s.Instrument(ev, m, "Lakers", "tok", testNow)
		if inst.Live != tt.live {
			t.Errorf("ends in %v: live = %v, want %v", tt.endsIn, inst.Live, tt.live)
		}
	}
}

func cryptoInstrument(title string, endsIn time.Duration) market.Instrument {
	return market.Instrument{
		ID:      "tok",
		Domain:  "crypto",
		Title:   title,
		Outcome: "Yes",
		EndTime: testNow.Add(endsIn),
	}
}

func binanceStub(t *testing.T, priceText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		w.Write([]byte(`{"symbol":"` + symbol + `","price":"` + priceText + `"}`))
	}))
}

func TestCryptoEvaluateSafeGap(t *testing.T) {
	srv := binanceStub(t, "90000.00")
	defer srv.Close()

	c := NewCrypto(Config{EndingWithinHours: 6}, oracle.New(srv.URL), testLogger())
	inst := cryptoInstrument("Will Bitcoin reach $100,000?", 2*time.Hour)

	d := c.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if !d.Alert {
		t.Fatalf("want alert, got suppressed: %s", d.Reason)
	}
	if !strings.Contains(d.Context, "BTCUSDT") {
		t.Errorf("context should carry the oracle symbol: %q", d.Context)
	}
}

func TestCryptoEvaluateInRange(t *testing.T) {
	srv := binanceStub(t, "100000.00")
	defer srv.Close()

	c := NewCrypto(Config{EndingWithinHours: 6}, oracle.New(srv.URL), testLogger())
	inst := cryptoInstrument("Will Bitcoin reach $100,000?", 2*time.Hour)

	d := c.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if d.Alert {
		t.Fatal("price inside the target range must be suppressed")
	}
}

func TestCryptoEvaluateGapTooSmall(t *testing.T) {
	// 1% gap with 2h left needs > 3%.
	srv := binanceStub(t, "99000.00")
	defer srv.Close()

	c := NewCrypto(Config{EndingWithinHours: 6}, oracle.New(srv.URL), testLogger())
	inst := cryptoInstrument("Will Bitcoin reach $100,000?", 2*time.Hour)

	d := c.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if d.Alert {
		t.Fatal("thin gap must be suppressed")
	}
}

func TestCryptoEvaluateOracleDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCrypto(Config{EndingWithinHours: 6}, oracle.New(srv.URL), testLogger())
	inst := cryptoInstrument("Will Bitcoin reach $100,000?", 2*time.Hour)

	d := c.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if !d.Alert {
		t.Fatal("an unavailable oracle forwards the alert unverified")
	}
}

func TestCryptoEvaluateNoTarget(t *testing.T) {
	srv := binanceStub(t, "90000.00")
	defer srv.Close()

	c := NewCrypto(Config{EndingWithinHours: 6}, oracle.New(srv.URL), testLogger())
	inst := cryptoInstrument("Will Bitcoin flip Ethereum?", 2*time.Hour)

	d := c.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if d.Alert {
		t.Fatal("a market without a parseable target must abstain")
	}
}

func TestSportsEvaluate(t *testing.T) {
	book := `{"bids":[{"price":"0.90","size":"100"}],"asks":[{"price":"0.92","size":"80"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token_id") != "tok" {
			t.Errorf("unexpected token_id %q", r.URL.Query().Get("token_id"))
		}
		w.Write([]byte(book))
	}))
	defer srv.Close()

	s := NewSports(Config{}, clob.New(srv.URL), testLogger())
	inst := market.Instrument{ID: "tok", Domain: "sports", Title: "Lakers vs Celtics", Outcome: "Lakers"}

	d := s.Evaluate(context.Background(), inst, price.FromFloat(0.91), testNow)
	if !d.Alert {
		t.Fatalf("tight book should pass: %s", d.Reason)
	}
	if !strings.Contains(d.Context, "spread") {
		t.Errorf("context should describe the book: %q", d.Context)
	}
}

func TestSportsEvaluateWideSpread(t *testing.T) {
	book := `{"bids":[{"price":"0.80","size":"100"}],"asks":[{"price":"0.95","size":"80"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(book))
	}))
	defer srv.Close()

	s := NewSports(Config{}, clob.New(srv.URL), testLogger())
	inst := market.Instrument{ID: "tok", Domain: "sports"}

	d := s.Evaluate(context.Background(), inst, price.FromFloat(0.84), testNow)
	if d.Alert {
		t.Fatal("wide spread must be suppressed")
	}
}

func TestSportsEvaluateBookUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSports(Config{}, clob.New(srv.URL), testLogger())
	inst := market.Instrument{ID: "tok", Domain: "sports"}

	d := s.Evaluate(context.Background(), inst, price.FromFloat(0.9), testNow)
	if d.Alert {
		t.Fatal("an unreadable book must suppress the alert")
	}
}
