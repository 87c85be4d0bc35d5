package hunter

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"polymarket-hunter/internal/cooldown"
	"polymarket-hunter/internal/ledger"
	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/internal/strategy"
)

// fakeStrategy alerts on everything inside [0.8, 0.97] unless risky
// is set, in which case the risk stage suppresses.
type fakeStrategy struct {
	risky     bool
	evaluated int
}

func (f *fakeStrategy) Domain() string { return "test" }

func (f *fakeStrategy) Tags() []string { return []string{"test"} }

func (f *fakeStrategy) FilterEvent(ev *gamma.Event, now time.Time) bool { return true }

func (f *fakeStrategy) MinVolume() float64 { return 0 }

func (f *fakeStrategy) InPriceWindow(p price.Price) bool {
	return p >= price.FromFloat(0.8) && p <= price.FromFloat(0.97)
}
func (f *fakeStrategy) Instrument(ev *gamma.Event, m *gamma.Market, outcome, tokenID string, now time.Time) market.Instrument {
	return market.Instrument{ID: tokenID, Domain: "test"}
}
func (f *fakeStrategy) Evaluate(ctx context.Context, inst market.Instrument, p price.Price, now time.Time) strategy.Decision {
	f.evaluated++
	if f.risky {
		return strategy.Decision{Reason: "too risky"}
	}
	return strategy.Decision{Alert: true}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) Send(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestHunter(t *testing.T, strat *fakeStrategy) (*Hunter, *fakeNotifier, *market.Store) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &fakeNotifier{}
	markets := market.NewStore()
	l := ledger.New(filepath.Join(t.TempDir(), "trades.csv"), log)
	h := New(strat, nil, nil, markets, cooldown.New(0), notifier, l, nil, time.Minute, log)
	return h, notifier, markets
}

func TestHandleTickAlerts(t *testing.T) {
	strat := &fakeStrategy{}
	h, notifier, markets := newTestHunter(t, strat)
	markets.Put(market.Instrument{ID: "tok", Domain: "test", Title: "T", Outcome: "Yes", Slug: "t"})

	h.HandleTick(context.Background(), "tok", price.FromFloat(0.9))

	if notifier.count() != 1 {
		t.Fatalf("got %d alerts, want 1", notifier.count())
	}
}

func TestHandleTickPriceWindowGate(t *testing.T) {
	strat := &fakeStrategy{}
	h, notifier, markets := newTestHunter(t, strat)
	markets.Put(market.Instrument{ID: "tok", Domain: "test"})

	h.HandleTick(context.Background(), "tok", price.FromFloat(0.5))

	if strat.evaluated != 0 {
		t.Error("out-of-window tick must not reach the risk stage")
	}
	if notifier.count() != 0 {
		t.Error("out-of-window tick must not alert")
	}
}

func TestHandleTickUnknownInstrument(t *testing.T) {
	strat := &fakeStrategy{}
	h, notifier, _ := newTestHunter(t, strat)

	h.HandleTick(context.Background(), "missing", price.FromFloat(0.9))

	if strat.evaluated != 0 || notifier.count() != 0 {
		t.Error("tick for an unknown instrument must be dropped")
	}
}

func TestHandleTickRiskSuppression(t *testing.T) {
	strat := &fakeStrategy{risky: true}
	h, notifier, markets := newTestHunter(t, strat)
	markets.Put(market.Instrument{ID: "tok", Domain: "test"})

	h.HandleTick(context.Background(), "tok", price.FromFloat(0.9))
	h.HandleTick(context.Background(), "tok", price.FromFloat(0.9))

	if notifier.count() != 0 {
		t.Fatal("risky ticks must not alert")
	}

	// Rejected ticks must not consume the cooldown bucket: once the
	// risk clears, the very next tick alerts.
	strat.risky = false
	h.HandleTick(context.Background(), "tok", price.FromFloat(0.9))
	if notifier.count() != 1 {
		t.Fatal("first clean tick after risk clears must alert")
	}
}

func TestHandleTickCooldown(t *testing.T) {
	strat := &fakeStrategy{}
	h, notifier, markets := newTestHunter(t, strat)
	markets.Put(market.Instrument{ID: "tok", Domain: "test"})

	h.HandleTick(context.Background(), "tok", price.FromFloat(0.9))
	h.HandleTick(context.Background(), "tok", price.FromFloat(0.91))

	if notifier.count() != 1 {
		t.Fatalf("got %d alerts, want 1 per instrument per minute", notifier.count())
	}
}
