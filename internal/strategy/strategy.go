// Package strategy defines the per-domain behavior plugged into the
// shared scan → subscribe → tick → risk pipeline: which events to
// discover, how to turn them into instruments, and how to judge a
// live tick.
package strategy

import (
	"context"
	"time"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
)

// Config is the externally supplied, read-only strategy tuning.
type Config struct {
	TargetTags        []string
	MinVolume         float64
	PriceMin          float64
	PriceMax          float64
	EndingWithinHours float64
	ScanPeriod        time.Duration
}

// Decision is the outcome of judging one tick.
type Decision struct {
	Alert bool
	// Reason explains a suppressed alert for the log.
	Reason string
	// Context is extra lines appended to the alert message.
	Context string
}

type Strategy interface {
	Domain() string

	// Tags lists the gamma tag slugs to query, base tag first, deduplicated.
	Tags() []string

	// FilterEvent applies the domain's discovery filters to one event.
	FilterEvent(ev *gamma.Event, now time.Time) bool

	// MinVolume is the sub-market volume floor.
	MinVolume() float64

	// Instrument builds the state-store record for one (outcome, id) pair.
	Instrument(ev *gamma.Event, m *gamma.Market, outcome, tokenID string, now time.Time) market.Instrument

	// InPriceWindow is the cheap first gate on a tick.
	InPriceWindow(p price.Price) bool

	// Evaluate runs the domain's risk model on a tick that passed the
	// price window. It may call out to the oracle or the order book.
	Evaluate(ctx context.Context, inst market.Instrument, p price.Price, now time.Time) Decision
}
