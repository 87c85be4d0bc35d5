// Package scanner discovers the instruments a domain should watch.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/store"
	"polymarket-hunter/internal/strategy"
)

const eventFetchLimit = 100

// Scanner runs one discovery pass: fetch candidate events per tag,
// filter them through the strategy, and write surviving instruments
// into the state store.
type Scanner struct {
	gamma   *gamma.Client
	markets *market.Store
	strat   strategy.Strategy
	trades  *store.Store // optional, nil disables persistence
	log     *slog.Logger
}

func New(g *gamma.Client, markets *market.Store, strat strategy.Strategy, trades *store.Store, log *slog.Logger) *Scanner {
	return &Scanner{
		gamma:   g,
		markets: markets,
		strat:   strat,
		trades:  trades,
		log:     log.With("component", "scanner", "domain", strat.Domain()),
	}
}

// Scan returns the token ids to subscribe. An empty list with a nil
// error means the filters matched nothing; the caller should retry
// sooner than the normal period. An error means no tag could be
// fetched at all.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	started := time.Now()
	tags := s.strat.Tags()

	// Merge per-tag results by event id; cross-tag duplicates are
	// common (an NBA game is under both "sports" and "nba").
	merged := make(map[string]*gamma.Event)
	fetched := 0
	for _, tag := range tags {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events, err := s.gamma.Events(ctx, tag, eventFetchLimit)
		if err != nil {
			s.log.Warn("tag fetch failed", "tag", tag, "error", err)
			continue
		}
		fetched++
		for _, ev := range events {
			merged[ev.ID] = ev
		}
	}
	if fetched == 0 {
		return nil, fmt.Errorf("all %d tag fetches failed", len(tags))
	}

	now := time.Now()
	s.markets.Advance(s.strat.Domain())

	var subscribe []string
	for _, ev := range merged {
		if !s.strat.FilterEvent(ev, now) {
			continue
		}
		subscribe = append(subscribe, s.collectInstruments(ctx, ev, now)...)
	}

	s.log.Info("scan finished",
		"events", len(merged),
		"instruments", len(subscribe),
		"elapsed", time.Since(started))
	return subscribe, nil
}

// collectInstruments walks an event's sub-markets. A malformed
// sub-market is skipped, never fatal to the scan.
func (s *Scanner) collectInstruments(ctx context.Context, ev *gamma.Event, now time.Time) []string {
	var ids []string
	for _, m := range ev.Markets {
		if m == nil {
			continue
		}
		if float64(m.Volume) < s.strat.MinVolume() {
			continue
		}
		if len(m.ClobTokenIDs) == 0 || len(m.Outcomes) == 0 {
			continue
		}

		for i, tokenID := range m.ClobTokenIDs {
			if tokenID == "" || i >= len(m.Outcomes) {
				continue
			}
			inst := s.strat.Instrument(ev, m, m.Outcomes[i], tokenID, now)
			s.markets.Put(inst)
			ids = append(ids, tokenID)

			if s.trades != nil {
				if err := s.trades.UpsertInstrument(ctx, inst); err != nil {
					s.log.Warn("couldn't persist instrument", "token", tokenID, "error", err)
				}
			}
		}
	}
	return ids
}
