// Package hunter runs one domain's control loop: scan for instruments,
// refresh the streaming subscription, and judge incoming ticks.
package hunter

import (
	"context"
	"log/slog"
	"time"

	"polymarket-hunter/internal/alert"
	"polymarket-hunter/internal/cooldown"
	"polymarket-hunter/internal/ledger"
	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/internal/scanner"
	"polymarket-hunter/internal/store"
	"polymarket-hunter/internal/strategy"
	"polymarket-hunter/internal/subscription"
)

// Retry cadence when a scan comes up short. A failed fetch retries
// fast; an empty result waits a little longer before trying again.
const (
	EmptyScanRetry  = time.Minute
	FailedScanRetry = 10 * time.Second
)

type Hunter struct {
	strat    strategy.Strategy
	scanner  *scanner.Scanner
	subs     *subscription.Manager
	markets  *market.Store
	cooldown *cooldown.Cache
	notifier alert.Notifier
	ledger   *ledger.Ledger
	trades   *store.Store // optional
	log      *slog.Logger
	period   time.Duration
}

func New(strat strategy.Strategy, sc *scanner.Scanner, subs *subscription.Manager,
	markets *market.Store, cd *cooldown.Cache, notifier alert.Notifier,
	l *ledger.Ledger, trades *store.Store, period time.Duration, log *slog.Logger) *Hunter {
	return &Hunter{
		strat:    strat,
		scanner:  sc,
		subs:     subs,
		markets:  markets,
		cooldown: cd,
		notifier: notifier,
		ledger:   l,
		trades:   trades,
		log:      log.With("component", "hunter", "domain", strat.Domain()),
		period:   period,
	}
}

// Run blocks until ctx is cancelled, scanning on the configured period
// and handing results to the subscription manager.
func (h *Hunter) Run(ctx context.Context) error {
	h.log.Info("starting", "period", h.period)
	defer h.subs.Stop(context.WithoutCancel(ctx))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}

		ids, err := h.scanner.Scan(ctx)
		switch {
		case ctx.Err() != nil:
			continue // drain on next select
		case err != nil:
			h.log.Error("scan failed", "error", err, "retry_in", FailedScanRetry)
			timer.Reset(FailedScanRetry)
		case len(ids) == 0:
			h.log.Warn("scan matched nothing", "retry_in", EmptyScanRetry)
			timer.Reset(EmptyScanRetry)
		default:
			h.subs.Start(ctx, ids)
			timer.Reset(h.period)
		}
	}
}

// HandleTick judges one price update. It is the subscription manager's
// TickHandler and runs concurrently with other ticks; the cooldown
// check is the single serialization point, taken only after the risk
// model has passed so a rejected tick never burns the minute bucket.
func (h *Hunter) HandleTick(ctx context.Context, tokenID string, p price.Price) {
	if !h.strat.InPriceWindow(p) {
		return
	}

	inst, ok := h.markets.Get(tokenID)
	if !ok {
		return
	}

	decision := h.strat.Evaluate(ctx, inst, p, time.Now())
	if !decision.Alert {
		if decision.Reason != "" {
			h.log.Debug("alert suppressed", "token", tokenID, "reason", decision.Reason)
		}
		return
	}

	if !h.cooldown.ShouldAlert(tokenID) {
		return
	}

	h.log.Info("opportunity", "token", tokenID, "outcome", inst.Outcome, "price", p)

	if err := h.ledger.Append(inst, p); err != nil {
		h.log.Error("couldn't record trade", "token", tokenID, "error", err)
	}
	if h.trades != nil {
		if err := h.trades.InsertTrade(ctx, inst, p, alert.Profit(p)); err != nil {
			h.log.Error("couldn't persist trade", "token", tokenID, "error", err)
		}
	}

	// Fire and forget; a delivery failure only loses this one message.
	if err := h.notifier.Send(ctx, alert.Render(inst, p, decision.Context)); err != nil {
		h.log.Error("couldn't deliver alert", "token", tokenID, "error", err)
	}
}
