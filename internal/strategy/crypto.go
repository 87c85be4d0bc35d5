package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/oracle"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/internal/risk"
)

const cryptoDomain = "crypto"

// Crypto hunts short-dated BTC/ETH price-target markets and gates
// alerts on the distance between the Binance spot price and the
// market's target band.
type Crypto struct {
	cfg      Config
	oracle   *oracle.Client
	log      *slog.Logger
	priceMin price.Price
	priceMax price.Price
}

func NewCrypto(cfg Config, o *oracle.Client, log *slog.Logger) *Crypto {
	return &Crypto{
		cfg:      cfg,
		oracle:   o,
		log:      log.With("component", "strategy_crypto"),
		priceMin: price.FromFloat(cfg.PriceMin),
		priceMax: price.FromFloat(cfg.PriceMax),
	}
}

func (c *Crypto) Domain() string { return cryptoDomain }

func (c *Crypto) Tags() []string { return resolveTags(cryptoDomain, c.cfg.TargetTags) }

func (c *Crypto) MinVolume() float64 { return c.cfg.MinVolume }

func (c *Crypto) FilterEvent(ev *gamma.Event, now time.Time) bool {
	if !matchesTagWhitelist(ev.Tags, c.cfg.TargetTags) {
		return false
	}

	h := hoursUntilEnd(ev, now)
	if h <= 0 || h > c.cfg.EndingWithinHours {
		return false
	}

	if hasLongHorizonTitle(ev.Title) {
		return false
	}

	title := strings.ToLower(ev.Title)
	isBTC := strings.Contains(title, "bitcoin") || strings.Contains(title, "btc")
	isETH := strings.Contains(title, "ethereum") || strings.Contains(title, "eth")
	if !isBTC && !isETH {
		return false
	}
	// Hourly up-or-down coin flips carry no parseable target.
	if strings.Contains(title, "up or down") {
		return false
	}

	return true
}

func (c *Crypto) Instrument(ev *gamma.Event, m *gamma.Market, outcome, tokenID string, now time.Time) market.Instrument {
	return market.Instrument{
		ID:       tokenID,
		Domain:   cryptoDomain,
		Title:    ev.Title,
		SubTitle: m.GroupItemTitle,
		Outcome:  outcome,
		Slug:     ev.Slug,
		Volume:   float64(m.Volume),
		EndTime:  ev.EndDate.Time,
	}
}

func (c *Crypto) InPriceWindow(p price.Price) bool {
	return p >= c.priceMin && p <= c.priceMax
}

func (c *Crypto) Evaluate(ctx context.Context, inst market.Instrument, p price.Price, now time.Time) Decision {
	targets, ok := risk.ParsePriceTargets(inst.Title, inst.SubTitle)
	if !ok {
		// Without a target there is nothing to verify against; abstain
		// regardless of oracle health.
		return Decision{Reason: "no parseable price target"}
	}

	hoursLeft := inst.EndTime.Sub(now).Hours()

	symbol := oracle.SymbolForTitle(inst.Title)
	current, err := c.oracle.Price(ctx, symbol)
	if err != nil {
		c.log.Warn("oracle unavailable, forwarding unverified",
			"symbol", symbol, "token", inst.ID, "error", err)
		return Decision{Alert: true}
	}

	verdict := risk.EvaluateCrypto(current, targets, hoursLeft)
	if !verdict.Safe {
		if verdict.InRange {
			return Decision{Reason: fmt.Sprintf("oracle price %.2f inside target range %v-%v", current, targets.Min, targets.Max)}
		}
		return Decision{Reason: fmt.Sprintf("gap %.2f%% below threshold at %.1fh left", verdict.GapPercent, hoursLeft)}
	}

	ctxBlock := fmt.Sprintf("Binance %s: $%.2f\nBoundary: $%v-$%v\nGap: %.2f%% (%.1fh left)",
		symbol, current, targets.Min, targets.Max, verdict.GapPercent, hoursLeft)
	return Decision{Alert: true, Context: ctxBlock}
}

var _ Strategy = (*Crypto)(nil)
