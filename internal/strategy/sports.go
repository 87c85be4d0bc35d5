package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/orderbook"
	"polymarket-hunter/internal/polymarket/clob"
	"polymarket-hunter/internal/polymarket/gamma"
	"polymarket-hunter/internal/polymarket/price"
	"polymarket-hunter/internal/risk"
)

const sportsDomain = "sports"

// Sports time window: games already running overshoot their listed end
// time, so up to three hours past the end still counts.
const (
	sportsMaxHoursUntilEnd = 48.0
	sportsMinHoursUntilEnd = -3.0
)

// Sports hunts favorites in near-term match markets and gates alerts
// on standing order-book liquidity.
type Sports struct {
	cfg      Config
	clob     *clob.Client
	log      *slog.Logger
	priceMin price.Price
	priceMax price.Price
}

func NewSports(cfg Config, c *clob.Client, log *slog.Logger) *Sports {
	return &Sports{
		cfg:      cfg,
		clob:     c,
		log:      log.With("component", "strategy_sports"),
		priceMin: price.FromFloat(cfg.PriceMin),
		priceMax: price.FromFloat(cfg.PriceMax),
	}
}

func (s *Sports) Domain() string { return sportsDomain }

func (s *Sports) Tags() []string { return resolveTags(sportsDomain, s.cfg.TargetTags) }

func (s *Sports) MinVolume() float64 { return s.cfg.MinVolume }

func (s *Sports) FilterEvent(ev *gamma.Event, now time.Time) bool {
	if !matchesTagWhitelist(ev.Tags, s.cfg.TargetTags) {
		return false
	}

	h := hoursUntilEnd(ev, now)
	if h > sportsMaxHoursUntilEnd || h < sportsMinHoursUntilEnd {
		return false
	}

	return !hasLongHorizonTitle(ev.Title)
}

func (s *Sports) Instrument(ev *gamma.Event, m *gamma.Market, outcome, tokenID string, now time.Time) market.Instrument {
	h := hoursUntilEnd(ev, now)
	return market.Instrument{
		ID:        tokenID,
		Domain:    sportsDomain,
		Title:     ev.Title,
		Outcome:   outcome,
		Slug:      ev.Slug,
		Volume:    float64(m.Volume),
		EndTime:   ev.EndDate.Time,
		StartTime: ev.StartDate.Time,
		Live:      h < 3 && h > -1,
	}
}

func (s *Sports) InPriceWindow(p price.Price) bool {
	return p >= s.priceMin && p <= s.priceMax
}

func (s *Sports) Evaluate(ctx context.Context, inst market.Instrument, p price.Price, now time.Time) Decision {
	book, err := s.clob.Book(ctx, inst.ID)
	if err != nil {
		return Decision{Reason: fmt.Sprintf("cannot verify liquidity: %v", err)}
	}

	verdict := risk.EvaluateSports(p, rebuildBook(book))
	if !verdict.Accept {
		return Decision{Reason: verdict.Reason}
	}

	ctxBlock := fmt.Sprintf("Book: %s / %s (spread %s)",
		verdict.BestBid, verdict.BestAsk, verdict.Spread)
	return Decision{Alert: true, Context: ctxBlock}
}

// rebuildBook re-inserts the upstream levels so ordering is restored
// locally; the feed's sort order is not trusted.
func rebuildBook(b *clob.Book) *orderbook.Book {
	ob := orderbook.New()
	for _, lvl := range b.Bids {
		ob.AddBid(orderbook.Level{Price: lvl.Price, Size: parseSize(lvl.Size)})
	}
	for _, lvl := range b.Asks {
		ob.AddAsk(orderbook.Level{Price: lvl.Price, Size: parseSize(lvl.Size)})
	}
	return ob
}

func parseSize(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var _ Strategy = (*Sports)(nil)
