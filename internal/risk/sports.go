package risk

import (
	"polymarket-hunter/internal/orderbook"
	"polymarket-hunter/internal/polymarket/price"
)

// Fixed-point thresholds for the sports liquidity check.
const (
	// MaxSpread rejects books wider than 3 cents. A spread exactly at
	// the threshold passes.
	MaxSpread = price.Price(3 * price.Scale / 100)
	// MaxStaleGap rejects trade prints more than 5 cents above the
	// standing best bid.
	MaxStaleGap = price.Price(5 * price.Scale / 100)
)

type SportsVerdict struct {
	Accept  bool
	Reason  string
	BestBid price.Price
	BestAsk price.Price
	Spread  price.Price
}

// EvaluateSports judges whether a trade print is backed by standing
// liquidity. The book must already be re-sorted (see orderbook.Book).
func EvaluateSports(tradePrice price.Price, book *orderbook.Book) SportsVerdict {
	bid, okBid := book.BestBid()
	ask, okAsk := book.BestAsk()
	if !okBid || !okAsk {
		return SportsVerdict{Reason: "cannot verify liquidity: empty book side"}
	}

	spread := ask.Price - bid.Price
	v := SportsVerdict{BestBid: bid.Price, BestAsk: ask.Price, Spread: spread}

	if spread > MaxSpread {
		v.Reason = "spread too wide"
		return v
	}
	if tradePrice-bid.Price > MaxStaleGap {
		v.Reason = "trade print detached from best bid"
		return v
	}

	v.Accept = true
	return v
}
