// Package orderbook restores ordering of untrusted order-book payloads.
// The upstream feed does not guarantee sorted sides, so levels are
// re-inserted into btrees: bids descending, asks ascending.
package orderbook

import (
	"github.com/google/btree"

	"polymarket-hunter/internal/polymarket/price"
)

// Level is one price level of an order book side.
type Level struct {
	Price price.Price
	Size  float64
}

func lessAsc(a, b Level) bool {
	return a.Price < b.Price
}

func lessDesc(a, b Level) bool {
	return a.Price > b.Price
}

type Book struct {
	bids *btree.BTreeG[Level]
	asks *btree.BTreeG[Level]
}

func New() *Book {
	return &Book{
		bids: btree.NewG(32, lessDesc),
		asks: btree.NewG(32, lessAsc),
	}
}

func (b *Book) AddBid(lvl Level) {
	b.bids.ReplaceOrInsert(lvl)
}

func (b *Book) AddAsk(lvl Level) {
	b.asks.ReplaceOrInsert(lvl)
}

// BestBid returns the highest bid, if any.
func (b *Book) BestBid() (Level, bool) {
	return first(b.bids)
}

// BestAsk returns the lowest ask, if any.
func (b *Book) BestAsk() (Level, bool) {
	return first(b.asks)
}

func (b *Book) Depth() (bids, asks int) {
	return b.bids.Len(), b.asks.Len()
}

func first(tree *btree.BTreeG[Level]) (Level, bool) {
	var best Level
	found := false
	tree.Ascend(func(lvl Level) bool {
		best = lvl
		found = true
		return false
	})
	return best, found
}
