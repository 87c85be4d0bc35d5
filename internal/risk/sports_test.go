package risk

import (
	"testing"

	"polymarket-hunter/internal/orderbook"
	"polymarket-hunter/internal/polymarket/price"
)

func mustPrice(t *testing.T, s string) price.Price {
	t.Helper()
	p, err := price.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func book(t *testing.T, bids, asks []string) *orderbook.Book {
	t.Helper()
	b := orderbook.New()
	for _, s := range bids {
		b.AddBid(orderbook.Level{Price: mustPrice(t, s)})
	}
	for _, s := range asks {
		b.AddAsk(orderbook.Level{Price: mustPrice(t, s)})
	}
	return b
}

func TestEvaluateSports(t *testing.T) {
	t.Run("tight book accepts", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.82"})
		v := EvaluateSports(mustPrice(t, "0.81"), b)
		if !v.Accept {
			t.Fatalf("want accept, got %+v", v)
		}
		if v.Spread != mustPrice(t, "0.02") {
			t.Errorf("Spread = %v, want 0.02", v.Spread)
		}
	})

	t.Run("stale trade print rejects", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.82"})
		v := EvaluateSports(mustPrice(t, "0.95"), b)
		if v.Accept {
			t.Fatalf("want reject, got %+v", v)
		}
	})

	t.Run("spread equal to threshold passes", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.83"})
		v := EvaluateSports(mustPrice(t, "0.81"), b)
		if !v.Accept {
			t.Fatalf("0.03 spread must pass, got %+v", v)
		}
	})

	t.Run("spread above threshold rejects", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.831"})
		v := EvaluateSports(mustPrice(t, "0.81"), b)
		if v.Accept {
			t.Fatalf("0.031 spread must reject, got %+v", v)
		}
	})

	t.Run("stale gap equal to threshold passes", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.82"})
		v := EvaluateSports(mustPrice(t, "0.85"), b)
		if !v.Accept {
			t.Fatalf("0.05 gap must pass, got %+v", v)
		}
	})

	t.Run("unsorted sides are restored before judging", func(t *testing.T) {
		b := book(t, []string{"0.70", "0.80", "0.75"}, []string{"0.86", "0.82"})
		v := EvaluateSports(mustPrice(t, "0.81"), b)
		if !v.Accept {
			t.Fatalf("best levels 0.80/0.82 should accept, got %+v", v)
		}
		if v.BestBid != mustPrice(t, "0.80") || v.BestAsk != mustPrice(t, "0.82") {
			t.Errorf("best = %v/%v, want 0.80/0.82", v.BestBid, v.BestAsk)
		}
	})

	t.Run("empty side rejects", func(t *testing.T) {
		b := book(t, []string{"0.80"}, nil)
		v := EvaluateSports(mustPrice(t, "0.81"), b)
		if v.Accept {
			t.Fatalf("empty ask side must reject, got %+v", v)
		}
	})

	t.Run("price below best bid accepts", func(t *testing.T) {
		b := book(t, []string{"0.80"}, []string{"0.82"})
		v := EvaluateSports(mustPrice(t, "0.70"), b)
		if !v.Accept {
			t.Fatalf("print under the bid is not stale, got %+v", v)
		}
	})
}
