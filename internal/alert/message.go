package alert

import (
	"fmt"
	"strings"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/price"
)

// BetSize is the simulated stake per paper trade, in dollars.
const BetSize = 100.0

// Profit is the projected payout of a winning $100 position bought at p.
func Profit(p price.Price) float64 {
	return (1 - p.Float64()) * BetSize
}

// EventLink points at the venue's event page.
func EventLink(slug string) string {
	return "https://polymarket.com/event/" + slug
}

// Render formats the operator-facing alert text. riskContext carries
// extra lines from the risk engine (oracle gap, book state) and may be
// empty.
func Render(inst market.Instrument, p price.Price, riskContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[paper trade] (%s)\n", strings.ToUpper(inst.Domain))
	b.WriteString("Event: " + inst.Title)
	if inst.SubTitle != "" {
		b.WriteString(" [target: " + inst.SubTitle + "]")
	}
	if inst.Live {
		b.WriteString(" (live)")
	}
	b.WriteByte('\n')
	b.WriteString("Outcome: " + inst.Outcome + "\n")
	fmt.Fprintf(&b, "Price: $%.2f\n", p.Float64())
	fmt.Fprintf(&b, "Stake: $%.0f\n", BetSize)
	fmt.Fprintf(&b, "Projected profit: $%.2f\n", Profit(p))
	b.WriteString(EventLink(inst.Slug))
	if riskContext != "" {
		b.WriteByte('\n')
		b.WriteString(riskContext)
	}
	return b.String()
}
