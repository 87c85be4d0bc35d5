// Package ledger appends simulated trades to a CSV file.
package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"polymarket-hunter/internal/alert"
	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/price"
)

const header = "time,title,outcome,price,volume,bet_size,profit,link\n"

// quote wraps a field in double quotes, doubling any embedded quote so
// CSV readers keep the field intact.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Ledger owns one append-only CSV file. The header row is written the
// first time the file is created.
type Ledger struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
	now  func() time.Time
}

func New(path string, log *slog.Logger) *Ledger {
	return &Ledger{
		path: path,
		log:  log.With("component", "ledger"),
		now:  time.Now,
	}
}

// Append records one simulated trade.
func (l *Ledger) Append(inst market.Instrument, p price.Price) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("couldn't create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("couldn't open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("couldn't stat ledger %s: %w", l.path, err)
	}
	if info.Size() == 0 {
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("couldn't write ledger header: %w", err)
		}
		l.log.Info("created ledger", "path", l.path)
	}

	row := fmt.Sprintf("%s,%s,%s,%s,%.0f,%.0f,%.2f,%s\n",
		l.now().Format(time.RFC3339),
		quote(inst.Title),
		quote(inst.Outcome),
		p,
		inst.Volume,
		alert.BetSize,
		alert.Profit(p),
		alert.EventLink(inst.Slug),
	)
	if _, err := f.WriteString(row); err != nil {
		return fmt.Errorf("couldn't append trade: %w", err)
	}

	l.log.Info("trade recorded", "outcome", inst.Outcome, "price", p)
	return nil
}
