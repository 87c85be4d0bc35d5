// Package market holds the shared instrument state written by discovery
// scans and read by the streaming tick handlers.
package market

import (
	"sync"
	"time"
)

// Instrument is one tradable outcome inside a Polymarket sub-market.
type Instrument struct {
	ID        string
	Domain    string
	Title     string
	SubTitle  string
	Outcome   string
	Slug      string
	Volume    float64
	EndTime   time.Time
	StartTime time.Time
	Live      bool
}

// Store keeps instrument metadata per domain in two generations: the
// current scan and the one before it. A fresh scan rotates its domain's
// generations, so ids that stop appearing are dropped after two cycles
// instead of accumulating for the process lifetime.
//
// Ids are venue-assigned and shared across domains; Get consults every
// domain, so a cross-domain id collision would leak metadata between
// strategies. The venue's id space makes this a non-issue in practice.
type Store struct {
	mu      sync.RWMutex
	domains map[string]*generations
}

type generations struct {
	cur  map[string]Instrument
	prev map[string]Instrument
}

func NewStore() *Store {
	return &Store{domains: make(map[string]*generations)}
}

// Advance starts a new generation for the domain. The previous current
// generation stays readable until the next Advance.
func (s *Store) Advance(domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.domains[domain]
	if !ok {
		g = &generations{}
		s.domains[domain] = g
	}
	g.prev = g.cur
	g.cur = make(map[string]Instrument)
}

// Put writes an instrument into its domain's current generation,
// replacing any prior record for the id.
func (s *Store) Put(inst Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.domains[inst.Domain]
	if !ok {
		g = &generations{cur: make(map[string]Instrument)}
		s.domains[inst.Domain] = g
	}
	if g.cur == nil {
		g.cur = make(map[string]Instrument)
	}
	g.cur[inst.ID] = inst
}

// Get looks an id up across all domains, current generation first.
func (s *Store) Get(id string) (Instrument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.domains {
		if inst, ok := g.cur[id]; ok {
			return inst, true
		}
	}
	for _, g := range s.domains {
		if inst, ok := g.prev[id]; ok {
			return inst, true
		}
	}
	return Instrument{}, false
}

// Count reports how many instruments a domain currently tracks.
func (s *Store) Count(domain string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.domains[domain]
	if !ok {
		return 0
	}
	return len(g.cur) + len(g.prev)
}
