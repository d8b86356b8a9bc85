package trust

import (
	"sync"
	"time"
)

// HistoryPoint is one past verdict for a domain.
type HistoryPoint struct {
	ScannedAt time.Time `json:"scanned_at"`
	RiskScore float64   `json:"risk_score"`
	Badge     Badge     `json:"badge"`
}

// History keeps a bounded per-domain timeline of verdicts. Concurrent
// analyses append safely; readers get a copy.
type History struct {
	mu    sync.Mutex
	limit int
	byDom map[string][]HistoryPoint
}

func NewHistory(limit int) *History {
	return &History{limit: limit, byDom: make(map[string][]HistoryPoint)}
}

func (h *History) Record(domain string, p HistoryPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pts := append(h.byDom[domain], p)
	if len(pts) > h.limit {
		pts = pts[len(pts)-h.limit:]
	}
	h.byDom[domain] = pts
}

func (h *History) For(domain string) []HistoryPoint {
	h.mu.Lock()
	defer h.mu.Unlock()

	pts := h.byDom[domain]
	out := make([]HistoryPoint, len(pts))
	copy(out, pts)
	return out
}

// History exposes the engine's per-domain verdict timeline.
func (e *Engine) History(domain string) []HistoryPoint {
	return e.history.For(domain)
}
