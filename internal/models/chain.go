package models

const (
	StatusActive   = "active"
	StatusFinished = "finished"
)

type EventKind string

const (
	EventItemUse    EventKind = "item_use"
	EventPointSpend EventKind = "point_spend"
)

// ConsumptionEvent is one parsed armory feed item. SourceID is the feed
// item id (or a derived fallback) used for dedup across syncs.
type ConsumptionEvent struct {
	ActorID   string
	ActorName string
	Kind      EventKind
	Quantity  int64
	Timestamp int64
	SourceID  string
}

type HitEntry struct {
	Hits    int64   `json:"hits"`
	Respect float64 `json:"respect"`
	Name    string  `json:"name"`
}

type ConsumptionEntry struct {
	Xanax  int64  `json:"xanax"`
	Points int64  `json:"points"`
	Name   string `json:"name"`
}

type ChainTotals struct {
	Hits    int64   `json:"hits"`
	Respect float64 `json:"respect"`
	Xanax   int64   `json:"xanax"`
	Points  int64   `json:"points"`
}

// ChainRecord is the persisted per-chain ledger. Hits mirror the latest
// chain report (replaced every sync); Consumption accumulates across syncs,
// guarded by ProcessedEventIDs.
type ChainRecord struct {
	ChainID           int64                        `json:"chain_id"`
	Start             int64                        `json:"start"`
	End               int64                        `json:"end,omitempty"`
	Status            string                       `json:"status"`
	Hits              map[string]*HitEntry         `json:"hits"`
	Consumption       map[string]*ConsumptionEntry `json:"consumption"`
	Totals            ChainTotals                  `json:"totals"`
	ProcessedEventIDs []string                     `json:"processed_event_ids"`
}

func NewChainRecord(chainID, start int64) *ChainRecord {
	return &ChainRecord{
		ChainID:     chainID,
		Start:       start,
		Status:      StatusActive,
		Hits:        make(map[string]*HitEntry),
		Consumption: make(map[string]*ConsumptionEntry),
	}
}

func (r *ChainRecord) Clone() *ChainRecord {
	clone := *r
	clone.Hits = make(map[string]*HitEntry, len(r.Hits))
	for k, v := range r.Hits {
		entry := *v
		clone.Hits[k] = &entry
	}
	clone.Consumption = make(map[string]*ConsumptionEntry, len(r.Consumption))
	for k, v := range r.Consumption {
		entry := *v
		clone.Consumption[k] = &entry
	}
	clone.ProcessedEventIDs = append([]string(nil), r.ProcessedEventIDs...)
	return &clone
}

// ProcessedSet exposes the dedup sequence as a set for the feed walk.
func (r *ChainRecord) ProcessedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.ProcessedEventIDs))
	for _, id := range r.ProcessedEventIDs {
		set[id] = struct{}{}
	}
	return set
}

// MarkProcessed appends ids not yet recorded, preserving order of first
// sight so the persisted sequence stays stable.
func (r *ChainRecord) MarkProcessed(ids []string) {
	seen := r.ProcessedSet()
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		r.ProcessedEventIDs = append(r.ProcessedEventIDs, id)
	}
}

// ReplaceHits swaps the hit map for the report's view. The report is
// cumulative and authoritative, so no merging happens here.
func (r *ChainRecord) ReplaceHits(hits map[string]*HitEntry) {
	replaced := make(map[string]*HitEntry, len(hits))
	for id, entry := range hits {
		copied := *entry
		if copied.Name == "" {
			copied.Name = id
		}
		replaced[id] = &copied
	}
	r.Hits = replaced
}

// AddConsumption folds aggregated consumption into the ledger. Counts only
// ever grow; a name is overwritten only when the new entry carries one.
func (r *ChainRecord) AddConsumption(agg map[string]*ConsumptionEntry) {
	if r.Consumption == nil {
		r.Consumption = make(map[string]*ConsumptionEntry, len(agg))
	}
	for id, entry := range agg {
		current, ok := r.Consumption[id]
		if !ok {
			copied := *entry
			r.Consumption[id] = &copied
			continue
		}
		current.Xanax += entry.Xanax
		current.Points += entry.Points
		if entry.Name != "" {
			current.Name = entry.Name
		}
	}
}

// RecomputeTotals derives the totals snapshot from scratch. Totals are never
// mutated anywhere else.
func (r *ChainRecord) RecomputeTotals() {
	var totals ChainTotals
	for _, entry := range r.Hits {
		totals.Hits += entry.Hits
		totals.Respect += entry.Respect
	}
	for _, entry := range r.Consumption {
		totals.Xanax += entry.Xanax
		totals.Points += entry.Points
	}
	r.Totals = totals
}

// Finish transitions the chain to finished. The transition is one-way and
// End is written at most once.
func (r *ChainRecord) Finish(end int64) {
	if r.Status == StatusFinished {
		return
	}
	r.Status = StatusFinished
	r.End = end
}

// Aggregate folds events into per-actor consumption entries. Totals are a
// commutative sum; the carried name comes from the newest event that has
// one, with same-second ties broken toward the greater name, so input order
// does not matter.
func Aggregate(events []ConsumptionEvent) map[string]*ConsumptionEntry {
	agg := make(map[string]*ConsumptionEntry)
	nameTs := make(map[string]int64)
	for _, ev := range events {
		entry, ok := agg[ev.ActorID]
		if !ok {
			entry = &ConsumptionEntry{}
			agg[ev.ActorID] = entry
		}
		switch ev.Kind {
		case EventItemUse:
			entry.Xanax += ev.Quantity
		case EventPointSpend:
			entry.Points += ev.Quantity
		}
		if ev.ActorName == "" {
			continue
		}
		if ev.Timestamp > nameTs[ev.ActorID] ||
			(ev.Timestamp == nameTs[ev.ActorID] && ev.ActorName > entry.Name) {
			entry.Name = ev.ActorName
			nameTs[ev.ActorID] = ev.Timestamp
		}
	}
	return agg
}
