package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChainRecord_Defaults(t *testing.T) {
	rec := NewChainRecord(42, 1000)

	assert.Equal(t, int64(42), rec.ChainID)
	assert.Equal(t, int64(1000), rec.Start)
	assert.Equal(t, StatusActive, rec.Status)
	assert.NotNil(t, rec.Hits)
	assert.NotNil(t, rec.Consumption)
	assert.Empty(t, rec.ProcessedEventIDs)
}

func TestChainRecord_Clone_Independent(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.Hits["10"] = &HitEntry{Hits: 5, Respect: 50, Name: "Alpha"}
	rec.Consumption["10"] = &ConsumptionEntry{Xanax: 1, Name: "Alpha"}
	rec.ProcessedEventIDs = []string{"e1"}

	clone := rec.Clone()
	clone.Hits["10"].Hits = 99
	clone.Consumption["10"].Xanax = 99
	clone.ProcessedEventIDs = append(clone.ProcessedEventIDs, "e2")

	assert.Equal(t, int64(5), rec.Hits["10"].Hits)
	assert.Equal(t, int64(1), rec.Consumption["10"].Xanax)
	assert.Len(t, rec.ProcessedEventIDs, 1)
}

func TestChainRecord_MarkProcessed_SkipsDuplicates(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.MarkProcessed([]string{"a", "b"})
	rec.MarkProcessed([]string{"b", "c", "a"})

	assert.Equal(t, []string{"a", "b", "c"}, rec.ProcessedEventIDs)
}

func TestChainRecord_ProcessedSet(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.MarkProcessed([]string{"a", "b"})

	set := rec.ProcessedSet()
	_, hasA := set["a"]
	_, hasC := set["c"]
	assert.True(t, hasA)
	assert.False(t, hasC)
}

func TestChainRecord_ReplaceHits_NotAdditive(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.ReplaceHits(map[string]*HitEntry{
		"10": {Hits: 10, Respect: 80, Name: "Alpha"},
	})
	rec.ReplaceHits(map[string]*HitEntry{
		"10": {Hits: 15, Respect: 120, Name: "Alpha"},
	})

	require.Contains(t, rec.Hits, "10")
	assert.Equal(t, int64(15), rec.Hits["10"].Hits)
	assert.Equal(t, float64(120), rec.Hits["10"].Respect)
}

func TestChainRecord_ReplaceHits_NameFallsBackToId(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.ReplaceHits(map[string]*HitEntry{
		"2405862": {Hits: 3, Respect: 12},
	})

	assert.Equal(t, "2405862", rec.Hits["2405862"].Name)
}

func TestChainRecord_AddConsumption_Additive(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.AddConsumption(map[string]*ConsumptionEntry{
		"10": {Xanax: 1, Points: 0, Name: "Alpha"},
	})
	rec.AddConsumption(map[string]*ConsumptionEntry{
		"10": {Xanax: 2, Points: 500},
	})

	assert.Equal(t, int64(3), rec.Consumption["10"].Xanax)
	assert.Equal(t, int64(500), rec.Consumption["10"].Points)
	// empty name must not clobber the carried one
	assert.Equal(t, "Alpha", rec.Consumption["10"].Name)
}

func TestChainRecord_RecomputeTotals(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.ReplaceHits(map[string]*HitEntry{
		"10": {Hits: 5, Respect: 50, Name: "A"},
		"11": {Hits: 2, Respect: 8, Name: "B"},
	})
	rec.AddConsumption(map[string]*ConsumptionEntry{
		"10": {Xanax: 1, Points: 1000, Name: "A"},
	})
	rec.RecomputeTotals()

	assert.Equal(t, int64(7), rec.Totals.Hits)
	assert.Equal(t, float64(58), rec.Totals.Respect)
	assert.Equal(t, int64(1), rec.Totals.Xanax)
	assert.Equal(t, int64(1000), rec.Totals.Points)
}

func TestChainRecord_RecomputeTotals_Idempotent(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.ReplaceHits(map[string]*HitEntry{"10": {Hits: 5, Respect: 50}})
	rec.RecomputeTotals()
	rec.RecomputeTotals()

	assert.Equal(t, int64(5), rec.Totals.Hits)
	assert.Equal(t, float64(50), rec.Totals.Respect)
}

func TestChainRecord_Finish_OneWay(t *testing.T) {
	rec := NewChainRecord(1, 100)
	rec.Finish(2000)

	assert.Equal(t, StatusFinished, rec.Status)
	assert.Equal(t, int64(2000), rec.End)

	rec.Finish(3000)
	assert.Equal(t, int64(2000), rec.End, "End must be written at most once")
}

func TestAggregate_FoldsByActor(t *testing.T) {
	events := []ConsumptionEvent{
		{ActorID: "10", ActorName: "Alpha", Kind: EventItemUse, Quantity: 1, Timestamp: 100, SourceID: "e1"},
		{ActorID: "10", ActorName: "Alpha", Kind: EventItemUse, Quantity: 1, Timestamp: 101, SourceID: "e2"},
		{ActorID: "10", ActorName: "Alpha", Kind: EventPointSpend, Quantity: 250000, Timestamp: 102, SourceID: "e3"},
		{ActorID: "11", ActorName: "Bravo", Kind: EventItemUse, Quantity: 2, Timestamp: 103, SourceID: "e4"},
	}

	agg := Aggregate(events)
	require.Len(t, agg, 2)
	assert.Equal(t, int64(2), agg["10"].Xanax)
	assert.Equal(t, int64(250000), agg["10"].Points)
	assert.Equal(t, "Alpha", agg["10"].Name)
	assert.Equal(t, int64(2), agg["11"].Xanax)
	assert.Equal(t, int64(0), agg["11"].Points)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	forward := []ConsumptionEvent{
		{ActorID: "10", ActorName: "OldName", Kind: EventItemUse, Quantity: 1, Timestamp: 100},
		{ActorID: "10", ActorName: "NewName", Kind: EventItemUse, Quantity: 1, Timestamp: 200},
	}
	reversed := []ConsumptionEvent{forward[1], forward[0]}

	a := Aggregate(forward)
	b := Aggregate(reversed)

	assert.Equal(t, a["10"].Xanax, b["10"].Xanax)
	assert.Equal(t, "NewName", a["10"].Name)
	assert.Equal(t, "NewName", b["10"].Name, "name must come from the newest event regardless of order")
}

func TestAggregate_SameSecondNameTie(t *testing.T) {
	forward := []ConsumptionEvent{
		{ActorID: "10", ActorName: "Alpha", Kind: EventItemUse, Quantity: 1, Timestamp: 100},
		{ActorID: "10", ActorName: "Bravo", Kind: EventItemUse, Quantity: 1, Timestamp: 100},
	}
	reversed := []ConsumptionEvent{forward[1], forward[0]}

	a := Aggregate(forward)
	b := Aggregate(reversed)

	assert.Equal(t, int64(2), a["10"].Xanax)
	assert.Equal(t, a["10"].Name, b["10"].Name, "same-second ties must not depend on input order")
	assert.Equal(t, "Bravo", a["10"].Name)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Empty(t, agg)
}
