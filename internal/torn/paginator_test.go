package torn

import (
	"context"
	"fcd/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedClient scripts NewsPage responses by cursor; the other selections are
// unused by the paginator.
type pagedClient struct {
	pages   map[string]*NewsPage
	err     error
	cursors []string
}

func (c *pagedClient) ChainStatus(_ context.Context, _ string) (*ChainStatus, error) {
	return nil, nil
}

func (c *pagedClient) ChainReport(_ context.Context, _ string, _ int64) (*ChainReport, error) {
	return nil, nil
}

func (c *pagedClient) NewsPage(_ context.Context, _ string, cursor string) (*NewsPage, error) {
	c.cursors = append(c.cursors, cursor)
	if c.err != nil {
		return nil, c.err
	}
	page, ok := c.pages[cursor]
	if !ok {
		return &NewsPage{}, nil
	}
	return page, nil
}

func (c *pagedClient) ChainList(_ context.Context, _ string, _ int, _ int64) (*ChainListPage, error) {
	return nil, nil
}

func xanaxItem(id string, ts int64) NewsItem {
	return NewsItem{ID: id, Timestamp: ts, Text: "AJMC used one of the faction's Xanax items"}
}

func TestCollectConsumption_StopsAtWindowStart(t *testing.T) {
	client := &pagedClient{pages: map[string]*NewsPage{
		"": {
			Items: []NewsItem{xanaxItem("a", 100), xanaxItem("b", 90)},
			Prev:  "p2",
		},
		"p2": {
			Items: []NewsItem{xanaxItem("c", 89), xanaxItem("d", 80)},
			Prev:  "p3",
		},
		"p3": {
			Items: []NewsItem{xanaxItem("e", 79), xanaxItem("f", 70)},
		},
	}}

	seen := map[string]struct{}{}
	events, processed, err := CollectConsumption(context.Background(), client, "key", 85, 200, seen)
	require.NoError(t, err)

	// d (80) is below the window start and ends the walk.
	assert.Equal(t, []string{"a", "b", "c"}, processed)
	assert.Len(t, events, 3)
	assert.Equal(t, []string{"", "p2"}, client.cursors, "the third page must never be requested")
}

func TestCollectConsumption_SkipsItemsAboveWindow(t *testing.T) {
	client := &pagedClient{pages: map[string]*NewsPage{
		"": {Items: []NewsItem{xanaxItem("a", 300), xanaxItem("b", 150)}},
	}}

	seen := map[string]struct{}{}
	events, processed, err := CollectConsumption(context.Background(), client, "key", 100, 200, seen)
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, processed)
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].SourceID)
}

func TestCollectConsumption_DedupAcrossRuns(t *testing.T) {
	pages := map[string]*NewsPage{
		"": {Items: []NewsItem{xanaxItem("a", 150), xanaxItem("b", 140)}},
	}
	seen := map[string]struct{}{}

	first, firstIds, err := CollectConsumption(context.Background(), &pagedClient{pages: pages}, "key", 100, 200, seen)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Len(t, firstIds, 2)

	// Same feed again: everything is already seen.
	second, secondIds, err := CollectConsumption(context.Background(), &pagedClient{pages: pages}, "key", 100, 200, seen)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Empty(t, secondIds)
}

func TestCollectConsumption_RecordsIrrelevantInWindowItems(t *testing.T) {
	client := &pagedClient{pages: map[string]*NewsPage{
		"": {Items: []NewsItem{
			{ID: "a", Timestamp: 150, Text: "AJMC went to the hospital"},
		}},
	}}

	seen := map[string]struct{}{}
	events, processed, err := CollectConsumption(context.Background(), client, "key", 100, 200, seen)
	require.NoError(t, err)

	assert.Empty(t, events)
	assert.Equal(t, []string{"a"}, processed, "non-event items are still marked so they are never re-parsed")
}

func TestCollectConsumption_FallbackIdForMissingId(t *testing.T) {
	item := NewsItem{Timestamp: 150, Text: "AJMC used one of the faction's Xanax items"}
	client := &pagedClient{pages: map[string]*NewsPage{
		"": {Items: []NewsItem{item}},
	}}

	seen := map[string]struct{}{}
	_, processed, err := CollectConsumption(context.Background(), client, "key", 100, 200, seen)
	require.NoError(t, err)

	require.Len(t, processed, 1)
	assert.Equal(t, fallbackId(item), processed[0])

	// Stable across runs so dedup keeps holding.
	assert.Equal(t, fallbackId(item), fallbackId(item))
}

func TestCollectConsumption_ClientErrorAborts(t *testing.T) {
	client := &pagedClient{err: assert.AnError}

	seen := map[string]struct{}{}
	events, processed, err := CollectConsumption(context.Background(), client, "key", 100, 200, seen)
	assert.Error(t, err)
	assert.Nil(t, events)
	assert.Nil(t, processed)
}

func TestCollectConsumption_MultipleEventsFromOneItem(t *testing.T) {
	client := &pagedClient{pages: map[string]*NewsPage{
		"": {Items: []NewsItem{
			{ID: "a", Timestamp: 150, Text: "AJMC used one of the faction's Xanax items and used 500 faction points"},
		}},
	}}

	seen := map[string]struct{}{}
	events, processed, err := CollectConsumption(context.Background(), client, "key", 100, 200, seen)
	require.NoError(t, err)

	assert.Len(t, processed, 1)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventItemUse, events[0].Kind)
	assert.Equal(t, models.EventPointSpend, events[1].Kind)
}
