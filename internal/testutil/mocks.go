package testutil

import (
	"context"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/torn"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCompressor passes data through unchanged so persistence tests can
// inspect the files as plain JSON.
type MockCompressor struct{}

func (m *MockCompressor) Compress(val []byte) ([]byte, error)   { return val, nil }
func (m *MockCompressor) Decompress(val []byte) ([]byte, error) { return val, nil }
func (m *MockCompressor) Close()                                {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu           sync.Mutex
	Requests     int
	CacheHits    int
	CacheMisses  int
	Syncs        map[string]int
	TornRequests map[string]int
	TornRetries  int
	FeedEvents   map[string]int
	Persists     int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) IncSyncsTotal(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Syncs == nil {
		m.Syncs = make(map[string]int)
	}
	m.Syncs[result]++
}
func (m *MockMetrics) ObserveSyncDuration(_ time.Duration) {}
func (m *MockMetrics) IncTornRequests(selection string, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TornRequests == nil {
		m.TornRequests = make(map[string]int)
	}
	m.TornRequests[selection+":"+result]++
}
func (m *MockMetrics) IncTornRetries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TornRetries++
}
func (m *MockMetrics) AddFeedEvents(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FeedEvents == nil {
		m.FeedEvents = make(map[string]int)
	}
	m.FeedEvents[kind] += count
}
func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persists++
}

// MockTornClient implements torn.ClientInterface with scripted responses.
type MockTornClient struct {
	mu sync.Mutex

	Status    *torn.ChainStatus
	StatusErr error

	Report    *torn.ChainReport
	ReportErr error

	// Pages keys cursors to pages; "" is the head page.
	Pages    map[string]*torn.NewsPage
	PagesErr error

	ListPage *torn.ChainListPage
	ListErr  error

	StatusCalls int
	ReportCalls int
	NewsCursors []string
	ListCalls   int
}

func (m *MockTornClient) ChainStatus(_ context.Context, _ string) (*torn.ChainStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCalls++
	return m.Status, m.StatusErr
}

func (m *MockTornClient) ChainReport(_ context.Context, _ string, _ int64) (*torn.ChainReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportCalls++
	return m.Report, m.ReportErr
}

func (m *MockTornClient) NewsPage(_ context.Context, _ string, cursor string) (*torn.NewsPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewsCursors = append(m.NewsCursors, cursor)
	if m.PagesErr != nil {
		return nil, m.PagesErr
	}
	page, ok := m.Pages[cursor]
	if !ok {
		return &torn.NewsPage{}, nil
	}
	return page, nil
}

func (m *MockTornClient) ChainList(_ context.Context, _ string, _ int, _ int64) (*torn.ChainListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	return m.ListPage, m.ListErr
}

// MockArchive implements models.ArchiveInterface in memory.
type MockArchive struct {
	mu      sync.Mutex
	Records map[int64]*models.ChainRecord
}

func (m *MockArchive) Has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Records[id]
	return ok
}

func (m *MockArchive) Get(id int64) (*models.ChainRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[id]
	return rec, ok
}

func (m *MockArchive) Ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.Records))
	for id := range m.Records {
		ids = append(ids, id)
	}
	return ids
}

func (m *MockArchive) Store(rec *models.ChainRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Records == nil {
		m.Records = make(map[int64]*models.ChainRecord)
	}
	m.Records[rec.ChainID] = rec
	return nil
}
