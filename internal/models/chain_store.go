package models

import (
	"sort"
	"sync"
)

// Setting keys used by the sync service.
const (
	SettingApiKey   = "api_key"
	SettingLastSync = "last_sync"
)

// ChainStore holds the in-memory state: chain ledgers keyed by chain id plus
// named scalar settings. All access goes through the mutex; callers always
// get and give copies, never shared records.
type ChainStore struct {
	mu       sync.RWMutex
	chains   map[int64]*ChainRecord
	settings map[string]string
}

func NewChainStore() *ChainStore {
	return &ChainStore{
		chains:   make(map[int64]*ChainRecord),
		settings: make(map[string]string),
	}
}

func (s *ChainStore) GetChain(id int64) (*ChainRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.chains[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

func (s *ChainStore) SaveChain(rec *ChainRecord) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[rec.ChainID] = rec.Clone()
}

func (s *ChainStore) DeleteChain(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chains, id)
}

// ListChains returns copies of all records, newest start first.
func (s *ChainStore) ListChains() []*ChainRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*ChainRecord, 0, len(s.chains))
	for _, rec := range s.chains {
		result = append(result, rec.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Start > result[j].Start
	})
	return result
}

// LatestChain returns the record with the greatest start time.
func (s *ChainStore) LatestChain() (*ChainRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *ChainRecord
	for _, rec := range s.chains {
		if latest == nil || rec.Start > latest.Start {
			latest = rec
		}
	}
	if latest == nil {
		return nil, false
	}
	return latest.Clone(), true
}

func (s *ChainStore) GetSetting(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[key]
}

func (s *ChainStore) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
}

func (s *ChainStore) DeleteSetting(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, key)
}

func (s *ChainStore) ChainCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chains)
}

// ProcessedEventCount sums the dedup sequences across all hot chains.
func (s *ChainStore) ProcessedEventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, rec := range s.chains {
		total += len(rec.ProcessedEventIDs)
	}
	return total
}

// GetData snapshots the full store for persistence.
func (s *ChainStore) GetData() *Storage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	storage := &Storage{
		Chains:   make(map[int64]*ChainRecord, len(s.chains)),
		Settings: make(map[string]string, len(s.settings)),
	}
	for id, rec := range s.chains {
		storage.Chains[id] = rec.Clone()
	}
	for k, v := range s.settings {
		storage.Settings[k] = v
	}
	return storage
}

// PutData replaces the store contents from a restored snapshot.
func (s *ChainStore) PutData(storage *Storage) {
	if storage == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = make(map[int64]*ChainRecord, len(storage.Chains))
	for id, rec := range storage.Chains {
		if rec == nil {
			continue
		}
		if rec.Hits == nil {
			rec.Hits = make(map[string]*HitEntry)
		}
		if rec.Consumption == nil {
			rec.Consumption = make(map[string]*ConsumptionEntry)
		}
		s.chains[id] = rec.Clone()
	}
	s.settings = make(map[string]string, len(storage.Settings))
	for k, v := range storage.Settings {
		s.settings[k] = v
	}
}
