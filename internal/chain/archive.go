package chain

import (
	"fcd/internal/chain/interfaces"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/structures"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const archiveSuffix = ".dat"

// Archive moves finished chains out of the hot snapshot into one compressed
// file per chain. Records stay retrievable by id; only the index is kept in
// memory. A missing dir disables archiving entirely.
type Archive struct {
	mu         sync.RWMutex
	dir        string
	ttl        time.Duration
	index      map[int64]struct{}
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewArchive(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) *Archive {
	return &Archive{
		dir:        conf.Archive.Dir,
		ttl:        conf.Archive.TTL,
		index:      make(map[int64]struct{}),
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archive) enabled() bool {
	return a.dir != ""
}

// RestoreIndex scans the archive dir and rebuilds the id index.
func (a *Archive) RestoreIndex() error {
	if !a.enabled() {
		return nil
	}
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "chain-") || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "chain-"), archiveSuffix), 10, 64)
		if err != nil {
			a.logger.Warnf(providers.TypeApp, "Skipping unrecognized archive file %s", name)
			continue
		}
		a.index[id] = struct{}{}
	}
	a.logger.Infof(providers.TypeApp, "Archive index restored: %d chain(s)", len(a.index))
	return nil
}

func (a *Archive) Has(id int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.index[id]
	return ok
}

func (a *Archive) Ids() []int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]int64, 0, len(a.index))
	for id := range a.index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

func (a *Archive) Get(id int64) (*models.ChainRecord, bool) {
	if !a.Has(id) {
		return nil, false
	}
	data, err := os.ReadFile(a.path(id))
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to read archived chain %d: %s", id, err)
		return nil, false
	}
	jsonData, err := a.compressor.Decompress(data)
	if err != nil {
		a.logger.Errorf(providers.TypeApp, "Failed to decompress archived chain %d: %s", id, err)
		return nil, false
	}
	var rec models.ChainRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		a.logger.Errorf(providers.TypeApp, "Archived chain %d is not readable: %s", id, err)
		return nil, false
	}
	return &rec, true
}

func (a *Archive) Store(rec *models.ChainRecord) error {
	if !a.enabled() {
		return fmt.Errorf("archive dir not configured")
	}
	jsonData, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	path := a.path(rec.ChainID)
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return err
	}

	a.mu.Lock()
	a.index[rec.ChainID] = struct{}{}
	a.mu.Unlock()
	return nil
}

// Sweep archives every finished hot chain whose end is older than the TTL
// and drops it from the store. Returns how many chains moved.
func (a *Archive) Sweep(store *models.ChainStore, now time.Time) (int, error) {
	if !a.enabled() || a.ttl <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-a.ttl).Unix()

	moved := 0
	for _, rec := range store.ListChains() {
		if rec.Status != models.StatusFinished || rec.End == 0 || rec.End > cutoff {
			continue
		}
		if err := a.Store(rec); err != nil {
			return moved, fmt.Errorf("failed to archive chain %d: %w", rec.ChainID, err)
		}
		store.DeleteChain(rec.ChainID)
		moved++
	}
	return moved, nil
}

func (a *Archive) path(id int64) string {
	return filepath.Join(a.dir, fmt.Sprintf("chain-%d%s", id, archiveSuffix))
}
