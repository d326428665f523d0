package services

import (
	"context"
	"errors"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/torn"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cast"
)

var (
	ErrNoApiKey      = errors.New("no api key stored")
	ErrNoActiveChain = errors.New("no active chain")
)

type ChainServiceInterface interface {
	SyncNow(ctx context.Context) (*models.ChainRecord, error)
	ImportChain(ctx context.Context, chainID int64) (*models.ChainRecord, error)
	GetChain(id int64) (*models.ChainRecord, bool)
	LatestChain() (*models.ChainRecord, bool)
	ListChains() []*models.ChainRecord
	ListArchivedIds() []int64
	ListRemoteChains(ctx context.Context, limit int, before int64) (*torn.ChainListPage, error)
	SetApiKey(key string)
	ClearApiKey()
	HasApiKey() bool
	LastSync() int64
}

// ChainService is the sync orchestrator. One sync resolves the current
// chain, loads or seeds its ledger, fetches the chain report and walks the
// armory feed concurrently, folds both into the record and persists it.
// Nothing is persisted when either fetch fails.
type ChainService struct {
	store   *models.ChainStore
	archive models.ArchiveInterface
	client  torn.ClientInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	syncMu  sync.Mutex
}

func NewChainService(store *models.ChainStore, archive models.ArchiveInterface, client torn.ClientInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ChainServiceInterface {
	return &ChainService{
		store:   store,
		archive: archive,
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

func (cs *ChainService) SyncNow(ctx context.Context) (*models.ChainRecord, error) {
	key := cs.store.GetSetting(models.SettingApiKey)
	if key == "" {
		return nil, ErrNoApiKey
	}

	status, err := cs.client.ChainStatus(ctx, key)
	if err != nil {
		cs.metrics.IncSyncsTotal("error")
		return nil, cs.flagKeyError(err)
	}
	if status == nil {
		return nil, ErrNoActiveChain
	}

	return cs.syncChain(ctx, key, status.ID, status.Start, status.End, status.InProgress())
}

// ImportChain builds the ledger of a historical chain from its report and
// the feed items between its bounds. The chain list is the usual source of
// ids to import.
func (cs *ChainService) ImportChain(ctx context.Context, chainID int64) (*models.ChainRecord, error) {
	key := cs.store.GetSetting(models.SettingApiKey)
	if key == "" {
		return nil, ErrNoApiKey
	}

	report, err := cs.client.ChainReport(ctx, key, chainID)
	if err != nil {
		cs.metrics.IncSyncsTotal("error")
		return nil, cs.flagKeyError(err)
	}

	return cs.syncChain(ctx, key, chainID, report.Start, report.End, false)
}

func (cs *ChainService) syncChain(ctx context.Context, key string, chainID, start, end int64, inProgress bool) (*models.ChainRecord, error) {
	cs.syncMu.Lock()
	defer cs.syncMu.Unlock()

	began := time.Now()

	record, ok := cs.store.GetChain(chainID)
	if !ok {
		record = models.NewChainRecord(chainID, start)
	}

	upper := end
	if inProgress || upper == 0 {
		upper = began.Unix()
	}

	// The report fetch and the feed walk are independent reads; the dedup
	// set is touched only by the walk. Both must succeed before the record
	// is mutated.
	seen := record.ProcessedSet()
	var (
		report    *torn.ChainReport
		reportErr error
		events    []models.ConsumptionEvent
		newIds    []string
		feedErr   error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		report, reportErr = cs.client.ChainReport(ctx, key, chainID)
	}()
	go func() {
		defer wg.Done()
		events, newIds, feedErr = torn.CollectConsumption(ctx, cs.client, key, record.Start, upper, seen)
	}()
	wg.Wait()

	if reportErr != nil {
		cs.metrics.IncSyncsTotal("error")
		return nil, cs.flagKeyError(reportErr)
	}
	if feedErr != nil {
		cs.metrics.IncSyncsTotal("error")
		return nil, cs.flagKeyError(feedErr)
	}

	record.ReplaceHits(reportHits(report))
	record.AddConsumption(models.Aggregate(events))
	record.MarkProcessed(newIds)
	record.RecomputeTotals()

	if !inProgress {
		endTs := report.End
		if endTs == 0 {
			endTs = end
		}
		if endTs == 0 {
			endTs = began.Unix()
		}
		record.Finish(endTs)
	}

	cs.store.SaveChain(record)
	cs.store.SetSetting(models.SettingLastSync, strconv.FormatInt(began.Unix(), 10))

	cs.countFeedEvents(events)
	cs.metrics.ObserveSyncDuration(time.Since(began))
	cs.metrics.IncSyncsTotal("ok")
	cs.logger.Infof(providers.TypeSync, "Synced chain %d (%s): %d hits, %.2f respect, %d new feed items",
		record.ChainID, record.Status, record.Totals.Hits, record.Totals.Respect, len(newIds))

	return record, nil
}

// GetChain reads from the hot store first and falls back to the archive for
// chains that already aged out.
func (cs *ChainService) GetChain(id int64) (*models.ChainRecord, bool) {
	if rec, ok := cs.store.GetChain(id); ok {
		return rec, true
	}
	return cs.archive.Get(id)
}

func (cs *ChainService) LatestChain() (*models.ChainRecord, bool) {
	return cs.store.LatestChain()
}

func (cs *ChainService) ListChains() []*models.ChainRecord {
	return cs.store.ListChains()
}

func (cs *ChainService) ListArchivedIds() []int64 {
	return cs.archive.Ids()
}

func (cs *ChainService) ListRemoteChains(ctx context.Context, limit int, before int64) (*torn.ChainListPage, error) {
	key := cs.store.GetSetting(models.SettingApiKey)
	if key == "" {
		return nil, ErrNoApiKey
	}
	page, err := cs.client.ChainList(ctx, key, limit, before)
	if err != nil {
		return nil, cs.flagKeyError(err)
	}
	return page, nil
}

func (cs *ChainService) SetApiKey(key string) {
	cs.store.SetSetting(models.SettingApiKey, key)
}

func (cs *ChainService) ClearApiKey() {
	cs.store.DeleteSetting(models.SettingApiKey)
}

func (cs *ChainService) HasApiKey() bool {
	return cs.store.GetSetting(models.SettingApiKey) != ""
}

func (cs *ChainService) LastSync() int64 {
	raw := cs.store.GetSetting(models.SettingLastSync)
	if raw == "" {
		return 0
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// flagKeyError discards the stored credential when the transport reports it
// unusable. The error itself still surfaces to the caller.
func (cs *ChainService) flagKeyError(err error) error {
	var apiErr *torn.ApiError
	if errors.As(err, &apiErr) && apiErr.InvalidKey() {
		cs.store.DeleteSetting(models.SettingApiKey)
		cs.logger.Warnf(providers.TypeSync, "Stored api key rejected (code %d), discarding it", apiErr.Code)
	}
	return err
}

func (cs *ChainService) countFeedEvents(events []models.ConsumptionEvent) {
	var xanax, points int
	for _, ev := range events {
		switch ev.Kind {
		case models.EventItemUse:
			xanax++
		case models.EventPointSpend:
			points++
		}
	}
	cs.metrics.AddFeedEvents(string(models.EventItemUse), xanax)
	cs.metrics.AddFeedEvents(string(models.EventPointSpend), points)
}

// reportHits maps the report's attacker rows onto the ledger's hit entries.
// Ids become stable string keys; a missing name falls back to the id.
func reportHits(report *torn.ChainReport) map[string]*models.HitEntry {
	hits := make(map[string]*models.HitEntry, len(report.Attackers))
	for _, att := range report.Attackers {
		id := cast.ToString(att.ID)
		hits[id] = &models.HitEntry{
			Hits:    att.Attacks,
			Respect: att.Respect,
			Name:    att.Name,
		}
	}
	return hits
}
