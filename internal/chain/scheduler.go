package chain

import (
	"context"
	"errors"
	"fcd/internal/chain/interfaces"
	"fcd/internal/models"
	"fcd/internal/providers"
	"fcd/internal/services"
	"fcd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler drives the periodic work: refreshing the active chain, flushing
// the snapshot and sweeping finished chains into the archive.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.ChainServiceInterface
	fileManager *FileManager
	archive     *Archive
	store       *models.ChainStore
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	syncMu      sync.Mutex
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Sync.Interval), func() {
		s.runSync()
	})

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		began := time.Now()
		err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.metrics.ObservePersistenceDuration(time.Since(began))
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	if s.config.Archive.SweepInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Archive.SweepInterval), func() {
			moved, err := s.archive.Sweep(s.store, time.Now())
			if err != nil {
				s.logger.Errorf(providers.TypeApp, "Archive sweep failed: %s", err)
				return
			}
			if moved > 0 {
				s.logger.Infof(providers.TypeApp, "Archived %d finished chain(s)", moved)
			}
		})
	}

	s.cron.Start()
}

// runSync refreshes the active chain. A tick that would overlap an in-flight
// sync is skipped, not queued.
func (s *Scheduler) runSync() {
	if !s.syncMu.TryLock() {
		s.logger.Debugf(providers.TypeSync, "Previous sync still in flight, skipping tick")
		return
	}
	defer s.syncMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Sync.Interval)
	defer cancel()

	_, err := s.service.SyncNow(ctx)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrNoApiKey):
		s.logger.Debugf(providers.TypeSync, "No api key stored, skipping sync")
	case errors.Is(err, services.ErrNoActiveChain):
		s.logger.Debugf(providers.TypeSync, "No active chain right now")
	default:
		s.logger.Errorf(providers.TypeSync, "Periodic sync failed: %s", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath); err != nil {
		return err
	}
	return s.archive.RestoreIndex()
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting chain state to file...")
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.ChainServiceInterface, fileManager *FileManager, archive *Archive, store *models.ChainStore, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		archive:     archive,
		store:       store,
		metrics:     metrics,
	}
}
