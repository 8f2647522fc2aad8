package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/domain/repository"
)

const (
	// maxSyncPages bounds the pagination loop against a platform that keeps
	// returning full pages.
	maxSyncPages = 500
)

// syncEpoch is the sentinel watermark used when an entity type has never
// been synced: everything updated after it is pulled.
var syncEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// SyncResult reports the outcome of one sync cycle.
type SyncResult struct {
	Platform platform.Platform   `json:"platform"`
	Entity   platform.EntityType `json:"entity"`
	Fetched  int                 `json:"fetched"`
	Inserted int                 `json:"inserted"`
	Updated  int                 `json:"updated"`
	Skipped  int                 `json:"skipped"`

	// AlreadyRunning is set when another sync for the same platform and
	// entity type was in flight and this request did nothing.
	AlreadyRunning bool `json:"already_running,omitempty"`

	// UpToDate is set when the platform returned zero records for the
	// window; the watermark is left untouched in that case.
	UpToDate bool `json:"up_to_date,omitempty"`

	Watermark time.Time `json:"watermark"`
}

// SyncService runs one incremental pull-and-reconcile cycle per call. It
// pages the platform from the stored watermark, maps records with
// per-record error isolation, reconciles the batch into the unified store
// and only then advances the watermark. A failed cycle leaves the
// watermark untouched so the next run retries the same window.
type SyncService struct {
	connections repository.ConnectionRepository
	connectors  connector.Resolver
	tokens      *TokenService
	reconciler  *Reconciler
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewSyncService creates a sync service.
func NewSyncService(
	connections repository.ConnectionRepository,
	connectors connector.Resolver,
	tokens *TokenService,
	reconciler *Reconciler,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		connections: connections,
		connectors:  connectors,
		tokens:      tokens,
		reconciler:  reconciler,
		logger:      logger,
		now:         time.Now,
		inFlight:    make(map[string]bool),
	}
}

// Sync pulls and reconciles one entity type for one platform.
func (s *SyncService) Sync(ctx context.Context, p platform.Platform, entity platform.EntityType) (*SyncResult, error) {
	result := &SyncResult{Platform: p, Entity: entity}

	key := string(p) + "/" + string(entity)
	if !s.acquire(key) {
		result.AlreadyRunning = true
		return result, nil
	}
	defer s.release(key)

	conn, err := s.connections.GetByPlatform(ctx, p)
	if err != nil {
		return nil, err
	}
	cn, err := s.connectors.Resolve(p)
	if err != nil {
		return nil, err
	}
	if _, err := s.tokens.EnsureValid(ctx, conn); err != nil {
		return nil, err
	}

	since, ok := conn.Watermark(entity)
	if !ok {
		since = syncEpoch
	}
	// The watermark candidate is taken before the pull so records updated
	// mid-sync are re-pulled next cycle rather than missed.
	syncStart := s.now().UTC()

	s.logger.Info("Sync cycle started",
		zap.String("platform", string(p)),
		zap.String("entity", string(entity)),
		zap.Time("since", since))

	batch := &connector.Batch{Source: p}
	page := 1
	for {
		if page > maxSyncPages {
			return nil, fmt.Errorf("sync aborted after %d pages for %s/%s", maxSyncPages, p, entity)
		}

		pg, err := cn.FetchPage(ctx, conn, entity, since, page)
		if err != nil {
			return nil, err
		}

		result.Fetched += len(pg.Records)
		for _, raw := range pg.Records {
			rec, err := cn.MapRecord(entity, raw)
			if err != nil {
				batch.Skipped++
				s.logger.Warn("Skipping unmappable record",
					zap.String("platform", string(p)),
					zap.String("entity", string(entity)),
					zap.Error(err))
				continue
			}
			batch.Add(rec)
		}

		if len(pg.Records) < pg.Limit {
			break
		}
		page++
	}

	if result.Fetched == 0 {
		result.UpToDate = true
		result.Watermark = since
		s.logger.Info("Sync cycle found no changes",
			zap.String("platform", string(p)),
			zap.String("entity", string(entity)),
			zap.Time("since", since))
		return result, nil
	}

	reconciled, err := s.reconciler.Apply(ctx, batch)
	if err != nil {
		return nil, err
	}

	conn.SetWatermark(entity, syncStart)
	if err := s.connections.UpdateWatermark(ctx, conn, entity, syncStart); err != nil {
		return nil, fmt.Errorf("failed to persist watermark: %w", err)
	}

	result.Inserted = reconciled.Inserted
	result.Updated = reconciled.Updated
	result.Skipped = batch.Skipped
	result.Watermark = syncStart

	s.logger.Info("Sync cycle completed",
		zap.String("platform", string(p)),
		zap.String("entity", string(entity)),
		zap.Int("fetched", result.Fetched),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// SyncAll runs one cycle for every entity type of a platform, stopping at
// the first failure.
func (s *SyncService) SyncAll(ctx context.Context, p platform.Platform) ([]*SyncResult, error) {
	results := make([]*SyncResult, 0, len(platform.EntityTypes))
	for _, entity := range platform.EntityTypes {
		result, err := s.Sync(ctx, p, entity)
		if err != nil {
			return results, fmt.Errorf("sync failed for %s: %w", entity, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *SyncService) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *SyncService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}
