package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/config"
	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/directory"
	"github.com/geo-reconciler/internal/matcher"
	"github.com/geo-reconciler/internal/normalizer"
	"github.com/geo-reconciler/internal/reconcile"
)

// Batch job states.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ErrEmptyLabel is returned for blank single-resolve input; blank labels are
// a batch-level status, never a resolver input.
var ErrEmptyLabel = errors.New("resolve: empty label")

// ErrDirectoryNotLoaded is returned before the first successful directory load.
var ErrDirectoryNotLoaded = errors.New("resolve: directory not loaded")

// DirectoryStatus describes the active directory snapshot.
type DirectoryStatus struct {
	Version         string    `json:"version"`
	TotalEntries    int       `json:"total_entries"`
	DomesticEntries int       `json:"domestic_entries"`
	LoadedAt        time.Time `json:"loaded_at"`
}

// BatchJob tracks one asynchronous reconciliation run.
type BatchJob struct {
	ID        string                  `json:"id"`
	Status    string                  `json:"status"`
	Processed int                     `json:"processed"`
	Total     int                     `json:"total"`
	Records   []models.ResolvedRecord `json:"records,omitempty"`
	Stats     reconcile.Stats         `json:"stats"`
	Error     string                  `json:"error,omitempty"`
	StartedAt time.Time               `json:"started_at"`

	mu sync.Mutex
}

// ResolveService is the engine facade: it owns the directory snapshot, the
// resolver built over its domestic subset, an LRU memo of single-label
// resolutions and the asynchronous batch jobs.
type ResolveService struct {
	loader *directory.Loader
	logger *zap.Logger

	mu       sync.RWMutex
	full     *models.Directory
	domestic *models.Directory
	resolver *matcher.Resolver

	memo *lru.Cache[string, *models.Resolution]

	jobsMu sync.RWMutex
	jobs   map[string]*BatchJob

	startTime time.Time
}

// NewResolveService creates the facade. Call ReloadDirectory before use.
func NewResolveService(loader *directory.Loader, memoSize int, logger *zap.Logger) (*ResolveService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	memo, err := lru.New[string, *models.Resolution](memoSize)
	if err != nil {
		return nil, fmt.Errorf("create resolution memo: %w", err)
	}
	return &ResolveService{
		loader:    loader,
		logger:    logger,
		memo:      memo,
		jobs:      make(map[string]*BatchJob),
		startTime: time.Now(),
	}, nil
}

// GetStartTime returns the service start time.
func (s *ResolveService) GetStartTime() time.Time {
	return s.startTime
}

// ReloadDirectory fetches a fresh directory snapshot, rebuilds the domestic
// subset and resolver, swaps them in atomically and drops the memo. Runs in
// flight keep resolving against the snapshot they started with.
func (s *ResolveService) ReloadDirectory(ctx context.Context) error {
	full, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	domestic := full.Subset(s.loader.NationalRootID())
	resolver := matcher.NewResolver(domestic, config.C, s.logger)

	s.mu.Lock()
	s.full = full
	s.domestic = domestic
	s.resolver = resolver
	s.mu.Unlock()

	s.memo.Purge()

	s.logger.Info("directory snapshot activated",
		zap.String("version", full.Version()),
		zap.Int("total", full.Len()),
		zap.Int("domestic", domestic.Len()))
	return nil
}

// DirectoryStatus reports on the active snapshot.
func (s *ResolveService) DirectoryStatus() (DirectoryStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.full == nil {
		return DirectoryStatus{}, ErrDirectoryNotLoaded
	}
	return DirectoryStatus{
		Version:         s.full.Version(),
		TotalEntries:    s.full.Len(),
		DomesticEntries: s.domestic.Len(),
		LoadedAt:        s.full.LoadedAt(),
	}, nil
}

// Directory returns the active domestic subset.
func (s *ResolveService) Directory() (*models.Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.domestic == nil {
		return nil, ErrDirectoryNotLoaded
	}
	return s.domestic, nil
}

// ResolveCity resolves one label. Results are memoized per normalized label,
// threshold and directory version; a memo hit returns the stored resolution
// unchanged.
func (s *ResolveService) ResolveCity(city string, threshold float64) (*models.Resolution, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if normalizer.Normalize(city) == "" {
		return nil, ErrEmptyLabel
	}

	s.mu.RLock()
	resolver := s.resolver
	domestic := s.domestic
	s.mu.RUnlock()
	if resolver == nil {
		return nil, ErrDirectoryNotLoaded
	}

	key := resolutionKey(domestic.Version(), threshold, city)
	if cached, ok := s.memo.Get(key); ok {
		return cached, nil
	}

	match, candidates := resolver.Resolve(city, threshold)
	result := &models.Resolution{
		Query:            city,
		Match:            match,
		Candidates:       candidates,
		Threshold:        threshold,
		DirectoryVersion: domestic.Version(),
	}
	s.memo.Add(key, result)
	return result, nil
}

// Reconcile runs the batch reconciler synchronously and returns the records,
// stats and the caller-owned candidate cache.
func (s *ResolveService) Reconcile(
	records []models.SourceRecord,
	threshold float64,
	sheet string,
	progress reconcile.ProgressFunc,
) ([]models.ResolvedRecord, reconcile.Stats, *reconcile.CandidateCache, error) {
	rc, err := s.reconciler()
	if err != nil {
		return nil, reconcile.Stats{}, nil, err
	}
	cache := reconcile.NewCandidateCache()
	resolved, stats, err := rc.Reconcile(records, threshold, sheet, cache, progress)
	if err != nil {
		return nil, reconcile.Stats{}, nil, err
	}
	return resolved, stats, cache, nil
}

// Merge unions two collections under the shared duplicate registry.
func (s *ResolveService) Merge(
	first, second []models.SourceRecord,
	threshold float64,
) ([]models.ResolvedRecord, reconcile.MergeStats, error) {
	rc, err := s.reconciler()
	if err != nil {
		return nil, reconcile.MergeStats{}, err
	}
	return rc.Merge(first, second, threshold, nil)
}

// StartReconcileJob runs a reconciliation in the background and returns the
// job id for status polling.
func (s *ResolveService) StartReconcileJob(
	jobID string,
	records []models.SourceRecord,
	threshold float64,
	sheet string,
) (*BatchJob, error) {
	rc, err := s.reconciler()
	if err != nil {
		return nil, err
	}

	job := &BatchJob{
		ID:        jobID,
		Status:    JobStatusRunning,
		Total:     len(records),
		StartedAt: time.Now(),
	}
	s.jobsMu.Lock()
	s.jobs[jobID] = job
	s.jobsMu.Unlock()

	go func() {
		cache := reconcile.NewCandidateCache()
		resolved, stats, err := rc.Reconcile(records, threshold, sheet, cache, func(done, total int) {
			job.mu.Lock()
			job.Processed = done
			job.mu.Unlock()
		})

		job.mu.Lock()
		defer job.mu.Unlock()
		if err != nil {
			job.Status = JobStatusFailed
			job.Error = err.Error()
			return
		}
		job.Status = JobStatusCompleted
		job.Records = resolved
		job.Stats = stats
	}()

	return job, nil
}

// GetJob returns a point-in-time copy of a job's state.
func (s *ResolveService) GetJob(jobID string) (*BatchJob, error) {
	s.jobsMu.RLock()
	job, ok := s.jobs[jobID]
	s.jobsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobID)
	}

	job.mu.Lock()
	defer job.mu.Unlock()
	snapshot := &BatchJob{
		ID:        job.ID,
		Status:    job.Status,
		Processed: job.Processed,
		Total:     job.Total,
		Records:   job.Records,
		Stats:     job.Stats,
		Error:     job.Error,
		StartedAt: job.StartedAt,
	}
	return snapshot, nil
}

// ResolutionCacheKey returns the key a resolution for this label and
// threshold must be cached under. Keys carry the directory version, the
// threshold and the normalized label, so a cache hit can never replay a
// resolution computed under different inputs.
func (s *ResolveService) ResolutionCacheKey(city string, threshold float64) (string, error) {
	s.mu.RLock()
	domestic := s.domestic
	s.mu.RUnlock()
	if domestic == nil {
		return "", ErrDirectoryNotLoaded
	}
	return resolutionKey(domestic.Version(), threshold, city), nil
}

func resolutionKey(version string, threshold float64, city string) string {
	return version + "\x1f" + strconv.FormatFloat(threshold, 'f', -1, 64) +
		"\x1f" + normalizer.Normalize(city)
}

func (s *ResolveService) reconciler() (*reconcile.Reconciler, error) {
	s.mu.RLock()
	resolver := s.resolver
	s.mu.RUnlock()
	if resolver == nil {
		return nil, ErrDirectoryNotLoaded
	}
	return reconcile.NewReconciler(resolver, config.C.Thresholds.Exact, s.logger), nil
}

func validateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("resolve: threshold %v outside [0,100]", threshold)
	}
	return nil
}
