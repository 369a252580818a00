// Package reconcile runs the resolution engine over ordered record
// collections: batch reconciliation with duplicate tracking, two-collection
// merging and manual override application.
package reconcile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/matcher"
	"github.com/geo-reconciler/internal/normalizer"
)

// ErrNoRecords is returned when a batch arrives without any records. Shape
// problems fail the whole batch before any resolution starts.
var ErrNoRecords = errors.New("reconcile: batch has no records")

// ProgressFunc is invoked after each processed record. It must not influence
// resolution outcomes.
type ProgressFunc func(done, total int)

// Stats summarizes duplicate detection for one reconciliation run.
type Stats struct {
	DuplicateInput  int `json:"duplicate_input" bson:"duplicate_input"`
	DuplicateResult int `json:"duplicate_result" bson:"duplicate_result"`
	Total           int `json:"total" bson:"total"`
}

// TotalDuplicates returns the combined duplicate count.
func (s Stats) TotalDuplicates() int {
	return s.DuplicateInput + s.DuplicateResult
}

// CacheKey addresses one input row's cached candidate list.
type CacheKey struct {
	Sheet string
	Row   int
}

// CandidateCache retains per-row candidate lists so a reviewer can pick a
// different entry later without recomputation. The cache is owned by the
// caller's session; the reconciler only fills it.
type CandidateCache struct {
	entries map[CacheKey][]models.Candidate
}

// NewCandidateCache creates an empty candidate cache.
func NewCandidateCache() *CandidateCache {
	return &CandidateCache{entries: make(map[CacheKey][]models.Candidate)}
}

// Put stores the candidate list for a row.
func (c *CandidateCache) Put(sheet string, row int, candidates []models.Candidate) {
	c.entries[CacheKey{Sheet: sheet, Row: row}] = candidates
}

// Get returns the candidate list cached for a row.
func (c *CandidateCache) Get(sheet string, row int) ([]models.Candidate, bool) {
	candidates, ok := c.entries[CacheKey{Sheet: sheet, Row: row}]
	return candidates, ok
}

// Len returns the number of cached rows.
func (c *CandidateCache) Len() int {
	return len(c.entries)
}

// Rows returns the cached lists for one sheet keyed by row, for persistence.
func (c *CandidateCache) Rows(sheet string) map[int][]models.Candidate {
	rows := make(map[int][]models.Candidate)
	for key, candidates := range c.entries {
		if key.Sheet == sheet {
			rows[key.Row] = candidates
		}
	}
	return rows
}

// Reconciler runs per-record resolution over ordered batches. Processing is
// strictly sequential: the duplicate registries decide which record wins an
// identity by input order.
type Reconciler struct {
	resolver *matcher.Resolver
	exact    float64
	logger   *zap.Logger
}

// NewReconciler creates a reconciler over a resolver. exactThreshold is the
// raw score at or above which a match counts as exact.
func NewReconciler(resolver *matcher.Resolver, exactThreshold float64, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{resolver: resolver, exact: exactThreshold, logger: logger}
}

// Reconcile resolves every record in input order, tracking duplicates by
// normalized input and by resolved identity. Every input record produces
// exactly one output record; a single record's failure to match never aborts
// the batch. Candidate lists are stored into cache under (sheet, row).
func (rc *Reconciler) Reconcile(
	records []models.SourceRecord,
	threshold float64,
	sheet string,
	cache *CandidateCache,
	progress ProgressFunc,
) ([]models.ResolvedRecord, Stats, error) {
	if len(records) == 0 {
		return nil, Stats{}, ErrNoRecords
	}
	if threshold < 0 || threshold > 100 {
		return nil, Stats{}, fmt.Errorf("reconcile: threshold %v outside [0,100]", threshold)
	}
	if cache == nil {
		cache = NewCandidateCache()
	}

	results := make([]models.ResolvedRecord, 0, len(records))
	seenInput := make(map[string]models.ResolvedRecord)
	seenResult := make(map[string]struct{})
	stats := Stats{Total: len(records)}
	dir := rc.resolver.Directory()

	for idx, record := range records {
		if strings.TrimSpace(record.Label) == "" {
			results = append(results, models.ResolvedRecord{
				Original: record.Label,
				Status:   models.StatusEmpty,
				RowID:    idx,
				Extra:    copyExtra(record.Extra),
			})
			report(progress, idx+1, len(records))
			continue
		}

		original := strings.TrimSpace(record.Label)
		inputKey := normalizer.Normalize(original)

		if prev, ok := seenInput[inputKey]; ok {
			stats.DuplicateInput++
			results = append(results, models.ResolvedRecord{
				Original:     original,
				Matched:      prev.Matched,
				MatchedID:    prev.MatchedID,
				ParentRegion: prev.ParentRegion,
				Score:        prev.Score,
				Changed:      prev.Changed,
				Status:       models.StatusDuplicateInput,
				RowID:        idx,
				Extra:        copyExtra(record.Extra),
			})
			report(progress, idx+1, len(records))
			continue
		}

		match, candidates := rc.resolver.Resolve(original, threshold)
		cache.Put(sheet, idx, candidates)

		if match == nil {
			rec := models.ResolvedRecord{
				Original: original,
				Status:   models.StatusNotFound,
				RowID:    idx,
				Extra:    copyExtra(record.Extra),
			}
			results = append(results, rec)
			seenInput[inputKey] = rec
			report(progress, idx+1, len(records))
			continue
		}

		area, _ := dir.Get(match.Name)
		resultKey := normalizer.Normalize(area.Name)
		score := round1(match.Score)
		rec := models.ResolvedRecord{
			Original:     original,
			Matched:      area.Name,
			MatchedID:    area.ID,
			ParentRegion: area.ParentRegion,
			Score:        score,
			Changed:      normalizer.Changed(original, area.Name),
			RowID:        idx,
			Extra:        copyExtra(record.Extra),
		}

		if _, taken := seenResult[resultKey]; taken {
			stats.DuplicateResult++
			rec.Status = models.StatusDuplicateResult
			results = append(results, rec)
			seenInput[inputKey] = rec
		} else {
			if score >= rc.exact {
				rec.Status = models.StatusExact
			} else {
				rec.Status = models.StatusApproximate
			}
			results = append(results, rec)
			seenInput[inputKey] = rec
			seenResult[resultKey] = struct{}{}
		}
		report(progress, idx+1, len(records))
	}

	rc.logger.Debug("batch reconciled",
		zap.Int("records", len(records)),
		zap.Int("duplicate_input", stats.DuplicateInput),
		zap.Int("duplicate_result", stats.DuplicateResult))

	return results, stats, nil
}

// TrimHeaderRecord drops a leading record whose label looks like a column
// header rather than data.
func TrimHeaderRecord(records []models.SourceRecord) []models.SourceRecord {
	if len(records) == 0 {
		return records
	}
	first := strings.ToLower(strings.TrimSpace(records[0].Label))
	headerKeywords := []string{
		"название", "город", "регион", "гео", "location", "city",
		"region", "населенный пункт", "geography", "область",
	}
	for _, kw := range headerKeywords {
		if strings.Contains(first, kw) {
			return records[1:]
		}
	}
	return records
}

func copyExtra(extra map[string]string) map[string]string {
	if extra == nil {
		return nil
	}
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func report(progress ProgressFunc, done, total int) {
	if progress != nil {
		progress(done, total)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
