package reconcile

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/normalizer"
)

// Source tags for merged records.
const (
	SourceFirst  = "file_1"
	SourceSecond = "file_2"
)

// MergeStats summarizes a two-collection merge.
type MergeStats struct {
	TotalFromFirst    int `json:"total_from_first" bson:"total_from_first"`
	TotalFromSecond   int `json:"total_from_second" bson:"total_from_second"`
	DuplicatesRemoved int `json:"duplicates_removed" bson:"duplicates_removed"`
	UniqueAccepted    int `json:"unique_accepted" bson:"unique_accepted"`
	MergedTotal       int `json:"merged_total" bson:"merged_total"`
}

// Merge unions two ordered collections under one shared duplicate registry,
// first collection first. A record whose normalized input or resolved
// identity was already accepted (from either collection) is dropped
// entirely rather than kept with a duplicate tag. Blank labels are skipped.
func (rc *Reconciler) Merge(
	first, second []models.SourceRecord,
	threshold float64,
	progress ProgressFunc,
) ([]models.ResolvedRecord, MergeStats, error) {
	if len(first) == 0 && len(second) == 0 {
		return nil, MergeStats{}, ErrNoRecords
	}
	if threshold < 0 || threshold > 100 {
		return nil, MergeStats{}, fmt.Errorf("reconcile: threshold %v outside [0,100]", threshold)
	}

	stats := MergeStats{
		TotalFromFirst:  len(first),
		TotalFromSecond: len(second),
	}
	seenInput := make(map[string]struct{})
	seenResult := make(map[string]struct{})
	var results []models.ResolvedRecord
	total := len(first) + len(second)
	done := 0

	appendSource := func(records []models.SourceRecord, source string) {
		for idx, record := range records {
			done++
			if strings.TrimSpace(record.Label) == "" {
				report(progress, done, total)
				continue
			}

			original := strings.TrimSpace(record.Label)
			inputKey := normalizer.Normalize(original)
			if _, ok := seenInput[inputKey]; ok {
				stats.DuplicatesRemoved++
				report(progress, done, total)
				continue
			}

			match, _ := rc.resolver.Resolve(original, threshold)
			if match == nil {
				results = append(results, models.ResolvedRecord{
					Original: original,
					Status:   models.StatusNotFound,
					RowID:    idx,
					Source:   source,
					Extra:    copyExtra(record.Extra),
				})
				seenInput[inputKey] = struct{}{}
				stats.UniqueAccepted++
				report(progress, done, total)
				continue
			}

			area, _ := rc.resolver.Directory().Get(match.Name)
			resultKey := normalizer.Normalize(area.Name)
			if _, ok := seenResult[resultKey]; ok {
				stats.DuplicatesRemoved++
				report(progress, done, total)
				continue
			}

			score := round1(match.Score)
			status := models.StatusApproximate
			if score >= rc.exact {
				status = models.StatusExact
			}
			results = append(results, models.ResolvedRecord{
				Original:     original,
				Matched:      area.Name,
				MatchedID:    area.ID,
				ParentRegion: area.ParentRegion,
				Score:        score,
				Changed:      normalizer.Changed(original, area.Name),
				Status:       status,
				RowID:        idx,
				Source:       source,
				Extra:        copyExtra(record.Extra),
			})
			seenInput[inputKey] = struct{}{}
			seenResult[resultKey] = struct{}{}
			stats.UniqueAccepted++
			report(progress, done, total)
		}
	}

	appendSource(first, SourceFirst)
	appendSource(second, SourceSecond)

	stats.MergedTotal = len(results)

	rc.logger.Debug("collections merged",
		zap.Int("from_first", stats.TotalFromFirst),
		zap.Int("from_second", stats.TotalFromSecond),
		zap.Int("duplicates_removed", stats.DuplicatesRemoved),
		zap.Int("merged_total", stats.MergedTotal))

	return results, stats, nil
}
