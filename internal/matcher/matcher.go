// Package matcher implements the city-resolution engine: alias tables,
// first-word candidate generation, fuzzy scoring and the staged resolver
// that turns a free-form label into the best canonical directory entry.
package matcher

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/geo-reconciler/app/config"
	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/normalizer"
)

// Administrative-unit keyword stems used by the ranking adjustments.
var unitKeywords = []string{"област", "край", "республик", "округ"}

// Resolver matches one label at a time against an immutable directory
// snapshot. It is state-free across calls; resolving the same input twice
// yields identical results.
type Resolver struct {
	dir    *models.Directory
	cfg    config.MatcherCfg
	logger *zap.Logger
}

// NewResolver creates a resolver over a directory snapshot.
func NewResolver(dir *models.Directory, cfg config.MatcherCfg, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{dir: dir, cfg: cfg, logger: logger}
}

// Directory returns the snapshot this resolver matches against.
func (r *Resolver) Directory() *models.Directory {
	return r.dir
}

// Resolve runs the staged match for one label. Callers must pre-filter
// blank labels and pass a threshold in [0,100]. The returned candidate list
// is populated on every outcome so a reviewer can override later.
//
// Stage order, first applicable wins: exclusion, preferred alias, first-word
// fast path, exact base-name with region disambiguation, ranked fuzzy
// fallback. The first-word pass is conclusive: when its top score misses the
// threshold the resolution fails without consulting the later stages. That
// short-circuit is long-standing behavior and is kept as-is; the later
// stages remain callable directly.
func (r *Resolver) Resolve(clientCity string, threshold float64) (*models.Match, []models.Candidate) {
	cityPart, regionPart := normalizer.Split(clientCity)
	cityNorm := normalizer.Normalize(cityPart)
	names := r.dir.Names()

	wordCandidates := Candidates(cityPart, names, r.cfg.CandidateLimit, r.cfg.FirstWordJaro)

	// 1. Exclusions force no-match; candidates still go back to the caller.
	if IsExcluded(cityNorm) {
		r.logger.Debug("label excluded from matching", zap.String("label", clientCity))
		return nil, wordCandidates
	}

	// 2. Preferred aliases short-circuit everything else.
	if target, ok := PreferredAlias(cityNorm); ok {
		if _, present := r.dir.Get(target); present {
			score := WeightedRatio(cityNorm, normalizer.Normalize(target))
			return &models.Match{Name: target, Score: score, TieBreak: 0}, wordCandidates
		}
	}

	// 3. First-word fast path.
	if len(wordCandidates) > 0 && wordCandidates[0].Score >= threshold {
		best := wordCandidates[0]
		return &models.Match{Name: best.Name, Score: best.Score, TieBreak: 0}, wordCandidates
	}
	if len(wordCandidates) == 0 || wordCandidates[0].Score < threshold {
		return nil, wordCandidates
	}

	// 4. Exact base-name match with region disambiguation.
	if m := r.matchExactBase(cityNorm, regionPart); m != nil {
		return m, wordCandidates
	}

	// 5. Ranked fuzzy fallback.
	return r.matchRankedFuzzy(cityPart, cityNorm, regionPart, threshold), wordCandidates
}

// matchExactBase compares the query against every directory base name
// (qualifier stripped). Among exact hits, entries whose qualifier contains
// the query's region part win; otherwise the first hit in directory order
// does. Returns nil when no base name matches.
func (r *Resolver) matchExactBase(cityNorm, regionPart string) *models.Match {
	var exact []string
	var exactWithRegion []string

	for _, name := range r.dir.Names() {
		base := normalizer.Normalize(normalizer.BaseName(name))
		if cityNorm != base {
			continue
		}
		if regionPart != "" {
			regionNorm := normalizer.NormalizeRegion(regionPart)
			nameNorm := normalizer.NormalizeRegion(name)
			if strings.Contains(nameNorm, regionNorm) {
				exactWithRegion = append(exactWithRegion, name)
			} else {
				exact = append(exact, name)
			}
		} else {
			exact = append(exact, name)
		}
	}

	var best string
	switch {
	case len(exactWithRegion) > 0:
		best = exactWithRegion[0]
	case len(exact) > 0:
		best = exact[0]
	default:
		return nil
	}

	score := WeightedRatio(cityNorm, normalizer.Normalize(best))
	return &models.Match{Name: best, Score: score, TieBreak: 0}
}

// matchRankedFuzzy scores the query against every directory name, keeps the
// top entries at or above the threshold and, when several survive, picks the
// winner by adjusted score. The adjustments rank only; the returned score is
// always the raw similarity of the winner.
func (r *Resolver) matchRankedFuzzy(cityPart, cityNorm, regionPart string, threshold float64) *models.Match {
	type scored struct {
		name  string
		score float64
		index int
	}

	all := make([]scored, 0, r.dir.Len())
	for _, name := range r.dir.Names() {
		all = append(all, scored{name: name, score: WeightedRatio(cityPart, name)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	limit := r.cfg.FuzzyLimit
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	kept := all[:0]
	for _, c := range all {
		if c.score >= threshold {
			kept = append(kept, c)
		}
	}
	for i := range kept {
		kept[i].index = i
	}

	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return &models.Match{Name: kept[0].name, Score: kept[0].score, TieBreak: 0}
	}

	w := r.cfg.Weights
	var best *scored
	bestAdjusted := 0.0

	for i := range kept {
		c := kept[i]
		adjusted := c.score

		candBase := normalizer.Normalize(normalizer.BaseName(c.name))
		candNorm := normalizer.Normalize(c.name)

		switch {
		case cityNorm == candBase:
			adjusted += w.ExactBase
		case strings.Contains(candBase, cityNorm):
			adjusted += w.QueryInBase
		case strings.Contains(cityNorm, candBase):
			adjusted += w.BaseInQuery
		default:
			adjusted -= w.NoOverlap
		}

		if regionPart != "" {
			regionNorm := normalizer.NormalizeRegion(regionPart)
			if strings.Contains(normalizer.NormalizeRegion(c.name), regionNorm) {
				adjusted += w.RegionAgree
			} else if strings.Contains(c.name, "(") {
				adjusted -= w.RegionConflict
			}
		}

		baseLen := len([]rune(candBase))
		queryLen := len([]rune(cityNorm))
		if diff := baseLen - queryLen; diff > 3 || diff < -3 {
			adjusted -= w.LengthGap
		}
		if baseLen > queryLen+4 {
			adjusted -= w.LongerCandidate
		}

		if len([]rune(c.name)) > 15 && len([]rune(cityPart)) > 15 {
			adjusted += w.LongNames
		}

		queryHasUnit := hasUnitKeyword(cityNorm)
		candHasUnit := hasUnitKeyword(candNorm)
		if queryHasUnit && candHasUnit {
			adjusted += w.UnitKeywordBoth
		} else if queryHasUnit && !candHasUnit {
			adjusted -= w.UnitKeywordQuery
		}

		if adjusted > bestAdjusted {
			bestAdjusted = adjusted
			best = &kept[i]
		}
	}

	if best == nil {
		best = &kept[0]
	}
	return &models.Match{Name: best.name, Score: best.score, TieBreak: best.index}
}

func hasUnitKeyword(s string) bool {
	for _, kw := range unitKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
