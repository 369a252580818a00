package reconcile

import (
	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/normalizer"
)

// OverrideNoMatch is the sentinel a reviewer sends to force a row to
// no-match instead of picking a candidate.
const OverrideNoMatch = "no_match"

// ApplyOverrides produces a new record collection with reviewer decisions
// applied by row id. The sentinel nulls the resolved fields and sets
// not-found; a concrete name replaces them and recomputes the changed flag.
// A chosen name absent from the directory is accepted as-is with the
// identifier left unset, never an error. Rows without an override are
// copied untouched.
func ApplyOverrides(
	records []models.ResolvedRecord,
	overrides map[int]string,
	dir *models.Directory,
) []models.ResolvedRecord {
	out := make([]models.ResolvedRecord, len(records))
	copy(out, records)
	if len(overrides) == 0 {
		return out
	}

	for i := range out {
		chosen, ok := overrides[out[i].RowID]
		if !ok {
			continue
		}

		if chosen == OverrideNoMatch {
			out[i].Matched = ""
			out[i].MatchedID = ""
			out[i].ParentRegion = ""
			out[i].Score = 0
			out[i].Changed = false
			out[i].Status = models.StatusNotFound
			continue
		}

		out[i].Matched = chosen
		if area, found := dir.Get(chosen); found {
			out[i].MatchedID = area.ID
			out[i].ParentRegion = area.ParentRegion
		} else {
			out[i].MatchedID = ""
			out[i].ParentRegion = ""
		}
		out[i].Changed = normalizer.Changed(out[i].Original, chosen)
	}
	return out
}
