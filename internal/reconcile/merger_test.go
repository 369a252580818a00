package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-reconciler/app/models"
)

func TestMergeScenario(t *testing.T) {
	rc := testReconciler()

	first := records("Москва", "Спб")
	second := records("Спб", "Екб")

	merged, stats, err := rc.Merge(first, second, 85, nil)
	require.NoError(t, err)

	require.Len(t, merged, 3)
	assert.Equal(t, "Москва", merged[0].Matched)
	assert.Equal(t, "Санкт-Петербург", merged[1].Matched)
	assert.Equal(t, "Екатеринбург", merged[2].Matched)

	assert.Equal(t, SourceFirst, merged[0].Source)
	assert.Equal(t, SourceFirst, merged[1].Source)
	assert.Equal(t, SourceSecond, merged[2].Source)

	assert.Equal(t, 2, stats.TotalFromFirst)
	assert.Equal(t, 2, stats.TotalFromSecond)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Equal(t, 3, stats.UniqueAccepted)
	assert.Equal(t, 3, stats.MergedTotal)
}

func TestMergeDropsResultDuplicates(t *testing.T) {
	rc := testReconciler()

	// Different labels, same resolved identity: only the first survives.
	merged, stats, err := rc.Merge(records("Москва"), records("Мосва"), 85, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "Москва", merged[0].Matched)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
}

func TestMergeSkipsBlanksAndKeepsNotFound(t *testing.T) {
	rc := testReconciler()

	merged, stats, err := rc.Merge(records("  ", "Атлантида"), nil, 85, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, models.StatusNotFound, merged[0].Status)
	assert.Equal(t, "Атлантида", merged[0].Original)
	assert.Equal(t, 1, stats.UniqueAccepted)
	assert.Equal(t, 0, stats.DuplicatesRemoved)
}

func TestMergeRejectsBadInput(t *testing.T) {
	rc := testReconciler()

	_, _, err := rc.Merge(nil, nil, 85, nil)
	assert.ErrorIs(t, err, ErrNoRecords)

	_, _, err = rc.Merge(records("Москва"), nil, 101, nil)
	assert.Error(t, err)
}
