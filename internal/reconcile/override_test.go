package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-reconciler/app/models"
)

func reconciledFixture(t *testing.T) []models.ResolvedRecord {
	t.Helper()
	rc := testReconciler()
	resolved, _, err := rc.Reconcile(records("Мосва", "Атлантида", "Спб"), 85, "s", nil, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 3)
	return resolved
}

func TestApplyOverridesNoMatchSentinel(t *testing.T) {
	resolved := reconciledFixture(t)
	dir := testDirectory()

	out := ApplyOverrides(resolved, map[int]string{0: OverrideNoMatch}, dir)

	assert.Empty(t, out[0].Matched)
	assert.Empty(t, out[0].MatchedID)
	assert.Empty(t, out[0].ParentRegion)
	assert.Zero(t, out[0].Score)
	assert.False(t, out[0].Changed)
	assert.Equal(t, models.StatusNotFound, out[0].Status)

	// Untouched rows and the input slice stay as they were.
	assert.Equal(t, resolved[1], out[1])
	assert.Equal(t, "Москва", resolved[0].Matched)
}

func TestApplyOverridesConcreteChoice(t *testing.T) {
	resolved := reconciledFixture(t)
	dir := testDirectory()

	out := ApplyOverrides(resolved, map[int]string{1: "Екатеринбург"}, dir)

	assert.Equal(t, "Екатеринбург", out[1].Matched)
	assert.Equal(t, "3", out[1].MatchedID)
	assert.Equal(t, "Свердловская область", out[1].ParentRegion)
	assert.True(t, out[1].Changed)
}

func TestApplyOverridesUnknownNameTolerated(t *testing.T) {
	resolved := reconciledFixture(t)
	dir := testDirectory()

	out := ApplyOverrides(resolved, map[int]string{2: "Нарния"}, dir)

	assert.Equal(t, "Нарния", out[2].Matched)
	assert.Empty(t, out[2].MatchedID)
	assert.Empty(t, out[2].ParentRegion)
	assert.True(t, out[2].Changed)
}

func TestApplyOverridesEmptyMap(t *testing.T) {
	resolved := reconciledFixture(t)

	out := ApplyOverrides(resolved, nil, testDirectory())
	assert.Equal(t, resolved, out)
}
