package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/directory"
)

const testTreePayload = `[
  {"id": "113", "name": "Россия", "areas": [
    {"id": "1", "name": "Москва", "areas": []},
    {"id": "2", "name": "Санкт-Петербург", "areas": []},
    {"id": "3", "name": "Екатеринбург", "areas": []}
  ]},
  {"id": "5", "name": "Украина", "areas": [
    {"id": "115", "name": "Киев", "areas": []}
  ]}
]`

func testService(t *testing.T) *ResolveService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testTreePayload))
	}))
	t.Cleanup(srv.Close)

	loader := directory.NewLoader(directory.LoaderConfig{BaseURL: srv.URL}, nil)
	svc, err := NewResolveService(loader, 100, nil)
	require.NoError(t, err)
	require.NoError(t, svc.ReloadDirectory(context.Background()))
	return svc
}

func TestResolveServiceRequiresLoadedDirectory(t *testing.T) {
	loader := directory.NewLoader(directory.LoaderConfig{BaseURL: "http://example.invalid"}, nil)
	svc, err := NewResolveService(loader, 100, nil)
	require.NoError(t, err)

	_, err = svc.ResolveCity("Москва", 85)
	assert.ErrorIs(t, err, ErrDirectoryNotLoaded)

	_, err = svc.DirectoryStatus()
	assert.ErrorIs(t, err, ErrDirectoryNotLoaded)
}

func TestResolveServiceResolvesAgainstDomesticSubset(t *testing.T) {
	svc := testService(t)

	result, err := svc.ResolveCity("Москва", 85)
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, "Москва", result.Match.Name)

	// The foreign entry is outside the domestic subset.
	result, err = svc.ResolveCity("Киев", 85)
	require.NoError(t, err)
	assert.Nil(t, result.Match)
}

func TestResolveServiceValidatesInput(t *testing.T) {
	svc := testService(t)

	_, err := svc.ResolveCity("Москва", 150)
	assert.Error(t, err)

	_, err = svc.ResolveCity("   ", 85)
	assert.ErrorIs(t, err, ErrEmptyLabel)
}

func TestResolveServiceMemoization(t *testing.T) {
	svc := testService(t)

	first, err := svc.ResolveCity("Мосва", 85)
	require.NoError(t, err)
	second, err := svc.ResolveCity(" мосва ", 85)
	require.NoError(t, err)

	// Same normalized label and threshold hit the memo.
	assert.Same(t, first, second)

	// A different threshold is a different memo entry.
	third, err := svc.ResolveCity("Мосва", 92)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestResolveServiceDirectoryStatus(t *testing.T) {
	svc := testService(t)

	status, err := svc.DirectoryStatus()
	require.NoError(t, err)
	assert.Equal(t, 6, status.TotalEntries)
	assert.Equal(t, 4, status.DomesticEntries)
	assert.NotEmpty(t, status.Version)
}

func TestResolveServiceReconcileAndMerge(t *testing.T) {
	svc := testService(t)

	resolved, stats, cache, err := svc.Reconcile(
		[]models.SourceRecord{{Label: "Москва"}, {Label: "москва"}}, 85, "s", nil)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, 1, stats.DuplicateInput)
	assert.NotNil(t, cache)

	merged, mergeStats, err := svc.Merge(
		[]models.SourceRecord{{Label: "Москва"}},
		[]models.SourceRecord{{Label: "Спб"}}, 85)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
	assert.Equal(t, 2, mergeStats.MergedTotal)
}

func TestResolveServiceBatchJob(t *testing.T) {
	svc := testService(t)

	job, err := svc.StartReconcileJob("job-1",
		[]models.SourceRecord{{Label: "Москва"}, {Label: "Спб"}}, 85, "s")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)

	require.Eventually(t, func() bool {
		snapshot, err := svc.GetJob("job-1")
		return err == nil && snapshot.Status == JobStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	snapshot, err := svc.GetJob("job-1")
	require.NoError(t, err)
	assert.Len(t, snapshot.Records, 2)
	assert.Equal(t, 2, snapshot.Processed)

	_, err = svc.GetJob("missing")
	assert.Error(t, err)
}
