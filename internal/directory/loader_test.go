package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treePayload = `[
  {"id": "113", "name": "Россия", "areas": [
    {"id": "1", "name": "Москва", "areas": []},
    {"id": "2", "name": "Санкт-Петербург", "areas": [
      {"id": "78", "name": "Пушкин", "areas": []}
    ]}
  ]},
  {"id": "5", "name": "Украина", "areas": [
    {"id": "115", "name": "Киев", "areas": []}
  ]}
]`

func treeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(treePayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoaderFlattensTree(t *testing.T) {
	srv := treeServer(t)
	loader := NewLoader(LoaderConfig{BaseURL: srv.URL}, nil)

	dir, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, dir.Len())

	// Load order is the depth-first walk order.
	assert.Equal(t, []string{"Россия", "Москва", "Санкт-Петербург", "Пушкин", "Украина", "Киев"}, dir.Names())

	pushkin, ok := dir.Get("Пушкин")
	require.True(t, ok)
	assert.Equal(t, "78", pushkin.ID)
	assert.Equal(t, "Санкт-Петербург", pushkin.ParentRegion)
	assert.Equal(t, "113", pushkin.RootGroupID)

	kiev, ok := dir.Get("Киев")
	require.True(t, ok)
	assert.Equal(t, "5", kiev.RootGroupID)
	assert.Equal(t, "Украина", kiev.ParentRegion)
}

func TestLoaderDomesticSubset(t *testing.T) {
	srv := treeServer(t)
	loader := NewLoader(LoaderConfig{BaseURL: srv.URL}, nil)

	dir, err := loader.Load(context.Background())
	require.NoError(t, err)

	domestic := dir.Subset(loader.NationalRootID())
	assert.Equal(t, 4, domestic.Len())
	assert.Equal(t, []string{"Россия", "Москва", "Санкт-Петербург", "Пушкин"}, domestic.Names())

	_, ok := domestic.Get("Киев")
	assert.False(t, ok)
}

func TestLoaderUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	loader := NewLoader(LoaderConfig{BaseURL: srv.URL}, nil)
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestLoaderBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a tree"}`))
	}))
	t.Cleanup(srv.Close)

	loader := NewLoader(LoaderConfig{BaseURL: srv.URL}, nil)
	_, err := loader.Load(context.Background())
	assert.Error(t, err)
}

func TestLoaderDefaults(t *testing.T) {
	loader := NewLoader(LoaderConfig{BaseURL: "http://example.invalid"}, nil)
	assert.Equal(t, DefaultRootGroupID, loader.NationalRootID())
}
