package backend

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issuesearch/internal/api"
	"issuesearch/internal/config"
	"issuesearch/internal/domain"
	"issuesearch/internal/obs"
	"issuesearch/internal/recent"
	"issuesearch/internal/tags"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Organization = "acme"
	cfg.Backend = backend
	cfg.SQLitePath = filepath.Join(t.TempDir(), "recent.db")
	return cfg
}

func TestOpenLocalBackends(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(name, func(t *testing.T) {
			b, err := Open(ctx, testConfig(t, name))
			require.NoError(t, err)
			defer b.Close()

			assert.False(t, b.IsRemote())
			require.NoError(t, b.Store.Save(ctx, "acme", domain.SearchTypeIssue, "is:unresolved"))
			got, err := b.Store.Recent(ctx, "acme", domain.SearchTypeIssue, "", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"is:unresolved"}, recent.Queries(got))

			values, err := b.Tags(ctx, "level", "err")
			require.NoError(t, err)
			require.Len(t, values, 1)
			assert.Equal(t, "error", values[0].Value)

			assert.Equal(t, []domain.Tag{{Key: "browser", Name: "browser"}, {Key: "level", Name: "level"}}, b.TagKeys(ctx))
		})
	}
}

func TestOpenRemoteBackend(t *testing.T) {
	obs.Init("error", nil)
	catalog := tags.NewCatalog(map[string][]string{"release": {"1.0.0", "1.1.0"}})
	srv := api.NewServer(recent.NewMemoryStore(nil), catalog, "tok", obs.Logger("test"))
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	cfg := testConfig(t, config.BackendRemote)
	cfg.APIURL = ts.URL
	cfg.APIToken = "tok"

	ctx := context.Background()
	b, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.True(t, b.IsRemote())
	assert.Nil(t, b.Catalog)
	require.NoError(t, b.Store.Save(ctx, "acme", domain.SearchTypeIssue, "release:1.1.0"))

	got, err := b.Store.Recent(ctx, "acme", domain.SearchTypeIssue, "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"release:1.1.0"}, recent.Queries(got))

	values, err := b.Tags(ctx, "release", "1.1")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "1.1.0", values[0].Value)

	assert.Equal(t, []domain.Tag{{Key: "release", Name: "release"}}, b.TagKeys(ctx))
}

func TestRemoteTagKeysFailureIsEmpty(t *testing.T) {
	cfg := testConfig(t, config.BackendRemote)
	cfg.APIURL = "http://127.0.0.1:1"
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, b.TagKeys(context.Background()))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, "carrier-pigeon"))
	assert.Error(t, err)
}
