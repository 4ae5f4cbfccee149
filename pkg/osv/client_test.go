package osv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homebrew/homebrew-brew-vulns/pkg/formula"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient()
	c.BaseURL = srv.URL
	return c, srv
}

func TestQuery(t *testing.T) {
	var gotReq queryRequest
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(queryResponse{Vulns: []Vulnerability{
			{ID: "GHSA-xxxx-yyyy-zzzz", Summary: "heap overflow", Aliases: []string{"CVE-2024-0001"}},
		}})
	})
	defer srv.Close()

	vulns, err := c.Query(context.Background(), formula.Query{
		RepositoryURL: "https://github.com/jqlang/jq",
		Version:       "jq-1.7.1",
		Name:          "jq",
	})
	require.NoError(t, err)

	assert.Equal(t, "jq", gotReq.Package.Name)
	assert.Equal(t, "jq-1.7.1", gotReq.Version)

	require.Len(t, vulns, 1)
	assert.Equal(t, "GHSA-xxxx-yyyy-zzzz", vulns[0].ID)
	assert.Equal(t, []string{"CVE-2024-0001"}, vulns[0].Aliases)
}

func TestQuery_NoVulns(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	defer srv.Close()

	vulns, err := c.Query(context.Background(), formula.Query{Name: "jq", Version: "1.7.1"})
	require.NoError(t, err)
	assert.Empty(t, vulns)
}

func TestQuery_ServerError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.Query(context.Background(), formula.Query{Name: "jq", Version: "1.7.1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestQueryBatch_PreservesOrder(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		seen[req.Package.Name] = true
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(queryResponse{Vulns: []Vulnerability{
			{ID: "OSV-" + req.Package.Name},
		}})
	})
	defer srv.Close()

	queries := []formula.Query{
		{Name: "jq", Version: "1.7.1"},
		{Name: "wget", Version: "1.21"},
		{Name: "curl", Version: "8.5.0"},
	}
	results, err := c.QueryBatch(context.Background(), queries)
	require.NoError(t, err)

	require.Len(t, results, len(queries))
	for i, q := range queries {
		require.Len(t, results[i], 1)
		assert.Equal(t, "OSV-"+q.Name, results[i][0].ID)
	}
	assert.Len(t, seen, 3)
}

func TestQueryBatch_ErrorCancels(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.QueryBatch(context.Background(), []formula.Query{{Name: "jq"}, {Name: "wget"}})
	require.Error(t, err)
}

func TestQueryBatch_Empty(t *testing.T) {
	c := NewClient()
	results, err := c.QueryBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
