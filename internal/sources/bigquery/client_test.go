package bigquery_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/agentstation/catalogsync/internal/sources/bigquery"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/schema"
)

type patchRequest struct {
	path    string
	ifMatch string
	body    map[string]any
}

// fakeBigQuery serves the tables.list, tables.get and tables.patch calls of
// dataset "sales" in project "proj".
type fakeBigQuery struct {
	mu      sync.Mutex
	patches []patchRequest
	status  int
}

func (f *fakeBigQuery) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": "precondition failed"},
		})
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/projects/proj/datasets/sales/tables"):
		page := map[string]any{"tables": []any{tableRef("orders"), tableRef("customers")}, "nextPageToken": "page-2"}
		if r.URL.Query().Get("pageToken") == "page-2" {
			page = map[string]any{"tables": []any{tableRef("payments")}}
		}
		_ = json.NewEncoder(w).Encode(page)

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/tables/orders"):
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tableReference": tableRef("orders")["tableReference"],
			"description":    "old",
			"etag":           "E1",
			"schema": map[string]any{"fields": []any{
				map[string]any{"name": "amount", "type": "NUMERIC", "precision": "10", "scale": "2"},
				map[string]any{"name": "address", "type": "RECORD", "fields": []any{
					map[string]any{"name": "city", "type": "STRING"},
				}},
			}},
		})

	case r.Method == http.MethodPatch:
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		f.patches = append(f.patches, patchRequest{path: path, ifMatch: r.Header.Get("If-Match"), body: body})
		f.mu.Unlock()
		body["tableReference"] = map[string]any{"projectId": "proj", "datasetId": "sales", "tableId": path[strings.LastIndex(path, "/")+1:]}
		body["etag"] = "E2"
		_ = json.NewEncoder(w).Encode(body)

	default:
		http.NotFound(w, r)
	}
}

func tableRef(id string) map[string]any {
	return map[string]any{"tableReference": map[string]any{"projectId": "proj", "datasetId": "sales", "tableId": id}}
}

func newTestClient(t *testing.T, fake *fakeBigQuery) *bigquery.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := bigquery.New(context.Background(), "proj", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func fieldsOf(t *testing.T, body map[string]any) []any {
	t.Helper()
	s, ok := body["schema"].(map[string]any)
	require.True(t, ok, "patch carries a schema")
	fields, ok := s["fields"].([]any)
	require.True(t, ok)
	return fields
}

func TestNewRequiresProject(t *testing.T) {
	_, err := bigquery.New(context.Background(), "", nil, option.WithoutAuthentication())
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestClientListTablesPages(t *testing.T) {
	c := newTestClient(t, &fakeBigQuery{})

	names, err := c.ListTables(context.Background(), "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "customers", "payments"}, names)
}

func TestClientUpdateUsesFetchedSchema(t *testing.T) {
	fake := &fakeBigQuery{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	md, err := c.GetTable(ctx, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "old", md.Description)
	assert.Equal(t, "E1", md.ETag)
	require.Len(t, md.Schema, 2)

	merged, changed := schema.Merge(md.Schema, map[string]string{
		"amount":       "total",
		"address.city": "city",
	})
	require.Equal(t, 2, changed)

	err = c.UpdateTable(ctx, "sales", "orders", metadata.TableUpdate{
		Description: "new",
		Schema:      merged,
		ETag:        md.ETag,
	})
	require.NoError(t, err)

	require.Len(t, fake.patches, 1)
	patch := fake.patches[0]
	assert.True(t, strings.HasSuffix(patch.path, "/projects/proj/datasets/sales/tables/orders"))
	assert.Equal(t, "E1", patch.ifMatch)

	keys := make([]string, 0, len(patch.body))
	for k := range patch.body {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"description", "schema"}, keys)
	assert.Equal(t, "new", patch.body["description"])

	fields := fieldsOf(t, patch.body)
	require.Len(t, fields, 2)
	amount := fields[0].(map[string]any)
	assert.Equal(t, "amount", amount["name"])
	assert.Equal(t, "total", amount["description"])
	assert.Equal(t, "10", amount["precision"], "precision survives the update")
	assert.Equal(t, "2", amount["scale"])

	address := fields[1].(map[string]any)
	sub := address["fields"].([]any)
	require.Len(t, sub, 1)
	assert.Equal(t, "city", sub[0].(map[string]any)["description"])
}

func TestClientUpdateWithoutFetch(t *testing.T) {
	fake := &fakeBigQuery{}
	c := newTestClient(t, fake)

	err := c.UpdateTable(context.Background(), "sales", "orders", metadata.TableUpdate{
		Description: "new",
		Schema: []metadata.Field{
			{Name: "id", Type: "INTEGER", Mode: bigquery.ModeRequired, Description: "Order ID"},
		},
	})
	require.NoError(t, err)

	require.Len(t, fake.patches, 1)
	patch := fake.patches[0]
	assert.Empty(t, patch.ifMatch, "no etag means an unguarded update")

	fields := fieldsOf(t, patch.body)
	require.Len(t, fields, 1)
	id := fields[0].(map[string]any)
	assert.Equal(t, "id", id["name"])
	assert.Equal(t, "INTEGER", id["type"])
	assert.Equal(t, "REQUIRED", id["mode"])
	assert.Equal(t, "Order ID", id["description"])
}

func TestClientUpdatePreconditionFailed(t *testing.T) {
	c := newTestClient(t, &fakeBigQuery{status: http.StatusPreconditionFailed})

	err := c.UpdateTable(context.Background(), "sales", "orders", metadata.TableUpdate{
		Description: "new",
		ETag:        "stale",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrPrecondition)
}
