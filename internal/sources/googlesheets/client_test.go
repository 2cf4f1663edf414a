package googlesheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/agentstation/catalogsync/internal/sources/googlesheets"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/sheets"
)

func TestRecordsFromValues(t *testing.T) {
	values := [][]interface{}{
		{"BQ 欄位", "說明", ""},
		{"id", "Order ID", "stray"},
		{"amount"},
		{float64(3), true},
	}

	records := googlesheets.RecordsFromValues(values)
	assert.Equal(t, []sheets.Record{
		{"BQ 欄位": "id", "說明": "Order ID"},
		{"BQ 欄位": "amount", "說明": ""},
		{"BQ 欄位": "3", "說明": "true"},
	}, records)

	assert.Empty(t, googlesheets.RecordsFromValues(nil))
	assert.Empty(t, googlesheets.RecordsFromValues([][]interface{}{{"only", "header"}}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *googlesheets.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := googlesheets.New(context.Background(), "sheet-1", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/spreadsheets/sheet-1"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sheets": []any{
					map[string]any{"properties": map[string]any{"sheetId": 16282389, "title": "tables"}},
					map[string]any{"properties": map[string]any{"sheetId": 7, "title": "sem.orders"}},
				},
			})
		case strings.Contains(r.URL.Path, "/values/"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"range":  "'sem.orders'!A1:B2",
				"values": [][]string{{"BQ 欄位", "說明"}, {"id", "Order ID"}},
			})
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()
	worksheets, err := c.Worksheets(ctx)
	require.NoError(t, err)
	require.Len(t, worksheets, 2)
	assert.Equal(t, int64(16282389), worksheets[0].ID())
	assert.Equal(t, "sem.orders", worksheets[1].Title())

	records, err := worksheets[1].Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, []sheets.Record{{"BQ 欄位": "id", "說明": "Order ID"}}, records)
}

func TestClientErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	})

	_, err := c.Worksheets(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsPermissionDenied(err))

	_, err = googlesheets.New(context.Background(), "", nil)
	assert.True(t, errors.IsValidationError(err))
}
