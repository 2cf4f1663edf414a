// Package bigquery reads and updates table metadata through the BigQuery API.
package bigquery

import (
	"context"
	"sync"

	"cloud.google.com/go/auth"
	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/agentstation/catalogsync/internal/sources"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/metadata"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Client implements reconciler.Catalog for one project.
type Client struct {
	client *bq.Client

	// schemas holds the full schema of each fetched table so an update can
	// carry over the attributes metadata.Field does not mirror. Entries are
	// only evicted by UpdateTable, so a dry run keeps one per table for the
	// life of the process.
	mu      sync.Mutex
	schemas map[string]bq.Schema
}

var _ reconciler.Catalog = (*Client)(nil)

// New creates a BigQuery catalog client for project.
func New(ctx context.Context, project string, creds *auth.Credentials, opts ...option.ClientOption) (*Client, error) {
	if project == "" {
		return nil, errors.NewValidationError("project", project, "cannot be empty")
	}

	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if creds != nil {
		clientOpts = append(clientOpts, option.WithAuthCredentials(creds))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := bq.NewClient(ctx, project, clientOpts...)
	if err != nil {
		return nil, errors.NewConfigError(sources.ServiceBigQuery, "failed to create BigQuery client", err)
	}
	return &Client{client: client, schemas: make(map[string]bq.Schema)}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ListTables returns the table IDs of dataset in listing order.
func (c *Client) ListTables(ctx context.Context, dataset string) ([]string, error) {
	it := c.client.Dataset(dataset).Tables(ctx)
	var names []string
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, sources.APIError(sources.ServiceBigQuery, err)
		}
		names = append(names, t.TableID)
	}
	return names, nil
}

// GetTable fetches description, schema and etag of one table.
func (c *Client) GetTable(ctx context.Context, dataset, table string) (*metadata.TableMetadata, error) {
	md, err := c.client.Dataset(dataset).Table(table).Metadata(ctx)
	if err != nil {
		return nil, sources.APIError(sources.ServiceBigQuery, err)
	}

	c.mu.Lock()
	c.schemas[key(dataset, table)] = md.Schema
	c.mu.Unlock()

	return &metadata.TableMetadata{
		Dataset:     dataset,
		Table:       table,
		Description: md.Description,
		Schema:      FieldsFromSchema(md.Schema),
		ETag:        md.ETag,
	}, nil
}

// UpdateTable writes description and schema in one call. When the table was
// fetched through this client, only descriptions are changed on its schema.
func (c *Client) UpdateTable(ctx context.Context, dataset, table string, update metadata.TableUpdate) error {
	k := key(dataset, table)
	c.mu.Lock()
	base, ok := c.schemas[k]
	delete(c.schemas, k)
	c.mu.Unlock()

	var schema bq.Schema
	if ok {
		schema = ApplyDescriptions(base, update.Schema)
	} else {
		schema = SchemaFromFields(update.Schema)
	}

	tmu := bq.TableMetadataToUpdate{
		Description: update.Description,
		Schema:      schema,
	}
	if _, err := c.client.Dataset(dataset).Table(table).Update(ctx, tmu, update.ETag); err != nil {
		return sources.APIError(sources.ServiceBigQuery, err)
	}

	logging.FromContext(ctx).Debug().
		Str("dataset", dataset).
		Str("table", table).
		Bool("etag_guarded", update.ETag != "").
		Msg("Table metadata updated")
	return nil
}

func key(dataset, table string) string {
	return dataset + "." + table
}
