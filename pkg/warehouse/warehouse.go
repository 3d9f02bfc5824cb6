// Package warehouse executes read-only SQL against the analytics
// warehouse. Table schemas are provisioned out of band; this package only
// runs queries and shapes rows.
package warehouse

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Querier executes a SQL query and returns its rows.
type Querier interface {
	Query(ctx context.Context, sql string) ([]Row, error)
	Close() error
}

// Option configures the BigQuery querier.
type Option func(*bqQuerier)

// WithMaxRows caps the number of rows returned per query. Zero means
// no cap.
func WithMaxRows(n int) Option {
	return func(q *bqQuerier) {
		q.maxRows = n
	}
}

// WithClientOptions passes extra options to the underlying client
// (credentials, endpoint overrides).
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(q *bqQuerier) {
		q.clientOpts = opts
	}
}

type bqQuerier struct {
	client     *bigquery.Client
	maxRows    int
	clientOpts []option.ClientOption
}

// New creates a BigQuery-backed Querier for the given project.
func New(ctx context.Context, projectID string, opts ...Option) (Querier, error) {
	q := &bqQuerier{maxRows: 80}
	for _, opt := range opts {
		opt(q)
	}

	client, err := bigquery.NewClient(ctx, projectID, q.clientOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: create client")
	}
	q.client = client
	return q, nil
}

// Query runs sql and materializes up to maxRows rows.
func (q *bqQuerier) Query(ctx context.Context, sql string) ([]Row, error) {
	job := q.client.Query(sql)
	it, err := job.Read(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: run query")
	}

	var rows []Row
	for {
		if q.maxRows > 0 && len(rows) >= q.maxRows {
			zap.L().Debug("warehouse: row cap reached", zap.Int("max_rows", q.maxRows))
			break
		}
		var values map[string]bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "warehouse: read row")
		}
		row := make(Row, len(values))
		for k, v := range values {
			row[k] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (q *bqQuerier) Close() error {
	if q.client == nil {
		return nil
	}
	return q.client.Close()
}
