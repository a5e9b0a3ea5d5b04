package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/votascan/votascan/pkg/retry"
	"go.uber.org/zap"
)

// Client wraps a ClickHouse connection with the helpers the store layer
// needs. Reads against ReplacingMergeTree tables must go through FINAL to
// see the latest version of a row; the store layer owns that.
type Client struct {
	Logger *zap.Logger
	Db     driver.Conn
}

// New opens a ClickHouse connection from a DSN
// (e.g. "clickhouse://localhost:9000?sslmode=disable") and pings it with
// backoff so a cold-started database does not fail the run.
func New(ctx context.Context, logger *zap.Logger, dsn, database string) (Client, error) {
	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return Client{}, fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	if database != "" {
		options.Auth.Database = database
	}
	options.DialTimeout = 30 * time.Second
	options.MaxOpenConns = 10
	options.MaxIdleConns = 5
	options.ConnMaxLifetime = time.Hour
	if options.Compression == nil {
		options.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}

	client := Client{Logger: logger}

	connCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	err = retry.WithBackoff(connCtx, retry.DefaultConfig(), logger, "clickhouse_connection", func() error {
		conn, err := clickhouse.Open(options)
		if err != nil {
			return fmt.Errorf("open clickhouse connection: %w", err)
		}
		if err := conn.Ping(connCtx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("ping clickhouse: %w", err)
		}
		client.Db = conn
		return nil
	})
	if err != nil {
		return Client{}, err
	}

	logger.Info("ClickHouse connection established",
		zap.String("database", options.Auth.Database),
		zap.Strings("addr", options.Addr))
	return client, nil
}

// Exec executes a raw SQL statement.
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.Db.Exec(ctx, query, args...)
}

// QueryRow queries a single row.
func (c *Client) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return c.Db.QueryRow(ctx, query, args...)
}

// Query queries multiple rows.
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return c.Db.Query(ctx, query, args...)
}

// PrepareBatch prepares a batch insert.
func (c *Client) PrepareBatch(ctx context.Context, query string) (driver.Batch, error) {
	return c.Db.PrepareBatch(ctx, query)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.Db.Close()
}

// CreateDbIfNotExists ensures the target database exists.
func (c *Client) CreateDbIfNotExists(ctx context.Context, dbName string) error {
	query := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s ENGINE = Atomic", dbName)
	c.Logger.Info("Ensuring database exists", zap.String("database", dbName))
	return c.Exec(ctx, query)
}

// IsNoRows reports whether err is the driver's empty-result error.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
