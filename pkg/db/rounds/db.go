package rounds

import (
	"context"
	"fmt"

	"github.com/votascan/votascan/pkg/db/clickhouse"
	"go.uber.org/zap"
)

// DB is the durable ClickHouse-backed Store. Every entity table is a
// ReplacingMergeTree ordered by the entity id with a version column, so an
// insert with an existing id is an upsert: FINAL reads resolve to the latest
// version. That is exactly the save contract the pipeline needs.
type DB struct {
	clickhouse.Client
	Name string
}

var _ Store = (*DB)(nil)

// New connects to ClickHouse and ensures the database and entity tables
// exist.
func New(ctx context.Context, logger *zap.Logger, dsn, database string) (*DB, error) {
	if database == "" {
		database = "votascan"
	}

	client, err := clickhouse.New(ctx, logger.With(zap.String("db", database)), dsn, "")
	if err != nil {
		return nil, err
	}

	db := &DB{Client: client, Name: database}
	if err := db.InitializeDB(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return db, nil
}

// InitializeDB creates the database and all entity tables if absent.
func (db *DB) InitializeDB(ctx context.Context) error {
	if err := db.CreateDbIfNotExists(ctx, db.Name); err != nil {
		return fmt.Errorf("create database %s: %w", db.Name, err)
	}

	initOps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"rounds", db.initRounds},
		{"transactions", db.initTransactions},
		{"signup_events", db.initSignUpEvents},
		{"publish_message_events", db.initPublishMessageEvents},
		{"process_proofs", db.initProcessProofs},
	}
	for _, op := range initOps {
		if err := op.fn(ctx); err != nil {
			return fmt.Errorf("init %s: %w", op.name, err)
		}
	}

	db.Logger.Info("Store tables ready", zap.String("database", db.Name))
	return nil
}
