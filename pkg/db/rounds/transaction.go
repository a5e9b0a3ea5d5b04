package rounds

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/votascan/votascan/pkg/db/clickhouse"
	"github.com/votascan/votascan/pkg/indexer/types"
)

const transactionColumns = `id, block_height, tx_hash, timestamp, type, status,
	round_id, circuit_name, fee, gas_used, gas_wanted, caller, contract_address`

// initTransactions creates the transactions table. Records are immutable,
// but ReplacingMergeTree on block_height keeps redelivery harmless: the same
// hash collapses to one row.
func (db *DB) initTransactions(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".transactions (
			id String,
			block_height UInt64,
			tx_hash String,
			timestamp String,
			type LowCardinality(String),
			status LowCardinality(String),
			round_id String,
			circuit_name LowCardinality(String),
			fee String,
			gas_used UInt64,
			gas_wanted UInt64,
			caller String,
			contract_address String
		) ENGINE = ReplacingMergeTree(block_height)
		ORDER BY id
	`, db.Name)
	return db.Exec(ctx, query)
}

// SaveTransaction writes one transaction record.
func (db *DB) SaveTransaction(ctx context.Context, tx *types.Transaction) error {
	query := fmt.Sprintf(`INSERT INTO "%s".transactions (%s) VALUES`, db.Name, transactionColumns)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) { _ = batch.Abort() }(batch)

	if err := batch.Append(
		tx.ID,
		tx.BlockHeight,
		tx.TxHash,
		tx.Timestamp,
		tx.Type,
		string(tx.Status),
		tx.RoundID,
		tx.CircuitName,
		tx.Fee,
		tx.GasUsed,
		tx.GasWanted,
		tx.Caller,
		tx.ContractAddress,
	); err != nil {
		return err
	}
	return batch.Send()
}

// ListTransactionsByContract returns a contract's transactions in chain order.
func (db *DB) ListTransactionsByContract(ctx context.Context, contractAddress string, limit int) ([]*types.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`
		SELECT %s FROM "%s".transactions FINAL
		WHERE contract_address = ?
		ORDER BY block_height
		LIMIT ?
	`, transactionColumns, db.Name)
	rows, err := db.Query(ctx, query, contractAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", contractAddress, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*types.Transaction, 0)
	for rows.Next() {
		var (
			tx     types.Transaction
			status string
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.BlockHeight,
			&tx.TxHash,
			&tx.Timestamp,
			&tx.Type,
			&status,
			&tx.RoundID,
			&tx.CircuitName,
			&tx.Fee,
			&tx.GasUsed,
			&tx.GasWanted,
			&tx.Caller,
			&tx.ContractAddress,
		); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		tx.Status = types.TxStatus(status)
		out = append(out, &tx)
	}
	return out, rows.Err()
}

// LatestHeight reports the ingestion watermark: the highest block height of
// any recorded transaction.
func (db *DB) LatestHeight(ctx context.Context) (uint64, error) {
	query := fmt.Sprintf(`SELECT max(block_height) FROM "%s".transactions`, db.Name)
	var height uint64
	if err := db.QueryRow(ctx, query).Scan(&height); err != nil {
		if clickhouse.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("latest height: %w", err)
	}
	return height, nil
}
