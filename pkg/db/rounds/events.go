package rounds

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/votascan/votascan/pkg/indexer/types"
)

// Event projections are append-only; the ReplacingMergeTree engine only
// matters on redelivery, where the second write for an id overwrites the
// first. The pipeline does not guard against that, per the at-most-once
// delivery assumption on the feed.

func (db *DB) initSignUpEvents(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".signup_events (
			id String,
			block_height UInt64,
			timestamp String,
			tx_hash String,
			state_idx UInt64,
			pub_key String,
			balance String,
			contract_address String
		) ENGINE = ReplacingMergeTree(block_height)
		ORDER BY id
	`, db.Name)
	return db.Exec(ctx, query)
}

// SaveSignUp writes one sign-up record.
func (db *DB) SaveSignUp(ctx context.Context, ev *types.SignUpEvent) error {
	query := fmt.Sprintf(`INSERT INTO "%s".signup_events (
		id, block_height, timestamp, tx_hash, state_idx, pub_key, balance, contract_address
	) VALUES`, db.Name)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) { _ = batch.Abort() }(batch)

	if err := batch.Append(
		ev.ID,
		ev.BlockHeight,
		ev.Timestamp,
		ev.TxHash,
		ev.StateIdx,
		ev.PubKey,
		ev.Balance,
		ev.ContractAddress,
	); err != nil {
		return err
	}
	return batch.Send()
}

func (db *DB) initPublishMessageEvents(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".publish_message_events (
			id String,
			block_height UInt64,
			timestamp String,
			tx_hash String,
			msg_chain_length UInt64,
			message String CODEC(ZSTD(1)),
			enc_pub_key String,
			contract_address String
		) ENGINE = ReplacingMergeTree(block_height)
		ORDER BY id
	`, db.Name)
	return db.Exec(ctx, query)
}

// SavePublishMessage writes one encrypted-vote-message record.
func (db *DB) SavePublishMessage(ctx context.Context, ev *types.PublishMessageEvent) error {
	query := fmt.Sprintf(`INSERT INTO "%s".publish_message_events (
		id, block_height, timestamp, tx_hash, msg_chain_length, message, enc_pub_key, contract_address
	) VALUES`, db.Name)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) { _ = batch.Abort() }(batch)

	if err := batch.Append(
		ev.ID,
		ev.BlockHeight,
		ev.Timestamp,
		ev.TxHash,
		ev.MsgChainLength,
		ev.Message,
		ev.EncPubKey,
		ev.ContractAddress,
	); err != nil {
		return err
	}
	return batch.Send()
}

func (db *DB) initProcessProofs(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".process_proofs (
			id String,
			block_height UInt64,
			timestamp String,
			tx_hash String,
			action_type LowCardinality(String),
			pi_a String CODEC(ZSTD(1)),
			pi_b String CODEC(ZSTD(1)),
			pi_c String CODEC(ZSTD(1)),
			commitment String,
			contract_address String
		) ENGINE = ReplacingMergeTree(block_height)
		ORDER BY id
	`, db.Name)
	return db.Exec(ctx, query)
}

// SaveProcessProof writes one proof-confirmation record.
func (db *DB) SaveProcessProof(ctx context.Context, ev *types.ProcessProof) error {
	query := fmt.Sprintf(`INSERT INTO "%s".process_proofs (
		id, block_height, timestamp, tx_hash, action_type, pi_a, pi_b, pi_c, commitment, contract_address
	) VALUES`, db.Name)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) { _ = batch.Abort() }(batch)

	if err := batch.Append(
		ev.ID,
		ev.BlockHeight,
		ev.Timestamp,
		ev.TxHash,
		ev.ActionType,
		ev.PiA,
		ev.PiB,
		ev.PiC,
		ev.Commitment,
		ev.ContractAddress,
	); err != nil {
		return err
	}
	return batch.Send()
}
