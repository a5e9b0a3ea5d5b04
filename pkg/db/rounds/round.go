package rounds

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/votascan/votascan/pkg/db/clickhouse"
	"github.com/votascan/votascan/pkg/indexer/types"
)

const roundColumns = `id, block_height, tx_hash, timestamp, operator, contract_address,
	round_id, round_title, round_description, round_link,
	circuit_name, circuit_type, circuit_power,
	coordinator_pubkey_x, coordinator_pubkey_y,
	voting_start, voting_end, status, period, action_type,
	vote_option_map, results, all_result, denom,
	gas_station_enable, total_grant, base_grant, total_bond`

// initRounds creates the rounds table. ReplacingMergeTree on version makes
// SaveRound an upsert: the latest insert for an id wins under FINAL.
func (db *DB) initRounds(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s".rounds (
			id String,
			block_height UInt64,
			tx_hash String,
			timestamp String,
			operator String,
			contract_address String,
			round_id String,
			round_title String CODEC(ZSTD(1)),
			round_description String CODEC(ZSTD(1)),
			round_link String CODEC(ZSTD(1)),
			circuit_name LowCardinality(String),
			circuit_type LowCardinality(String),
			circuit_power LowCardinality(String),
			coordinator_pubkey_x String,
			coordinator_pubkey_y String,
			voting_start String,
			voting_end String,
			status LowCardinality(String),
			period LowCardinality(String),
			action_type LowCardinality(String),
			vote_option_map String CODEC(ZSTD(1)),
			results String CODEC(ZSTD(1)),
			all_result String,
			denom LowCardinality(String),
			gas_station_enable UInt8,
			total_grant String,
			base_grant String,
			total_bond String,
			version DateTime64(6)
		) ENGINE = ReplacingMergeTree(version)
		ORDER BY id
	`, db.Name)
	return db.Exec(ctx, query)
}

// SaveRound upserts one round.
func (db *DB) SaveRound(ctx context.Context, round *types.Round) error {
	query := fmt.Sprintf(`INSERT INTO "%s".rounds (%s, version) VALUES`, db.Name, roundColumns)
	batch, err := db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) { _ = batch.Abort() }(batch)

	if err := batch.Append(
		round.ID,
		round.BlockHeight,
		round.TxHash,
		round.Timestamp,
		round.Operator,
		round.ContractAddress,
		round.RoundID,
		round.RoundTitle,
		round.RoundDescription,
		round.RoundLink,
		round.CircuitName,
		round.CircuitType,
		round.CircuitPower,
		round.CoordinatorPubkeyX,
		round.CoordinatorPubkeyY,
		round.VotingStart,
		round.VotingEnd,
		string(round.Status),
		string(round.Period),
		round.ActionType,
		round.VoteOptionMap,
		round.Results,
		round.AllResult,
		round.Denom,
		boolToUInt8(round.GasStationEnable),
		round.TotalGrant,
		round.BaseGrant,
		round.TotalBond,
		time.Now().UTC(),
	); err != nil {
		return err
	}
	return batch.Send()
}

// GetRound fetches a round by contract address; (nil, nil) when absent.
func (db *DB) GetRound(ctx context.Context, contractAddress string) (*types.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM "%s".rounds FINAL WHERE id = ? LIMIT 1`, roundColumns, db.Name)
	rows, err := db.Query(ctx, query, contractAddress)
	if err != nil {
		return nil, fmt.Errorf("query round %s: %w", contractAddress, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	round, err := scanRound(rows)
	if err != nil {
		return nil, err
	}
	return round, rows.Err()
}

// CountRoundsByDenom counts distinct rounds sharing a settlement denomination.
func (db *DB) CountRoundsByDenom(ctx context.Context, denom string) (uint64, error) {
	query := fmt.Sprintf(`SELECT count() FROM "%s".rounds FINAL WHERE denom = ?`, db.Name)
	var count uint64
	if err := db.QueryRow(ctx, query, denom).Scan(&count); err != nil {
		if clickhouse.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count rounds by denom %s: %w", denom, err)
	}
	return count, nil
}

// ListRounds returns rounds ordered by creation height.
func (db *DB) ListRounds(ctx context.Context, limit int) ([]*types.Round, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT %s FROM "%s".rounds FINAL ORDER BY block_height LIMIT ?`, roundColumns, db.Name)
	rows, err := db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*types.Round, 0)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, round)
	}
	return out, rows.Err()
}

func scanRound(rows driver.Rows) (*types.Round, error) {
	var (
		round     types.Round
		status    string
		period    string
		gsEnabled uint8
	)
	if err := rows.Scan(
		&round.ID,
		&round.BlockHeight,
		&round.TxHash,
		&round.Timestamp,
		&round.Operator,
		&round.ContractAddress,
		&round.RoundID,
		&round.RoundTitle,
		&round.RoundDescription,
		&round.RoundLink,
		&round.CircuitName,
		&round.CircuitType,
		&round.CircuitPower,
		&round.CoordinatorPubkeyX,
		&round.CoordinatorPubkeyY,
		&round.VotingStart,
		&round.VotingEnd,
		&status,
		&period,
		&round.ActionType,
		&round.VoteOptionMap,
		&round.Results,
		&round.AllResult,
		&round.Denom,
		&gsEnabled,
		&round.TotalGrant,
		&round.BaseGrant,
		&round.TotalBond,
	); err != nil {
		return nil, fmt.Errorf("scan round row: %w", err)
	}
	round.Status = types.RoundStatus(status)
	round.Period = types.PeriodStatus(period)
	round.GasStationEnable = gsEnabled == 1
	return &round, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
