package rounds

import (
	"context"

	"github.com/votascan/votascan/pkg/indexer/types"
)

// Store is the entity store the ingestion pipeline writes through and the
// query API reads from. Save is upsert-by-id for every entity. Get returns
// (nil, nil) when the entity does not exist; the dispatcher gates on that.
//
// Implementations: DB (ClickHouse, durable) and Memory (in-process, used by
// unit tests and offline replays).
type Store interface {
	GetRound(ctx context.Context, contractAddress string) (*types.Round, error)
	SaveRound(ctx context.Context, round *types.Round) error
	// CountRoundsByDenom backs denomination-scoped round numbering at
	// creation time. The result is frozen into the new round; it is never
	// recomputed afterwards.
	CountRoundsByDenom(ctx context.Context, denom string) (uint64, error)
	ListRounds(ctx context.Context, limit int) ([]*types.Round, error)

	SaveTransaction(ctx context.Context, tx *types.Transaction) error
	ListTransactionsByContract(ctx context.Context, contractAddress string, limit int) ([]*types.Transaction, error)
	// LatestHeight reports the highest block height of any recorded
	// transaction, the pipeline's ingestion watermark.
	LatestHeight(ctx context.Context) (uint64, error)

	SaveSignUp(ctx context.Context, ev *types.SignUpEvent) error
	SavePublishMessage(ctx context.Context, ev *types.PublishMessageEvent) error
	SaveProcessProof(ctx context.Context, ev *types.ProcessProof) error

	Close() error
}
