package rounds_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/indexer/types"
)

func TestMemory_GetRoundAbsentIsNilNil(t *testing.T) {
	store := rounds.NewMemory()
	round, err := store.GetRound(context.Background(), "dora1nope")
	require.NoError(t, err)
	assert.Nil(t, round)
}

func TestMemory_SaveRoundUpsertsByID(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", RoundTitle: "first", Denom: "peaka"}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", RoundTitle: "second", Denom: "peaka"}))

	round, err := store.GetRound(ctx, "dora1a")
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, "second", round.RoundTitle)

	count, err := store.CountRoundsByDenom(ctx, "peaka")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMemory_GetRoundReturnsDetachedCopy(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", RoundTitle: "stored"}))

	round, err := store.GetRound(ctx, "dora1a")
	require.NoError(t, err)
	round.RoundTitle = "mutated locally"

	again, err := store.GetRound(ctx, "dora1a")
	require.NoError(t, err)
	assert.Equal(t, "stored", again.RoundTitle)
}

func TestMemory_CountRoundsByDenom(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", Denom: "peaka"}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1b", Denom: "peaka"}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1c", Denom: "uatom"}))

	count, err := store.CountRoundsByDenom(ctx, "peaka")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	count, err = store.CountRoundsByDenom(ctx, "uatom")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	count, err = store.CountRoundsByDenom(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestMemory_ListRoundsOrderedWithLimit(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1c", BlockHeight: 300}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", BlockHeight: 100}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1b", BlockHeight: 200}))

	all, err := store.ListRounds(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "dora1a", all[0].ID)
	assert.Equal(t, "dora1b", all[1].ID)
	assert.Equal(t, "dora1c", all[2].ID)

	limited, err := store.ListRounds(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "dora1a", limited[0].ID)
}

func TestMemory_TransactionsByContract(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx2", BlockHeight: 20, ContractAddress: "dora1a"}))
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx1", BlockHeight: 10, ContractAddress: "dora1a"}))
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx3", BlockHeight: 30, ContractAddress: "dora1b"}))

	txs, err := store.ListTransactionsByContract(ctx, "dora1a", 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx1", txs[0].ID)
	assert.Equal(t, "tx2", txs[1].ID)

	txs, err = store.ListTransactionsByContract(ctx, "dora1c", 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestMemory_LatestHeight(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	height, err := store.LatestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), height)

	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx1", BlockHeight: 10}))
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx2", BlockHeight: 42}))

	height, err = store.LatestHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), height)
}

func TestMemory_EventRecordsUpsertByID(t *testing.T) {
	store := rounds.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.SaveSignUp(ctx, &types.SignUpEvent{ID: "tx-0-0", StateIdx: 1}))
	require.NoError(t, store.SaveSignUp(ctx, &types.SignUpEvent{ID: "tx-0-0", StateIdx: 2}))
	assert.Equal(t, 1, store.CountSignUps())
	assert.Equal(t, uint64(2), store.GetSignUp("tx-0-0").StateIdx)

	require.NoError(t, store.SavePublishMessage(ctx, &types.PublishMessageEvent{ID: "tx-0-1", Message: "m"}))
	assert.Equal(t, "m", store.GetPublishMessage("tx-0-1").Message)
	assert.Nil(t, store.GetPublishMessage("tx-9-9"))

	require.NoError(t, store.SaveProcessProof(ctx, &types.ProcessProof{ID: "tx-0-2", ActionType: types.ProofPhaseTally}))
	assert.Equal(t, types.ProofPhaseTally, store.GetProcessProof("tx-0-2").ActionType)
}
