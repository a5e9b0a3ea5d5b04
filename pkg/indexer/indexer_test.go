package indexer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/indexer"
	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap/zaptest"
)

const (
	testDenom    = "peaka"
	testCodeID   = uint64(42)
	testContract = "dora1round1contract"
	testOperator = "dora1operator"
)

var testBlockTime = time.UnixMilli(1700000000123).UTC()

func newTestIndexer(t *testing.T) (*indexer.Indexer, *rounds.Memory) {
	t.Helper()
	store := rounds.NewMemory()
	ix := indexer.New(store, zaptest.NewLogger(t), nil, nil, indexer.Options{
		CodeIDs: []uint64{testCodeID},
		Denom:   testDenom,
	})
	return ix, store
}

// feedTx builds a transaction envelope. An empty fee leaves the tx-typed
// event out entirely, which is how a fee-less transaction arrives in practice.
func feedTx(height uint64, hash, fee string) types.TxContext {
	tx := types.TxContext{
		Hash:        hash,
		BlockHeight: height,
		BlockTime:   testBlockTime,
		GasUsed:     85000,
		GasWanted:   100000,
	}
	if fee != "" {
		tx.Events = []types.TxEvent{
			{Type: "tx", Attributes: []types.Attribute{{Key: "fee", Value: fee}}},
		}
	}
	return tx
}

func newInstantiate(codeID uint64, contract string) *types.Instantiate {
	start, end := "1700000100000", "1700000200000"
	tx := feedTx(100, "AB12DEPLOY", "20000peaka")
	tx.Events = append(tx.Events, types.TxEvent{
		Type:       "instantiate",
		Attributes: []types.Attribute{{Key: "_contract_address", Value: contract}},
	})
	return &types.Instantiate{
		Tx:     tx,
		CodeID: codeID,
		Sender: testOperator,
		Msg: types.InstantiateMsg{
			RoundInfo:      types.RoundInfo{Title: "Community Grants", Description: "Q3 grants", Link: "https://example.org"},
			VotingTime:     &types.VotingTime{StartTime: &start, EndTime: &end},
			Coordinator:    types.CoordinatorPubKey{X: "111", Y: "222"},
			MaxVoteOptions: "3",
			CircuitType:    "0",
			Parameters: types.CircuitParams{
				StateTreeDepth:      "2",
				IntStateTreeDepth:   "1",
				VoteOptionTreeDepth: "1",
				MessageBatchSize:    "5",
			},
		},
	}
}

// createRound seeds one round through the real instantiate path so derived
// fields (round id, circuit name, defaults) are populated consistently.
func createRound(t *testing.T, ix *indexer.Indexer, store *rounds.Memory) *types.Round {
	t.Helper()
	require.NoError(t, ix.HandleInstantiate(context.Background(), newInstantiate(testCodeID, testContract)))
	round, err := store.GetRound(context.Background(), testContract)
	require.NoError(t, err)
	require.NotNil(t, round)
	return round
}

func contractEvent(tx types.TxContext, action string, extra ...types.Attribute) *types.Event {
	attrs := []types.Attribute{
		{Key: "_contract_address", Value: testContract},
		{Key: "action", Value: action},
	}
	return &types.Event{Tx: tx, MsgIndex: 0, Index: 2, Attributes: append(attrs, extra...)}
}

func TestHandleMessage_UnknownContractLeavesNoTrace(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()

	msg := &types.Message{
		Tx:       feedTx(200, "CAFE01", "20000peaka"),
		Contract: "dora1unknown",
		Sender:   "dora1voter",
		Action:   types.ActionSignUp,
	}
	require.NoError(t, ix.HandleMessage(ctx, msg))

	round, err := store.GetRound(ctx, "dora1unknown")
	require.NoError(t, err)
	assert.Nil(t, round)
	assert.Nil(t, store.GetTransaction("CAFE01"))
}

func TestHandleMessage_AdvancesLifecycleAndRecordsTransaction(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()
	createRound(t, ix, store)

	msg := &types.Message{
		Tx:       feedTx(201, "CAFE02", "15000peaka"),
		Contract: testContract,
		Sender:   testOperator,
		Action:   types.ActionStartVoting,
	}
	require.NoError(t, ix.HandleMessage(ctx, msg))

	round, err := store.GetRound(ctx, testContract)
	require.NoError(t, err)
	require.NotNil(t, round)
	assert.Equal(t, types.PeriodVoting, round.Period)
	assert.Equal(t, types.RoundOngoing, round.Status)

	tx := store.GetTransaction("CAFE02")
	require.NotNil(t, tx)
	assert.Equal(t, types.OpStartVoting, tx.Type)
	assert.Equal(t, types.TxSuccess, tx.Status)
	assert.Equal(t, "15000peaka", tx.Fee)
	assert.Equal(t, round.RoundID, tx.RoundID)
	assert.Equal(t, round.CircuitName, tx.CircuitName)
	assert.Equal(t, testOperator, tx.Caller)
}

func TestHandleMessage_UnlistedActionRecordsWithoutTransition(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()
	createRound(t, ix, store)

	msg := &types.Message{
		Tx:       feedTx(202, "CAFE03", "15000peaka"),
		Contract: testContract,
		Sender:   testOperator,
		Action:   types.ActionGrant,
	}
	require.NoError(t, ix.HandleMessage(ctx, msg))

	round, err := store.GetRound(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, types.PeriodPending, round.Period)
	assert.Equal(t, types.RoundCreated, round.Status)

	tx := store.GetTransaction("CAFE03")
	require.NotNil(t, tx)
	assert.Equal(t, types.OpEnableGasStation, tx.Type)
}

func TestHandleMessage_MissingFeeFallsBackToSentinel(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()
	createRound(t, ix, store)

	msg := &types.Message{
		Tx:       feedTx(203, "CAFE04", ""),
		Contract: testContract,
		Sender:   testOperator,
		Action:   types.ActionSignUp,
	}
	require.NoError(t, ix.HandleMessage(ctx, msg))

	tx := store.GetTransaction("CAFE04")
	require.NotNil(t, tx)
	assert.Equal(t, "0peaka", tx.Fee)
	assert.Equal(t, types.TxFail, tx.Status)
}

func TestHandleEvent_UnknownContractSkipped(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()

	ev := &types.Event{
		Tx:       feedTx(300, "BEEF01", "20000peaka"),
		MsgIndex: 0,
		Index:    1,
		Attributes: []types.Attribute{
			{Key: "_contract_address", Value: "dora1unknown"},
			{Key: "action", Value: types.ActionSignUp},
			{Key: "state_idx", Value: "0"},
			{Key: "pubkey", Value: "pk"},
			{Key: "balance", Value: "10"},
		},
	}
	require.NoError(t, ix.HandleEvent(ctx, ev))
	assert.Equal(t, 0, store.CountSignUps())
}

func TestHandleEvent_MissingContractAddressSkipped(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()
	createRound(t, ix, store)

	ev := &types.Event{
		Tx:         feedTx(301, "BEEF02", "20000peaka"),
		Attributes: []types.Attribute{{Key: "action", Value: types.ActionSignUp}},
	}
	require.NoError(t, ix.HandleEvent(ctx, ev))
	assert.Equal(t, 0, store.CountSignUps())
}

func TestHandleEvent_UnrecognizedActionIsNoOp(t *testing.T) {
	ix, store := newTestIndexer(t)
	ctx := context.Background()
	before := createRound(t, ix, store)

	ev := contractEvent(feedTx(302, "BEEF03", "20000peaka"), "upgrade_contract")
	require.NoError(t, ix.HandleEvent(ctx, ev))

	after, err := store.GetRound(ctx, testContract)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
