package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/votascan/votascan/app/query/controller"
	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) (*httptest.Server, *rounds.Memory) {
	t.Helper()
	store := rounds.NewMemory()
	srv := httptest.NewServer(controller.New(store, zaptest.NewLogger(t)).NewRouter())
	t.Cleanup(srv.Close)
	return srv, store
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	code := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestProgress(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.SaveTransaction(context.Background(), &types.Transaction{ID: "tx1", BlockHeight: 77}))

	var body map[string]uint64
	code := getJSON(t, srv.URL+"/progress", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(77), body["height"])
}

func TestListRounds(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1b", BlockHeight: 200, RoundID: "2"}))
	require.NoError(t, store.SaveRound(ctx, &types.Round{ID: "dora1a", BlockHeight: 100, RoundID: "1"}))

	var list []*types.Round
	code := getJSON(t, srv.URL+"/rounds", &list)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, list, 2)
	assert.Equal(t, "dora1a", list[0].ID)

	code = getJSON(t, srv.URL+"/rounds?limit=1", &list)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, list, 1)
}

func TestGetRound(t *testing.T) {
	srv, store := newTestServer(t)
	require.NoError(t, store.SaveRound(context.Background(), &types.Round{
		ID:              "dora1a",
		ContractAddress: "dora1a",
		RoundTitle:      "Community Grants",
		TotalBond:       "120",
	}))

	var round types.Round
	code := getJSON(t, srv.URL+"/rounds/dora1a", &round)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Community Grants", round.RoundTitle)
	assert.Equal(t, "120", round.TotalBond)

	code = getJSON(t, srv.URL+"/rounds/dora1missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestListRoundTransactions(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx1", BlockHeight: 10, ContractAddress: "dora1a", Type: types.OpDeploy}))
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx2", BlockHeight: 11, ContractAddress: "dora1a", Type: types.OpVote}))
	require.NoError(t, store.SaveTransaction(ctx, &types.Transaction{ID: "tx3", BlockHeight: 12, ContractAddress: "dora1b", Type: types.OpVote}))

	var txs []*types.Transaction
	code := getJSON(t, srv.URL+"/rounds/dora1a/txs", &txs)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx1", txs[0].ID)
	assert.Equal(t, types.OpDeploy, txs[0].Type)
}
