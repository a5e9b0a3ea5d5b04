package rounds

import (
	"context"
	"sort"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/votascan/votascan/pkg/indexer/types"
)

// Memory is an in-process Store. It backs unit tests and offline replays;
// the durable deployment uses DB. Save semantics match DB: upsert by id,
// second write overwrites the first.
type Memory struct {
	rounds          *xsync.Map[string, *types.Round]
	transactions    *xsync.Map[string, *types.Transaction]
	signUps         *xsync.Map[string, *types.SignUpEvent]
	publishMessages *xsync.Map[string, *types.PublishMessageEvent]
	proofs          *xsync.Map[string, *types.ProcessProof]
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rounds:          xsync.NewMap[string, *types.Round](),
		transactions:    xsync.NewMap[string, *types.Transaction](),
		signUps:         xsync.NewMap[string, *types.SignUpEvent](),
		publishMessages: xsync.NewMap[string, *types.PublishMessageEvent](),
		proofs:          xsync.NewMap[string, *types.ProcessProof](),
	}
}

func (m *Memory) GetRound(ctx context.Context, contractAddress string) (*types.Round, error) {
	round, ok := m.rounds.Load(contractAddress)
	if !ok {
		return nil, nil
	}
	// Copy so callers mutate their own view until they Save.
	clone := *round
	return &clone, nil
}

func (m *Memory) SaveRound(ctx context.Context, round *types.Round) error {
	clone := *round
	m.rounds.Store(round.ID, &clone)
	return nil
}

func (m *Memory) CountRoundsByDenom(ctx context.Context, denom string) (uint64, error) {
	var count uint64
	m.rounds.Range(func(_ string, round *types.Round) bool {
		if round.Denom == denom {
			count++
		}
		return true
	})
	return count, nil
}

func (m *Memory) ListRounds(ctx context.Context, limit int) ([]*types.Round, error) {
	out := make([]*types.Round, 0)
	m.rounds.Range(func(_ string, round *types.Round) bool {
		clone := *round
		out = append(out, &clone)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BlockHeight < out[j].BlockHeight })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) SaveTransaction(ctx context.Context, tx *types.Transaction) error {
	clone := *tx
	m.transactions.Store(tx.ID, &clone)
	return nil
}

func (m *Memory) ListTransactionsByContract(ctx context.Context, contractAddress string, limit int) ([]*types.Transaction, error) {
	out := make([]*types.Transaction, 0)
	m.transactions.Range(func(_ string, tx *types.Transaction) bool {
		if tx.ContractAddress == contractAddress {
			clone := *tx
			out = append(out, &clone)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BlockHeight < out[j].BlockHeight })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) LatestHeight(ctx context.Context) (uint64, error) {
	var max uint64
	m.transactions.Range(func(_ string, tx *types.Transaction) bool {
		if tx.BlockHeight > max {
			max = tx.BlockHeight
		}
		return true
	})
	return max, nil
}

func (m *Memory) SaveSignUp(ctx context.Context, ev *types.SignUpEvent) error {
	clone := *ev
	m.signUps.Store(ev.ID, &clone)
	return nil
}

func (m *Memory) SavePublishMessage(ctx context.Context, ev *types.PublishMessageEvent) error {
	clone := *ev
	m.publishMessages.Store(ev.ID, &clone)
	return nil
}

func (m *Memory) SaveProcessProof(ctx context.Context, ev *types.ProcessProof) error {
	clone := *ev
	m.proofs.Store(ev.ID, &clone)
	return nil
}

func (m *Memory) Close() error { return nil }

// GetSignUp returns a stored sign-up record by id, nil when absent.
// Test helper; the pipeline itself never reads these back.
func (m *Memory) GetSignUp(id string) *types.SignUpEvent {
	ev, _ := m.signUps.Load(id)
	return ev
}

// GetPublishMessage returns a stored vote-message record by id, nil when absent.
func (m *Memory) GetPublishMessage(id string) *types.PublishMessageEvent {
	ev, _ := m.publishMessages.Load(id)
	return ev
}

// GetProcessProof returns a stored proof record by id, nil when absent.
func (m *Memory) GetProcessProof(id string) *types.ProcessProof {
	ev, _ := m.proofs.Load(id)
	return ev
}

// GetTransaction returns a stored transaction by hash, nil when absent.
func (m *Memory) GetTransaction(id string) *types.Transaction {
	tx, _ := m.transactions.Load(id)
	return tx
}

// CountSignUps reports how many sign-up records are stored.
func (m *Memory) CountSignUps() int {
	return m.signUps.Size()
}
