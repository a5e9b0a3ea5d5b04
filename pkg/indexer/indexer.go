package indexer

import (
	"context"
	"fmt"

	"github.com/votascan/votascan/pkg/db/rounds"
	"github.com/votascan/votascan/pkg/indexer/types"
	"github.com/votascan/votascan/pkg/metrics"
	"github.com/votascan/votascan/pkg/notify"
	"go.uber.org/zap"
)

// Indexer derives the off-chain view of voting rounds from the ordered feed
// of decoded messages and events. Handlers are dispatched one item at a time
// in chain order and run to completion, store writes included, before the
// next item; there is never more than one in-flight mutation per entity.
type Indexer struct {
	store    rounds.Store
	logger   *zap.Logger
	metrics  *metrics.Metrics
	notifier *notify.Notifier

	// codeIDs is the allow-list of contract template ids whose
	// instantiations are indexed as rounds.
	codeIDs map[uint64]struct{}
	// denom is the settlement denomination, fixed per deployment.
	denom string
}

// Options carries the per-deployment configuration of the pipeline.
type Options struct {
	// CodeIDs are the known-compatible contract template identifiers.
	CodeIDs []uint64
	// Denom is the settlement denomination (also the fee sentinel suffix).
	Denom string
}

// New builds an Indexer. Metrics and notifier may be nil.
func New(store rounds.Store, logger *zap.Logger, m *metrics.Metrics, n *notify.Notifier, opts Options) *Indexer {
	allow := make(map[uint64]struct{}, len(opts.CodeIDs))
	for _, id := range opts.CodeIDs {
		allow[id] = struct{}{}
	}
	return &Indexer{
		store:    store,
		logger:   logger,
		metrics:  m,
		notifier: n,
		codeIDs:  allow,
		denom:    opts.Denom,
	}
}

// HandleMessage processes one decoded execute message: advances the round's
// lifecycle state and records the transaction. Messages targeting contracts
// without a Round record are skipped entirely; untracked contracts leave no
// trace, not even a transaction.
func (ix *Indexer) HandleMessage(ctx context.Context, msg *types.Message) error {
	round, err := ix.store.GetRound(ctx, msg.Contract)
	if err != nil {
		return fmt.Errorf("get round %s: %w", msg.Contract, err)
	}
	if round == nil {
		ix.metrics.ItemSkipped()
		return nil
	}

	before := State{Period: round.Period, Status: round.Status}
	after := Transition(before, msg.Action)
	if after != before {
		round.Period = after.Period
		round.Status = after.Status
		if err := ix.store.SaveRound(ctx, round); err != nil {
			return fmt.Errorf("save round %s: %w", round.ID, err)
		}
		ix.notifier.RoundUpdated(ctx, round)
		ix.logger.Info("Round lifecycle advanced",
			zap.String("contract", round.ContractAddress),
			zap.String("action", msg.Action),
			zap.String("period", string(after.Period)),
			zap.String("status", string(after.Status)))
	}

	if err := ix.recordTransaction(ctx, round, msg.Tx, msg.Sender, OperationFor(msg.Action)); err != nil {
		return err
	}

	ix.metrics.MessageProcessed()
	ix.metrics.Height(msg.Tx.BlockHeight)
	return nil
}

// eventHandler applies one recognized contract event to the round's
// projections. Handlers mutate the round in place or write side-records
// through the store.
type eventHandler func(ix *Indexer, ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error

// eventHandlers routes the `action` attribute to its projection. Actions
// outside the table are no-ops.
var eventHandlers = map[string]eventHandler{
	types.ActionSignUp:         (*Indexer).projectSignUp,
	types.ActionPublishMessage: (*Indexer).projectPublishMessage,
	types.ActionSetRoundInfo:   (*Indexer).projectRoundInfo,
	types.ActionStartVoting:    (*Indexer).projectVotingStart,
	types.ActionStopVoting:     (*Indexer).projectVotingEnd,
	types.ActionProcessMessage: (*Indexer).projectMessageProof,
	types.ActionProcessTally:   (*Indexer).projectTallyProof,
	types.ActionSetVoteOption:  (*Indexer).projectVoteOptionMap,
	types.ActionStopTallying:   (*Indexer).projectTallyResults,
	types.ActionGrant:          (*Indexer).projectGrant,
	types.ActionRevoke:         (*Indexer).projectRevoke,
	types.ActionBond:           (*Indexer).projectBond,
	types.ActionWithdraw:       (*Indexer).projectWithdraw,
}

// HandleEvent processes one contract-emitted event. Both the target contract
// and the action travel in the attribute list; events for contracts without
// a Round record, and unrecognized actions, are no-ops.
func (ix *Indexer) HandleEvent(ctx context.Context, ev *types.Event) error {
	attrs := Attributes(ev.Attributes)

	contract, ok := attrs.Lookup("_contract_address")
	if !ok {
		ix.metrics.ItemSkipped()
		return nil
	}
	round, err := ix.store.GetRound(ctx, contract)
	if err != nil {
		return fmt.Errorf("get round %s: %w", contract, err)
	}
	if round == nil {
		ix.metrics.ItemSkipped()
		return nil
	}

	action := attrs.GetOr("action", "")
	handler, ok := eventHandlers[action]
	if !ok {
		return nil
	}
	if err := handler(ix, ctx, ev, attrs, round); err != nil {
		return fmt.Errorf("project %s event in tx %s: %w", action, ev.Tx.Hash, err)
	}

	ix.metrics.EventProcessed()
	ix.metrics.Height(ev.Tx.BlockHeight)
	return nil
}
