package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap"
)

// circuitNames maps the contract's circuit_type field to the proving circuit
// family. circuit_type "0" is the default when the template omits it.
var circuitNames = map[string]string{
	"0": "MACI-1P1V",
	"1": "MACI-QV",
}

// CircuitName formats the full circuit identifier:
// `<family>_<stateTreeDepth>-<intStateTreeDepth>-<voteOptionTreeDepth>-<messageBatchSize>`.
func CircuitName(circuitType string, p types.CircuitParams) string {
	power := fmt.Sprintf("%s-%s-%s-%s",
		p.StateTreeDepth, p.IntStateTreeDepth, p.VoteOptionTreeDepth, p.MessageBatchSize)
	return fmt.Sprintf("%s_%s", circuitNames[circuitType], power)
}

// emptyVoteOptionMap builds the JSON array of n empty option labels the
// round starts with. The size is fixed at creation.
func emptyVoteOptionMap(n uint64) string {
	labels := make([]string, n)
	out, _ := json.Marshal(labels)
	return string(out)
}

// HandleInstantiate processes one contract instantiation. Only allow-listed
// template ids become rounds; every other instantiation on the chain is
// ignored without a trace. Creates the Round with its denomination-scoped
// sequence number and records the deploy transaction.
func (ix *Indexer) HandleInstantiate(ctx context.Context, inst *types.Instantiate) error {
	if _, ok := ix.codeIDs[inst.CodeID]; !ok {
		ix.metrics.ItemSkipped()
		return nil
	}

	contract, err := instantiatedContract(inst.Tx)
	if err != nil {
		return err
	}

	votingStart, votingEnd := "0", "0"
	if vt := inst.Msg.VotingTime; vt != nil {
		if vt.StartTime != nil {
			votingStart = *vt.StartTime
		}
		if vt.EndTime != nil {
			votingEnd = *vt.EndTime
		}
	}

	circuitType := inst.Msg.CircuitType
	if circuitType == "" {
		circuitType = "0"
	}
	params := inst.Msg.Parameters
	circuitPower := fmt.Sprintf("%s-%s-%s-%s",
		params.StateTreeDepth, params.IntStateTreeDepth, params.VoteOptionTreeDepth, params.MessageBatchSize)

	maxVoteOptions, err := strconv.ParseUint(inst.Msg.MaxVoteOptions, 10, 64)
	if err != nil {
		return fmt.Errorf("parse max_vote_options %q: %w", inst.Msg.MaxVoteOptions, err)
	}

	// The count is taken once, here; the resulting number is frozen into the
	// round. Ingestion is sequential per chain, so two creations can never
	// interleave within one run.
	existing, err := ix.store.CountRoundsByDenom(ctx, ix.denom)
	if err != nil {
		return fmt.Errorf("count rounds for %s: %w", ix.denom, err)
	}
	roundID := strconv.FormatUint(existing+1, 10)

	state := InitialState
	round := &types.Round{
		ID:                 contract,
		BlockHeight:        inst.Tx.BlockHeight,
		TxHash:             inst.Tx.Hash,
		Timestamp:          inst.Tx.Timestamp(),
		Operator:           inst.Sender,
		ContractAddress:    contract,
		RoundID:            roundID,
		RoundTitle:         inst.Msg.RoundInfo.Title,
		RoundDescription:   inst.Msg.RoundInfo.Description,
		RoundLink:          inst.Msg.RoundInfo.Link,
		CircuitName:        CircuitName(circuitType, params),
		CircuitType:        circuitType,
		CircuitPower:       circuitPower,
		CoordinatorPubkeyX: inst.Msg.Coordinator.X,
		CoordinatorPubkeyY: inst.Msg.Coordinator.Y,
		VotingStart:        votingStart,
		VotingEnd:          votingEnd,
		Status:             state.Status,
		Period:             state.Period,
		ActionType:         types.OpDeploy,
		VoteOptionMap:      emptyVoteOptionMap(maxVoteOptions),
		Results:            "[]",
		AllResult:          "0",
		Denom:              ix.denom,
		GasStationEnable:   false,
		TotalGrant:         "0",
		BaseGrant:          "0",
		TotalBond:          "0",
	}

	if err := ix.store.SaveRound(ctx, round); err != nil {
		return fmt.Errorf("save round %s: %w", contract, err)
	}
	ix.metrics.RecordSaved("round")
	ix.notifier.RoundCreated(ctx, round)

	ix.logger.Info("Round created",
		zap.Uint64("height", inst.Tx.BlockHeight),
		zap.String("contract", contract),
		zap.String("roundId", roundID),
		zap.String("circuit", round.CircuitName),
		zap.String("title", round.RoundTitle))

	return ix.recordTransaction(ctx, round, inst.Tx, inst.Sender, types.OpDeploy)
}

// instantiatedContract pulls the new contract's address from the
// instantiate-typed transaction event. Required: without it there is no key
// for the round.
func instantiatedContract(tx types.TxContext) (string, error) {
	for _, ev := range tx.Events {
		if ev.Type != "instantiate" {
			continue
		}
		if addr, ok := Attributes(ev.Attributes).Lookup("_contract_address"); ok {
			return addr, nil
		}
		break
	}
	return "", fmt.Errorf("%w: _contract_address in instantiate event of tx %s", ErrMissingAttribute, tx.Hash)
}
