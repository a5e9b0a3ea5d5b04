package indexer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap"
)

// projectSignUp records a voter registration. All three attributes are
// required; a sign-up event without them means an unsupported contract
// revision.
func (ix *Indexer) projectSignUp(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	stateIdx, err := attrs.Get("state_idx")
	if err != nil {
		return err
	}
	pubKey, err := attrs.Get("pubkey")
	if err != nil {
		return err
	}
	balance, err := attrs.Get("balance")
	if err != nil {
		return err
	}
	idx, err := strconv.ParseUint(stateIdx, 10, 64)
	if err != nil {
		return fmt.Errorf("parse state_idx %q: %w", stateIdx, err)
	}

	record := &types.SignUpEvent{
		ID:              types.EventID(ev.Tx.Hash, ev.MsgIndex, ev.Index),
		BlockHeight:     ev.Tx.BlockHeight,
		Timestamp:       ev.Tx.Timestamp(),
		TxHash:          ev.Tx.Hash,
		StateIdx:        idx,
		PubKey:          pubKey,
		Balance:         balance,
		ContractAddress: round.ContractAddress,
	}
	if err := ix.store.SaveSignUp(ctx, record); err != nil {
		return fmt.Errorf("save signup %s: %w", record.ID, err)
	}
	ix.metrics.RecordSaved("signup")

	ix.logger.Debug("Saved sign_up event",
		zap.Uint64("height", record.BlockHeight),
		zap.String("contract", round.ContractAddress),
		zap.Uint64("stateIdx", idx))
	return nil
}

// projectPublishMessage records one encrypted vote message. Weak validation
// on purpose: if any of the three attributes is absent the event is dropped
// without a record and without an error.
func (ix *Indexer) projectPublishMessage(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	chainLength, ok1 := attrs.Lookup("msg_chain_length")
	message, ok2 := attrs.Lookup("message")
	encPubKey, ok3 := attrs.Lookup("enc_pub_key")
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	length, err := strconv.ParseUint(chainLength, 10, 64)
	if err != nil {
		return fmt.Errorf("parse msg_chain_length %q: %w", chainLength, err)
	}

	record := &types.PublishMessageEvent{
		ID:              types.EventID(ev.Tx.Hash, ev.MsgIndex, ev.Index),
		BlockHeight:     ev.Tx.BlockHeight,
		Timestamp:       ev.Tx.Timestamp(),
		TxHash:          ev.Tx.Hash,
		MsgChainLength:  length,
		Message:         message,
		EncPubKey:       encPubKey,
		ContractAddress: round.ContractAddress,
	}
	if err := ix.store.SavePublishMessage(ctx, record); err != nil {
		return fmt.Errorf("save publish_message %s: %w", record.ID, err)
	}
	ix.metrics.RecordSaved("publish_message")

	ix.logger.Debug("Saved publish_message event",
		zap.Uint64("height", record.BlockHeight),
		zap.String("contract", round.ContractAddress),
		zap.Uint64("chainLength", length))
	return nil
}

// projectRoundInfo mutates title/description/link. Title is required;
// description and link default to empty.
func (ix *Indexer) projectRoundInfo(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	title, err := attrs.Get("title")
	if err != nil {
		return err
	}
	round.RoundTitle = title
	round.RoundDescription = attrs.GetOr("description", "")
	round.RoundLink = attrs.GetOr("link", "")
	return ix.saveRound(ctx, round)
}

// projectVotingStart pins the voting window's opening time.
func (ix *Indexer) projectVotingStart(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	start, err := attrs.Get("start_time")
	if err != nil {
		return err
	}
	round.VotingStart = start
	return ix.saveRound(ctx, round)
}

// projectVotingEnd pins the voting window's closing time.
func (ix *Indexer) projectVotingEnd(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	end, err := attrs.Get("end_time")
	if err != nil {
		return err
	}
	round.VotingEnd = end
	return ix.saveRound(ctx, round)
}

func (ix *Indexer) projectMessageProof(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	return ix.projectProof(ctx, ev, attrs, round, types.ProofPhaseMessage)
}

func (ix *Indexer) projectTallyProof(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	return ix.projectProof(ctx, ev, attrs, round, types.ProofPhaseTally)
}

// projectProof records a proof confirmation. Only events whose zk_verify
// attribute is the literal "true" produce a record; rejection is silent.
func (ix *Indexer) projectProof(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round, phase string) error {
	verified, err := attrs.Get("zk_verify")
	if err != nil {
		return err
	}
	if verified != "true" {
		return nil
	}

	piA, err := attrs.Get("pi_a")
	if err != nil {
		return err
	}
	piB, err := attrs.Get("pi_b")
	if err != nil {
		return err
	}
	piC, err := attrs.Get("pi_c")
	if err != nil {
		return err
	}
	commitment, err := attrs.Get("commitment")
	if err != nil {
		return err
	}

	record := &types.ProcessProof{
		ID:              types.EventID(ev.Tx.Hash, ev.MsgIndex, ev.Index),
		BlockHeight:     ev.Tx.BlockHeight,
		Timestamp:       ev.Tx.Timestamp(),
		TxHash:          ev.Tx.Hash,
		ActionType:      phase,
		PiA:             piA,
		PiB:             piB,
		PiC:             piC,
		Commitment:      commitment,
		ContractAddress: round.ContractAddress,
	}
	if err := ix.store.SaveProcessProof(ctx, record); err != nil {
		return fmt.Errorf("save proof %s: %w", record.ID, err)
	}
	ix.metrics.RecordSaved("proof")

	ix.logger.Debug("Saved proof confirmation",
		zap.Uint64("height", record.BlockHeight),
		zap.String("contract", round.ContractAddress),
		zap.String("phase", phase))
	return nil
}

// projectVoteOptionMap overwrites the round's vote-option map verbatim.
func (ix *Indexer) projectVoteOptionMap(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	voteOptionMap, err := attrs.Get("vote_option_map")
	if err != nil {
		return err
	}
	round.VoteOptionMap = voteOptionMap
	return ix.saveRound(ctx, round)
}

// projectTallyResults stores the final per-option results and the aggregate.
func (ix *Indexer) projectTallyResults(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	results, err := attrs.Get("results")
	if err != nil {
		return err
	}
	allResult, err := attrs.Get("all_result")
	if err != nil {
		return err
	}
	round.Results = results
	round.AllResult = allResult
	return ix.saveRound(ctx, round)
}

// projectGrant enables the gas station: grant cap and base grant are set to
// the event's values, the bond amount is added to the cumulative bond.
func (ix *Indexer) projectGrant(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	maxAmount, err := attrs.Get("max_amount")
	if err != nil {
		return err
	}
	baseAmount, err := attrs.Get("base_amount")
	if err != nil {
		return err
	}
	bondAmount, err := attrs.Get("bond_amount")
	if err != nil {
		return err
	}

	totalBond, err := accumulate(round.TotalBond, bondAmount)
	if err != nil {
		return err
	}
	round.TotalGrant = maxAmount
	round.BaseGrant = baseAmount
	round.TotalBond = totalBond
	round.GasStationEnable = true
	return ix.saveRound(ctx, round)
}

// projectRevoke disables the gas station and zeroes the grants. The
// cumulative bond is deliberately untouched.
func (ix *Indexer) projectRevoke(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	round.TotalGrant = "0"
	round.BaseGrant = "0"
	round.GasStationEnable = false
	return ix.saveRound(ctx, round)
}

// projectBond adds the bonded amount to the round's cumulative bond.
func (ix *Indexer) projectBond(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	amount, err := attrs.Get("amount")
	if err != nil {
		return err
	}
	totalBond, err := accumulate(round.TotalBond, amount)
	if err != nil {
		return err
	}
	round.TotalBond = totalBond
	return ix.saveRound(ctx, round)
}

// projectWithdraw subtracts the withdrawn amount from the cumulative bond.
// No floor: the bond may go negative; the contract owns that invariant, the
// indexer only mirrors it.
func (ix *Indexer) projectWithdraw(ctx context.Context, ev *types.Event, attrs Attributes, round *types.Round) error {
	amount, err := attrs.Get("amount")
	if err != nil {
		return err
	}
	totalBond, err := deduct(round.TotalBond, amount)
	if err != nil {
		return err
	}
	round.TotalBond = totalBond
	return ix.saveRound(ctx, round)
}

func (ix *Indexer) saveRound(ctx context.Context, round *types.Round) error {
	if err := ix.store.SaveRound(ctx, round); err != nil {
		return fmt.Errorf("save round %s: %w", round.ID, err)
	}
	ix.notifier.RoundUpdated(ctx, round)
	return nil
}

// accumulate applies a signed decimal-string delta to a stored amount and
// re-serializes it. Fixed-precision throughout; monetary strings never pass
// through floats.
func accumulate(current, delta string) (string, error) {
	cur, err := decimal.NewFromString(current)
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", current, err)
	}
	d, err := decimal.NewFromString(delta)
	if err != nil {
		return "", fmt.Errorf("parse amount delta %q: %w", delta, err)
	}
	return cur.Add(d).String(), nil
}

// deduct subtracts a decimal-string amount from a stored amount.
func deduct(current, delta string) (string, error) {
	cur, err := decimal.NewFromString(current)
	if err != nil {
		return "", fmt.Errorf("parse amount %q: %w", current, err)
	}
	d, err := decimal.NewFromString(delta)
	if err != nil {
		return "", fmt.Errorf("parse amount delta %q: %w", delta, err)
	}
	return cur.Sub(d).String(), nil
}
