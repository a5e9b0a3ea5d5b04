package indexer

import (
	"context"
	"fmt"

	"github.com/votascan/votascan/pkg/indexer/types"
	"go.uber.org/zap"
)

// recordTransaction derives the ledger record for one processed message and
// writes it. Fee resolution is soft: a transaction without a fee attribute
// under its tx-typed event is still recorded, with the zero-fee sentinel for
// the configured denomination and status Fail.
func (ix *Indexer) recordTransaction(ctx context.Context, round *types.Round, tx types.TxContext, caller, opCode string) error {
	status := types.TxSuccess
	fee, ok := tx.FeeEvent()
	if !ok {
		fee = "0" + ix.denom
		status = types.TxFail
	}

	record := &types.Transaction{
		ID:              tx.Hash,
		BlockHeight:     tx.BlockHeight,
		TxHash:          tx.Hash,
		Timestamp:       tx.Timestamp(),
		Type:            opCode,
		Status:          status,
		RoundID:         round.RoundID,
		CircuitName:     round.CircuitName,
		Fee:             fee,
		GasUsed:         tx.GasUsed,
		GasWanted:       tx.GasWanted,
		Caller:          caller,
		ContractAddress: round.ContractAddress,
	}

	if err := ix.store.SaveTransaction(ctx, record); err != nil {
		return fmt.Errorf("save transaction %s: %w", tx.Hash, err)
	}
	ix.metrics.RecordSaved("transaction")
	ix.notifier.TransactionIndexed(ctx, record)

	ix.logger.Debug("Saved transaction",
		zap.Uint64("height", tx.BlockHeight),
		zap.String("tx", tx.Hash),
		zap.String("type", opCode),
		zap.String("contract", round.ContractAddress),
		zap.String("status", string(status)))
	return nil
}
