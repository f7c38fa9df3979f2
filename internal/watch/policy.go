package watch

import (
	"chronikwatch/chronikpb"
	"chronikwatch/internal/models"
)

// ConfirmPolicy decides the ledger status of a recorded transaction.
// A transaction counts as finalized once the indexer flags its block
// final, or once it is buried FinalizeDepth blocks under the tip.
type ConfirmPolicy struct {
	FinalizeDepth int32
}

func (p ConfirmPolicy) StatusFor(tx *chronikpb.Tx, tip int32) models.TxStatus {
	if tx.Block == nil {
		return models.TxSeen
	}
	if tx.Block.IsFinal {
		return models.TxFinalized
	}
	if p.FinalizeDepth > 0 && tip-tx.Block.Height+1 >= p.FinalizeDepth {
		return models.TxFinalized
	}
	return models.TxConfirmed
}
