package watcher

import (
	"context"
	"encoding/hex"
	"log"
	"time"

	"chronikwatch/chronik"
	"chronikwatch/chronikpb"
	"chronikwatch/internal/models"
	"chronikwatch/internal/watch"
)

// TxStore is the slice of the store the daemon needs.
type TxStore interface {
	ListWatches(ctx context.Context) ([]*models.Watch, error)
	UpsertWatchTx(ctx context.Context, tx *models.WatchTx) error
	DeleteSeenTx(ctx context.Context, txid string) error
	MarkFinalizedBelow(ctx context.Context, height int32) (int64, error)
	GetSyncTip(ctx context.Context) (int32, error)
	SetSyncTip(ctx context.Context, height int32) error
}

type Watcher struct {
	Store     TxStore
	Chronik   *chronik.Client
	Policy    watch.ConfirmPolicy
	PageSize  int
	Interval  time.Duration
	WSEnabled bool
}

func (w *Watcher) Run(ctx context.Context) {
	if w.WSEnabled {
		go w.RunWS(ctx)
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if err := w.SyncOnce(ctx); err != nil {
			log.Printf("sync error: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SyncOnce reconciles every watch against the indexer: mempool entries,
// confirmed history, finalization depth, and the recorded tip.
func (w *Watcher) SyncOnce(ctx context.Context) error {
	resp, err := w.Chronik.BlockchainInfo(ctx)
	if err != nil {
		return err
	}
	info, err := resp.Ok()
	if err != nil {
		return err
	}
	tip := info.TipHeight

	last, err := w.Store.GetSyncTip(ctx)
	if err != nil {
		return err
	}
	if tip != last {
		log.Printf("tip %d -> %d", last, tip)
	}

	watches, err := w.Store.ListWatches(ctx)
	if err != nil {
		return err
	}
	for _, wt := range watches {
		if err := w.scanWatch(ctx, wt, tip); err != nil {
			log.Printf("scan watch %s failed: %v", wt.WatchID, err)
		}
	}

	if depth := w.Policy.FinalizeDepth; depth > 0 && tip-depth+1 > 0 {
		if n, err := w.Store.MarkFinalizedBelow(ctx, tip-depth+1); err != nil {
			log.Printf("mark finalized failed: %v", err)
		} else if n > 0 {
			log.Printf("finalized %d txs at depth %d", n, depth)
		}
	}

	return w.Store.SetSyncTip(ctx, tip)
}

// scanWatch walks the script's mempool entries and full confirmed
// history. Upserts are idempotent, so rescans only refresh status.
func (w *Watcher) scanWatch(ctx context.Context, wt *models.Watch, tip int32) error {
	script, err := lockingScript(wt)
	if err != nil {
		return err
	}
	scriptClient := w.Chronik.Script(wt.ScriptType, wt.PayloadHex)

	resp, err := scriptClient.UnconfirmedTxs(ctx)
	if err != nil {
		return err
	}
	mempool, err := resp.Ok()
	if err != nil {
		return err
	}
	for _, tx := range mempool.Txs {
		if err := w.recordTx(ctx, wt, script, tx, tip); err != nil {
			log.Printf("record mempool tx failed watch=%s: %v", wt.WatchID, err)
		}
	}

	pageSize := w.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	for page := 0; ; page++ {
		resp, err := scriptClient.ConfirmedTxs(ctx, page, pageSize)
		if err != nil {
			return err
		}
		history, err := resp.Ok()
		if err != nil {
			return err
		}
		if len(history.Txs) == 0 {
			break
		}
		for _, tx := range history.Txs {
			if err := w.recordTx(ctx, wt, script, tx, tip); err != nil {
				log.Printf("record tx failed watch=%s: %v", wt.WatchID, err)
			}
		}
		if uint32((page+1)*pageSize) >= history.NumTxs {
			break
		}
	}
	return nil
}

// recordTx stores the watch's view of one transaction. Transactions
// that do not move funds for the script are skipped.
func (w *Watcher) recordTx(ctx context.Context, wt *models.Watch, script []byte, tx *chronikpb.Tx, tip int32) error {
	delta := watch.DeltaSats(tx, script)
	if delta == 0 {
		return nil
	}

	now := time.Now().UTC()
	rec := &models.WatchTx{
		Txid:        chronikpb.HashHex(tx.Txid),
		WatchID:     wt.WatchID,
		DeltaSats:   delta,
		Status:      w.Policy.StatusFor(tx, tip),
		FirstSeenAt: now,
		UpdatedAt:   now,
	}
	if tx.Block != nil {
		height := tx.Block.Height
		hash := chronikpb.HashHex(tx.Block.Hash)
		rec.BlockHeight = &height
		rec.BlockHash = &hash
	}
	return w.Store.UpsertWatchTx(ctx, rec)
}

func lockingScript(wt *models.Watch) ([]byte, error) {
	payload, err := hex.DecodeString(wt.PayloadHex)
	if err != nil {
		return nil, err
	}
	return watch.ScriptFor(wt.ScriptType, payload)
}
