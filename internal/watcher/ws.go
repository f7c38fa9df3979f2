package watcher

import (
	"context"
	"errors"
	"log"
	"time"

	"chronikwatch/chronik"
	"chronikwatch/chronikpb"
)

// RunWS keeps a push channel open to the indexer, resubscribing after
// every reconnect. Watches registered while connected are picked up by
// the periodic sync and subscribed on the next reconnect.
func (w *Watcher) RunWS(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ws, err := w.Chronik.OpenWS(ctx)
		if err != nil {
			log.Printf("ws connect failed: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}
		log.Printf("ws connected")

		if err := w.subscribeAll(ctx, ws); err != nil {
			log.Printf("ws subscribe failed: %v", err)
			ws.Close()
			time.Sleep(3 * time.Second)
			continue
		}

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				ws.Close()
			case <-done:
			}
		}()

		for {
			msg, err := ws.Recv()
			if err != nil {
				var decErr *chronik.DecodeError
				if errors.As(err, &decErr) {
					log.Printf("ws decode failed: %v", err)
					continue
				}
				log.Printf("ws read failed: %v", err)
				ws.Close()
				break
			}
			w.handleMsg(ctx, msg)
		}
		close(done)

		time.Sleep(2 * time.Second)
	}
}

func (w *Watcher) subscribeAll(ctx context.Context, ws *chronik.WSClient) error {
	if err := ws.SubscribeBlocks(); err != nil {
		return err
	}
	watches, err := w.Store.ListWatches(ctx)
	if err != nil {
		return err
	}
	for _, wt := range watches {
		if err := ws.SubscribeScript(wt.ScriptType, wt.PayloadHex); err != nil {
			return err
		}
	}
	log.Printf("ws subscribed to blocks and %d scripts", len(watches))
	return nil
}

func (w *Watcher) handleMsg(ctx context.Context, msg *chronikpb.WsMsg) {
	switch {
	case msg.Error != nil:
		log.Printf("ws server error: %s", msg.Error.Msg)
	case msg.Block != nil:
		w.handleBlockMsg(ctx, msg.Block)
	case msg.Tx != nil:
		w.handleTxMsg(ctx, msg.Tx)
	}
}

func (w *Watcher) handleBlockMsg(ctx context.Context, msg *chronikpb.MsgBlock) {
	log.Printf("ws block %s height=%d hash=%s", msg.MsgType, msg.BlockHeight, chronikpb.HashHex(msg.BlockHash))
	if err := w.SyncOnce(ctx); err != nil {
		log.Printf("resync after block msg failed: %v", err)
	}
}

func (w *Watcher) handleTxMsg(ctx context.Context, msg *chronikpb.MsgTx) {
	txid := chronikpb.HashHex(msg.Txid)

	if msg.MsgType == chronikpb.TxRemovedFromMempool {
		if err := w.Store.DeleteSeenTx(ctx, txid); err != nil {
			log.Printf("ws drop tx %s failed: %v", txid, err)
		}
		return
	}

	resp, err := w.Chronik.Tx(ctx, txid)
	if err != nil {
		log.Printf("ws fetch tx %s failed: %v", txid, err)
		return
	}
	tx, err := resp.Ok()
	if err != nil {
		log.Printf("ws fetch tx %s failed: %v", txid, err)
		return
	}

	// depth finalization waits for the next sync; the recorded tip is
	// good enough for classifying a fresh push
	tip, err := w.Store.GetSyncTip(ctx)
	if err != nil {
		tip = 0
	}

	watches, err := w.Store.ListWatches(ctx)
	if err != nil {
		log.Printf("ws list watches failed: %v", err)
		return
	}
	for _, wt := range watches {
		script, err := lockingScript(wt)
		if err != nil {
			log.Printf("bad watch script %s: %v", wt.WatchID, err)
			continue
		}
		if err := w.recordTx(ctx, wt, script, tx, tip); err != nil {
			log.Printf("ws record tx failed watch=%s: %v", wt.WatchID, err)
		}
	}
}
