package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"chronikwatch/chronik"
	"chronikwatch/chronikpb"
	"chronikwatch/internal/models"
	"chronikwatch/internal/wallet"
	"chronikwatch/internal/watch"
)

// TxLister reads recorded transactions for a watch.
type TxLister interface {
	ListWatchTxs(ctx context.Context, watchID string) ([]*models.WatchTx, error)
}

type Handler struct {
	Watches watch.Service
	Txs     TxLister
	Chronik *chronik.Client
}

type createWatchRequest struct {
	Label      string `json:"label"`
	Address    string `json:"address,omitempty"`
	ScriptType string `json:"scriptType,omitempty"`
	PayloadHex string `json:"payloadHex,omitempty"`
	Derive     bool   `json:"derive,omitempty"`
}

type watchResponse struct {
	WatchID         string `json:"watchId"`
	Label           string `json:"label"`
	ScriptType      string `json:"scriptType"`
	PayloadHex      string `json:"payloadHex"`
	Address         string `json:"address,omitempty"`
	DerivationIndex *int64 `json:"derivationIndex,omitempty"`
	CreatedAt       string `json:"createdAt"`
}

type watchTxResponse struct {
	Txid        string `json:"txid"`
	DeltaSats   int64  `json:"deltaSats"`
	Status      string `json:"status"`
	BlockHeight *int32 `json:"blockHeight,omitempty"`
	BlockHash   string `json:"blockHash,omitempty"`
	FirstSeenAt string `json:"firstSeenAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type utxoResponse struct {
	Txid        string `json:"txid"`
	OutIdx      uint32 `json:"outIdx"`
	Value       int64  `json:"value"`
	BlockHeight int32  `json:"blockHeight"`
	IsCoinbase  bool   `json:"isCoinbase"`
	IsFinal     bool   `json:"isFinal"`
}

func NewHandler(watches watch.Service, txs TxLister, client *chronik.Client) *Handler {
	return &Handler{Watches: watches, Txs: txs, Chronik: client}
}

func (h *Handler) CreateWatch(w http.ResponseWriter, r *http.Request) {
	var req createWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	var (
		wt  *models.Watch
		err error
	)
	switch {
	case req.Derive:
		wt, _, err = h.Watches.WatchNextAddress(r.Context(), req.Label)
	case req.Address != "":
		wt, err = h.Watches.WatchAddress(r.Context(), req.Label, req.Address)
	case req.ScriptType != "" || req.PayloadHex != "":
		wt, err = h.Watches.WatchScript(r.Context(), req.Label, req.ScriptType, req.PayloadHex)
	default:
		writeError(w, http.StatusBadRequest, "address, script, or derive required")
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, watch.ErrMissingLabel):
			writeError(w, http.StatusBadRequest, "missing label")
		case errors.Is(err, watch.ErrInvalidAddress):
			writeError(w, http.StatusBadRequest, "invalid address")
		case errors.Is(err, watch.ErrInvalidScript):
			writeError(w, http.StatusBadRequest, "invalid script")
		case errors.Is(err, watch.ErrXpubNotConfigured):
			writeError(w, http.StatusPreconditionFailed, "wallet xpub not configured")
		default:
			writeError(w, http.StatusInternalServerError, "create watch failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, watchToResponse(wt))
}

func (h *Handler) GetWatch(w http.ResponseWriter, r *http.Request) {
	wt, ok := h.loadWatch(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, watchToResponse(wt))
}

func (h *Handler) ListWatches(w http.ResponseWriter, r *http.Request) {
	watches, err := h.Watches.ListWatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list watches failed")
		return
	}
	resp := make([]watchResponse, 0, len(watches))
	for _, wt := range watches {
		resp = append(resp, watchToResponse(wt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetWatchTxs(w http.ResponseWriter, r *http.Request) {
	wt, ok := h.loadWatch(w, r)
	if !ok {
		return
	}

	txs, err := h.Txs.ListWatchTxs(r.Context(), wt.WatchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list watch txs failed")
		return
	}

	resp := make([]watchTxResponse, 0, len(txs))
	for _, tx := range txs {
		item := watchTxResponse{
			Txid:        tx.Txid,
			DeltaSats:   tx.DeltaSats,
			Status:      string(tx.Status),
			BlockHeight: tx.BlockHeight,
			FirstSeenAt: tx.FirstSeenAt.Format(time.RFC3339),
			UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
		}
		if tx.BlockHash != nil {
			item.BlockHash = *tx.BlockHash
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetWatchUtxos asks the indexer directly rather than the local store, so
// the answer reflects the live UTXO set.
func (h *Handler) GetWatchUtxos(w http.ResponseWriter, r *http.Request) {
	wt, ok := h.loadWatch(w, r)
	if !ok {
		return
	}

	res, err := h.Chronik.Script(wt.ScriptType, wt.PayloadHex).Utxos(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "chronik unavailable")
		return
	}
	utxos, err := res.Ok()
	if err != nil {
		writeError(w, http.StatusBadGateway, "chronik rejected utxo query")
		return
	}

	resp := make([]utxoResponse, 0, len(utxos.Utxos))
	for _, u := range utxos.Utxos {
		item := utxoResponse{
			Value:       u.Value,
			BlockHeight: u.BlockHeight,
			IsCoinbase:  u.IsCoinbase,
			IsFinal:     u.IsFinal,
		}
		if u.Outpoint != nil {
			item.Txid = chronikpb.HashHex(u.Outpoint.Txid)
			item.OutIdx = u.Outpoint.OutIdx
		}
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) loadWatch(w http.ResponseWriter, r *http.Request) (*models.Watch, bool) {
	watchID := chi.URLParam(r, "watchId")
	if watchID == "" {
		writeError(w, http.StatusBadRequest, "missing watch id")
		return nil, false
	}

	wt, err := h.Watches.GetWatch(r.Context(), watchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "watch not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "get watch failed")
		return nil, false
	}
	return wt, true
}

func watchToResponse(wt *models.Watch) watchResponse {
	resp := watchResponse{
		WatchID:         wt.WatchID,
		Label:           wt.Label,
		ScriptType:      wt.ScriptType,
		PayloadHex:      wt.PayloadHex,
		DerivationIndex: wt.DerivationIndex,
		CreatedAt:       wt.CreatedAt.Format(time.RFC3339),
	}
	if payload, err := hex.DecodeString(wt.PayloadHex); err == nil {
		switch wt.ScriptType {
		case wallet.ScriptTypeP2PKH:
			resp.Address = wallet.P2PKHAddress(payload)
		case wallet.ScriptTypeP2SH:
			resp.Address = wallet.P2SHAddress(payload)
		}
	}
	return resp
}
