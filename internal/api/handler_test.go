package api

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"chronikwatch/chronik"
	"chronikwatch/chronikpb"
	"chronikwatch/internal/models"
	"chronikwatch/internal/wallet"
	"chronikwatch/internal/watch"
)

type fakeRegistry struct {
	nextIdx int64
	watches map[string]*models.Watch
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{watches: map[string]*models.Watch{}}
}

func (f *fakeRegistry) NextDerivationIndex(ctx context.Context) (int64, error) {
	f.nextIdx++
	return f.nextIdx, nil
}

func (f *fakeRegistry) CreateWatch(ctx context.Context, wt *models.Watch) error {
	f.watches[wt.WatchID] = wt
	return nil
}

func (f *fakeRegistry) GetWatch(ctx context.Context, watchID string) (*models.Watch, error) {
	wt, ok := f.watches[watchID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return wt, nil
}

func (f *fakeRegistry) GetWatchByScript(ctx context.Context, scriptType, payloadHex string) (*models.Watch, error) {
	for _, wt := range f.watches {
		if wt.ScriptType == scriptType && wt.PayloadHex == payloadHex {
			return wt, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistry) ListWatches(ctx context.Context) ([]*models.Watch, error) {
	out := make([]*models.Watch, 0, len(f.watches))
	for _, wt := range f.watches {
		out = append(out, wt)
	}
	return out, nil
}

type fakeTxLister struct {
	txs map[string][]*models.WatchTx
}

func (f *fakeTxLister) ListWatchTxs(ctx context.Context, watchID string) ([]*models.WatchTx, error) {
	return f.txs[watchID], nil
}

func newTestServer(t *testing.T, reg *fakeRegistry, txs *fakeTxLister, client *chronik.Client) *httptest.Server {
	t.Helper()
	if txs == nil {
		txs = &fakeTxLister{}
	}
	h := NewHandler(watch.Service{Store: reg}, txs, client)
	srv := httptest.NewServer(NewServer(h).Router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCreateWatchByAddress(t *testing.T) {
	reg := newFakeRegistry()
	srv := newTestServer(t, reg, nil, nil)

	// genesis block coinbase address
	resp := postJSON(t, srv.URL+"/watches", `{"label":"donations","address":"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got watchResponse
	decodeBody(t, resp, &got)
	require.NotEmpty(t, got.WatchID)
	require.Equal(t, "donations", got.Label)
	require.Equal(t, wallet.ScriptTypeP2PKH, got.ScriptType)
	require.Equal(t, "62e907b15cbf27d5425399ebf6f0fb50ebb88f18", got.PayloadHex)
	require.Equal(t, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", got.Address)
	require.Len(t, reg.watches, 1)
}

func TestCreateWatchByScript(t *testing.T) {
	reg := newFakeRegistry()
	srv := newTestServer(t, reg, nil, nil)

	payloadHex := strings.Repeat("ab", 20)
	resp := postJSON(t, srv.URL+"/watches",
		`{"label":"cold","scriptType":"p2sh","payloadHex":"`+payloadHex+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got watchResponse
	decodeBody(t, resp, &got)
	require.Equal(t, wallet.ScriptTypeP2SH, got.ScriptType)
	require.Equal(t, payloadHex, got.PayloadHex)

	payload, err := hex.DecodeString(payloadHex)
	require.NoError(t, err)
	require.Equal(t, wallet.P2SHAddress(payload), got.Address)
}

func TestCreateWatchValidation(t *testing.T) {
	srv := newTestServer(t, newFakeRegistry(), nil, nil)

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"bad json", `{`, http.StatusBadRequest, "invalid json body"},
		{"no mode", `{"label":"x"}`, http.StatusBadRequest, "address, script, or derive required"},
		{"missing label", `{"address":"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"}`, http.StatusBadRequest, "missing label"},
		{"bad address", `{"label":"x","address":"notanaddress"}`, http.StatusBadRequest, "invalid address"},
		{"bad script type", `{"label":"x","scriptType":"p2pk","payloadHex":"` + strings.Repeat("ab", 20) + `"}`, http.StatusBadRequest, "invalid script"},
		{"short payload", `{"label":"x","scriptType":"p2pkh","payloadHex":"abcd"}`, http.StatusBadRequest, "invalid script"},
		{"derive without xpub", `{"label":"x","derive":true}`, http.StatusPreconditionFailed, "wallet xpub not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/watches", tt.body)
			require.Equal(t, tt.status, resp.StatusCode)

			var got map[string]string
			decodeBody(t, resp, &got)
			require.Equal(t, tt.errMsg, got["error"])
		})
	}
}

func TestGetWatchNotFound(t *testing.T) {
	srv := newTestServer(t, newFakeRegistry(), nil, nil)

	resp, err := http.Get(srv.URL + "/watches/nope")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	require.Equal(t, "watch not found", got["error"])
}

func TestGetWatchTxs(t *testing.T) {
	reg := newFakeRegistry()
	height := int32(95)
	hash := strings.Repeat("33", 32)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg.watches["watch-1"] = &models.Watch{
		WatchID:    "watch-1",
		Label:      "test",
		ScriptType: "p2pkh",
		PayloadHex: strings.Repeat("ab", 20),
		CreatedAt:  now,
	}
	txs := &fakeTxLister{txs: map[string][]*models.WatchTx{
		"watch-1": {
			{
				Txid:        strings.Repeat("22", 32),
				WatchID:     "watch-1",
				DeltaSats:   -1300,
				Status:      models.TxConfirmed,
				BlockHeight: &height,
				BlockHash:   &hash,
				FirstSeenAt: now,
				UpdatedAt:   now,
			},
			{
				Txid:        strings.Repeat("11", 32),
				WatchID:     "watch-1",
				DeltaSats:   600,
				Status:      models.TxSeen,
				FirstSeenAt: now,
				UpdatedAt:   now,
			},
		},
	}}
	srv := newTestServer(t, reg, txs, nil)

	resp, err := http.Get(srv.URL + "/watches/watch-1/txs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []watchTxResponse
	decodeBody(t, resp, &got)
	require.Len(t, got, 2)
	require.Equal(t, int64(-1300), got[0].DeltaSats)
	require.Equal(t, "confirmed", got[0].Status)
	require.NotNil(t, got[0].BlockHeight)
	require.Equal(t, int32(95), *got[0].BlockHeight)
	require.Equal(t, hash, got[0].BlockHash)
	require.Equal(t, "seen", got[1].Status)
	require.Nil(t, got[1].BlockHeight)
	require.Empty(t, got[1].BlockHash)
}

func TestGetWatchUtxosPassthrough(t *testing.T) {
	payloadHex := strings.Repeat("ab", 20)
	txid := bytes.Repeat([]byte{0x44}, 32)

	mux := http.NewServeMux()
	mux.HandleFunc("/script/p2pkh/"+payloadHex+"/utxos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write((&chronikpb.ScriptUtxos{
			Utxos: []*chronikpb.ScriptUtxo{
				{
					Outpoint:    &chronikpb.OutPoint{Txid: txid, OutIdx: 1},
					BlockHeight: 95,
					Value:       3700,
					IsFinal:     true,
				},
			},
		}).Marshal())
	})
	chronikSrv := httptest.NewServer(mux)
	t.Cleanup(chronikSrv.Close)

	u, err := url.Parse(chronikSrv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	client := chronik.NewClient(u.Hostname(), port)

	reg := newFakeRegistry()
	reg.watches["watch-1"] = &models.Watch{
		WatchID:    "watch-1",
		ScriptType: "p2pkh",
		PayloadHex: payloadHex,
	}
	srv := newTestServer(t, reg, nil, client)

	resp, err := http.Get(srv.URL + "/watches/watch-1/utxos")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []utxoResponse
	decodeBody(t, resp, &got)
	require.Len(t, got, 1)
	require.Equal(t, chronikpb.HashHex(txid), got[0].Txid)
	require.Equal(t, uint32(1), got[0].OutIdx)
	require.Equal(t, int64(3700), got[0].Value)
	require.Equal(t, int32(95), got[0].BlockHeight)
	require.True(t, got[0].IsFinal)
}

func TestGetWatchUtxosChronikDown(t *testing.T) {
	chronikSrv := httptest.NewServer(http.NotFoundHandler())
	u, err := url.Parse(chronikSrv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	chronikSrv.Close()
	client := chronik.NewClient(u.Hostname(), port, chronik.WithTimeout(time.Second))

	reg := newFakeRegistry()
	reg.watches["watch-1"] = &models.Watch{
		WatchID:    "watch-1",
		ScriptType: "p2pkh",
		PayloadHex: strings.Repeat("ab", 20),
	}
	srv := newTestServer(t, reg, nil, client)

	resp, err := http.Get(srv.URL + "/watches/watch-1/utxos")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, newFakeRegistry(), nil, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	decodeBody(t, resp, &got)
	require.Equal(t, "ok", got["status"])
}
