package chronik

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chronikwatch/chronikpb"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return NewClient(u.Hostname(), port, opts...)
}

func serveProto(status int, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", protobufContentType)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}
}

func TestTxOkEnvelope(t *testing.T) {
	want := &chronikpb.Tx{
		Txid:          []byte{0xde, 0xad},
		Version:       2,
		TimeFirstSeen: 1700000000,
	}
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		serveProto(http.StatusOK, want.Marshal())(w, r)
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).Tx(context.Background(), "dead")
	require.NoError(t, err)
	require.Equal(t, "/tx/dead", gotURL)
	require.Equal(t, http.StatusOK, resp.Status())

	tx, err := resp.Ok()
	require.NoError(t, err)
	require.Equal(t, want, tx)

	_, err = resp.Err(http.StatusNotFound)
	var mismatch *StatusMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, http.StatusNotFound, mismatch.Expected)
	require.Equal(t, http.StatusOK, mismatch.Got)
	require.Contains(t, err.Error(), "but got OK")
}

func TestErrorEnvelope(t *testing.T) {
	apiErr := &chronikpb.Error{Msg: "Tx not found in the index"}
	srv := httptest.NewServer(serveProto(http.StatusNotFound, apiErr.Marshal()))
	defer srv.Close()

	resp, err := newTestClient(t, srv).Tx(context.Background(), "0000")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.Status())

	_, err = resp.Ok()
	var mismatch *StatusMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, http.StatusNotFound, mismatch.Got)
	require.Contains(t, err.Error(), "status 404")
	require.Contains(t, err.Error(), apiErr.Msg)

	got, err := resp.Err(http.StatusNotFound)
	require.NoError(t, err)
	require.Equal(t, apiErr, got)

	_, err = resp.Err(http.StatusInternalServerError)
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, http.StatusInternalServerError, mismatch.Expected)
	require.Equal(t, http.StatusNotFound, mismatch.Got)
	require.Contains(t, err.Error(), "different error status")
}

func TestContentTypeCheckedOnAnyStatus(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		contentType string
		body        string
	}{
		{"ok status html body", http.StatusOK, "text/html", "<html>proxy page</html>"},
		{"error status plain body", http.StatusInternalServerError, "text/plain; charset=utf-8", "Internal Server Error"},
		{"missing header", http.StatusOK, "", "raw"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.contentType != "" {
					w.Header().Set("Content-Type", tc.contentType)
				} else {
					// suppress sniffing so the header stays absent
					w.Header()["Content-Type"] = nil
				}
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).BlockchainInfo(context.Background())
			var ctErr *ContentTypeError
			require.ErrorAs(t, err, &ctErr)
			require.Equal(t, tc.contentType, ctErr.ContentType)
			require.Equal(t, tc.body, string(ctErr.Body))
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	// 0xff starts a varint that never terminates
	garbage := []byte{0xff}

	t.Run("ok body", func(t *testing.T) {
		srv := httptest.NewServer(serveProto(http.StatusOK, garbage))
		defer srv.Close()

		_, err := newTestClient(t, srv).Tx(context.Background(), "aa")
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr)
		var ctErr *ContentTypeError
		require.False(t, errors.As(err, &ctErr))
	})

	t.Run("error body", func(t *testing.T) {
		srv := httptest.NewServer(serveProto(http.StatusBadRequest, garbage))
		defer srv.Close()

		_, err := newTestClient(t, srv).Tx(context.Background(), "aa")
		var decErr *DecodeError
		require.ErrorAs(t, err, &decErr)
	})
}

func TestScriptPaginationQuadrants(t *testing.T) {
	cases := []struct {
		name     string
		page     int
		pageSize int
		want     string
	}{
		{"both", 2, 25, "/script/p2pkh/abcd/confirmed-txs?page=2&page_size=25"},
		{"page only", 0, 0, "/script/p2pkh/abcd/confirmed-txs?page=0"},
		{"page size only", -1, 200, "/script/p2pkh/abcd/confirmed-txs?page_size=200"},
		{"neither", -1, 0, "/script/p2pkh/abcd/confirmed-txs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotURL string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotURL = r.URL.String()
				serveProto(http.StatusOK, (&chronikpb.TxHistoryPage{}).Marshal())(w, r)
			}))
			defer srv.Close()

			script := newTestClient(t, srv).Script("p2pkh", "abcd")
			_, err := script.ConfirmedTxs(context.Background(), tc.page, tc.pageSize)
			require.NoError(t, err)
			require.Equal(t, tc.want, gotURL)
		})
	}
}

func TestScriptEndpointPaths(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		serveProto(http.StatusOK, nil)(w, r)
	}))
	defer srv.Close()

	script := newTestClient(t, srv).Script("p2sh", "11223344")
	ctx := context.Background()

	_, err := script.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "/script/p2sh/11223344/history?page=1&page_size=10", gotURL)

	_, err = script.UnconfirmedTxs(ctx)
	require.NoError(t, err)
	require.Equal(t, "/script/p2sh/11223344/unconfirmed-txs", gotURL)

	_, err = script.Utxos(ctx)
	require.NoError(t, err)
	require.Equal(t, "/script/p2sh/11223344/utxos", gotURL)
}

func TestBlockByHeight(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		serveProto(http.StatusOK, (&chronikpb.Block{BlockInfo: &chronikpb.BlockInfo{Height: 170}}).Marshal())(w, r)
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).BlockByHeight(context.Background(), 170)
	require.NoError(t, err)
	require.Equal(t, "/block/170", gotURL)

	block, err := resp.Ok()
	require.NoError(t, err)
	require.Equal(t, int32(170), block.BlockInfo.Height)
}

func TestBroadcastTx(t *testing.T) {
	rawTx := []byte{0x02, 0x00, 0x00, 0x00}
	txid := []byte{0xaa, 0xbb}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/broadcast-tx", r.URL.Path)
		require.Equal(t, protobufContentType, r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		req := new(chronikpb.BroadcastTxRequest)
		require.NoError(t, req.Unmarshal(body))
		require.Equal(t, rawTx, req.RawTx)
		require.True(t, req.SkipTokenChecks)

		serveProto(http.StatusOK, (&chronikpb.BroadcastTxResponse{Txid: txid}).Marshal())(w, r)
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv).BroadcastTx(context.Background(), rawTx, true)
	require.NoError(t, err)
	got, err := resp.Ok()
	require.NoError(t, err)
	require.Equal(t, txid, got.Txid)
}

func TestRedirectNotFollowed(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Tx(context.Background(), "aa")
	var ctErr *ContentTypeError
	require.ErrorAs(t, err, &ctErr)
	require.Equal(t, 1, hits)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		serveProto(http.StatusOK, nil)(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, WithTimeout(30*time.Millisecond)).BlockchainInfo(context.Background())
	require.Error(t, err)
}

func TestTransportErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, srv).Tx(context.Background(), "aa")
	require.Error(t, err)
	var ctErr *ContentTypeError
	require.False(t, errors.As(err, &ctErr))
	var decErr *DecodeError
	require.False(t, errors.As(err, &decErr))
}
