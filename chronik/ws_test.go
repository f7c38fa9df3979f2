package chronik

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"chronikwatch/chronikpb"
)

// wsTestServer upgrades /ws and hands the server side of the connection
// back to the test, which then drives both ends.
func wsTestServer(t *testing.T) (*httptest.Server, chan *websocket.Conn, chan string) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	return srv, conns, paths
}

func TestOpenWSDialsWsPath(t *testing.T) {
	srv, conns, paths := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	defer server.Close()

	require.Equal(t, "/ws", <-paths)
}

func TestRecvVariants(t *testing.T) {
	srv, conns, _ := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	defer server.Close()

	pushes := []*chronikpb.WsMsg{
		{Block: &chronikpb.MsgBlock{MsgType: chronikpb.BlkConnected, BlockHash: []byte{0x01}, BlockHeight: 812000}},
		{Tx: &chronikpb.MsgTx{MsgType: chronikpb.TxAddedToMempool, Txid: []byte{0x02}}},
		{Error: &chronikpb.Error{Msg: "sub limit reached"}},
	}
	for _, push := range pushes {
		require.NoError(t, server.WriteMessage(websocket.BinaryMessage, push.Marshal()))
	}

	got, err := ws.Recv()
	require.NoError(t, err)
	require.Equal(t, pushes[0].Block, got.Block)
	require.Nil(t, got.Tx)
	require.Nil(t, got.Error)

	got, err = ws.Recv()
	require.NoError(t, err)
	require.Equal(t, pushes[1].Tx, got.Tx)

	got, err = ws.Recv()
	require.NoError(t, err)
	require.Equal(t, "sub limit reached", got.Error.Msg)
}

func TestRecvSurvivesGarbageFrame(t *testing.T) {
	srv, conns, _ := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	defer server.Close()

	require.NoError(t, server.WriteMessage(websocket.BinaryMessage, []byte{0xff}))
	require.NoError(t, server.WriteMessage(websocket.BinaryMessage,
		(&chronikpb.WsMsg{Tx: &chronikpb.MsgTx{Txid: []byte{0x03}}}).Marshal()))

	_, err = ws.Recv()
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)

	// connection stays usable after the bad frame
	got, err := ws.Recv()
	require.NoError(t, err)
	require.Equal(t, []byte{0x03}, got.Tx.Txid)
}

func TestSubscriptionFrames(t *testing.T) {
	srv, conns, _ := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	defer server.Close()

	readSub := func() *chronikpb.WsSub {
		_, frame, err := server.ReadMessage()
		require.NoError(t, err)
		sub := new(chronikpb.WsSub)
		require.NoError(t, sub.Unmarshal(frame))
		return sub
	}

	require.NoError(t, ws.SubscribeScript("p2pkh", "a1b2c3"))
	sub := readSub()
	require.False(t, sub.IsUnsub)
	require.Nil(t, sub.Blocks)
	require.Equal(t, "p2pkh", sub.Script.ScriptType)
	require.Equal(t, []byte{0xa1, 0xb2, 0xc3}, sub.Script.Payload)

	require.NoError(t, ws.UnsubscribeScript("p2pkh", "a1b2c3"))
	sub = readSub()
	require.True(t, sub.IsUnsub)
	require.Equal(t, "p2pkh", sub.Script.ScriptType)

	require.NoError(t, ws.SubscribeBlocks())
	sub = readSub()
	require.False(t, sub.IsUnsub)
	require.NotNil(t, sub.Blocks)
	require.Nil(t, sub.Script)

	require.NoError(t, ws.UnsubscribeBlocks())
	sub = readSub()
	require.True(t, sub.IsUnsub)
	require.NotNil(t, sub.Blocks)
}

func TestSubscribeScriptRejectsBadHex(t *testing.T) {
	srv, conns, _ := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	defer server.Close()

	require.Error(t, ws.SubscribeScript("p2pkh", "zz"))
}

func TestRecvAfterServerClose(t *testing.T) {
	srv, conns, _ := wsTestServer(t)

	ws, err := newTestClient(t, srv).OpenWS(context.Background())
	require.NoError(t, err)
	defer ws.Close()
	server := <-conns
	require.NoError(t, server.Close())

	_, err = ws.Recv()
	require.Error(t, err)
	var decErr *DecodeError
	require.False(t, errors.As(err, &decErr))
}

func TestOpenWSHandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).OpenWS(context.Background())
	require.Error(t, err)
}
