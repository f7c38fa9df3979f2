package chronik

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/gorilla/websocket"

	"chronikwatch/chronikpb"
)

// WSClient is a push message channel from the indexer. It owns a single
// websocket connection; Recv calls must be serialized by the caller, and
// there is no reconnect. Subscriptions live for the lifetime of the
// connection.
type WSClient struct {
	conn *websocket.Conn
}

// OpenWS dials ws://{host}:{port}/ws. The context bounds the handshake
// only, never later receives.
func (c *Client) OpenWS(ctx context.Context) (*WSClient, error) {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return nil, err
	}
	return &WSClient{conn: conn}, nil
}

// Recv blocks until the next push message arrives and decodes it. A
// frame that fails to decode returns a DecodeError for that call and
// leaves the connection usable.
func (ws *WSClient) Recv() (*chronikpb.WsMsg, error) {
	_, raw, err := ws.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	msg, err := chronikpb.UnmarshalWsMsg(raw)
	if err != nil {
		return nil, &DecodeError{What: "ws message", Err: err}
	}
	return msg, nil
}

// SubscribeScript asks for push messages about transactions touching the
// given script.
func (ws *WSClient) SubscribeScript(scriptType, payloadHex string) error {
	return ws.sendScriptSub(scriptType, payloadHex, false)
}

// UnsubscribeScript cancels a SubscribeScript with the same identity.
func (ws *WSClient) UnsubscribeScript(scriptType, payloadHex string) error {
	return ws.sendScriptSub(scriptType, payloadHex, true)
}

// SubscribeBlocks asks for push messages about block connects,
// disconnects and finalizations.
func (ws *WSClient) SubscribeBlocks() error {
	return ws.send(&chronikpb.WsSub{Blocks: &chronikpb.WsSubBlocks{}})
}

// UnsubscribeBlocks cancels SubscribeBlocks.
func (ws *WSClient) UnsubscribeBlocks() error {
	return ws.send(&chronikpb.WsSub{IsUnsub: true, Blocks: &chronikpb.WsSubBlocks{}})
}

func (ws *WSClient) Close() error {
	return ws.conn.Close()
}

func (ws *WSClient) sendScriptSub(scriptType, payloadHex string, unsub bool) error {
	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return fmt.Errorf("invalid script payload %q: %w", payloadHex, err)
	}
	return ws.send(&chronikpb.WsSub{
		IsUnsub: unsub,
		Script:  &chronikpb.WsSubScript{ScriptType: scriptType, Payload: payload},
	})
}

func (ws *WSClient) send(sub *chronikpb.WsSub) error {
	return ws.conn.WriteMessage(websocket.BinaryMessage, sub.Marshal())
}
