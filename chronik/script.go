package chronik

import (
	"context"
	"fmt"

	"chronikwatch/chronikpb"
)

// ScriptClient scopes queries to one script identity: a script type such
// as "p2pkh" or "p2sh" and its hex payload. Build one with Client.Script.
type ScriptClient struct {
	client     *Client
	scriptType string
	payload    string
}

// Script returns a client for /script/{scriptType}/{payload} queries.
// No I/O happens until a query method is called.
func (c *Client) Script(scriptType, payload string) *ScriptClient {
	return &ScriptClient{client: c, scriptType: scriptType, payload: payload}
}

// ConfirmedTxs pages through the script's confirmed transactions in
// block order.
func (s *ScriptClient) ConfirmedTxs(ctx context.Context, page, pageSize int) (*Response[chronikpb.TxHistoryPage], error) {
	return get(ctx, s.client, s.path("confirmed-txs")+pageQueryString(page, pageSize), chronikpb.UnmarshalTxHistoryPage)
}

// History pages through the script's full history, newest first,
// mempool transactions included.
func (s *ScriptClient) History(ctx context.Context, page, pageSize int) (*Response[chronikpb.TxHistoryPage], error) {
	return get(ctx, s.client, s.path("history")+pageQueryString(page, pageSize), chronikpb.UnmarshalTxHistoryPage)
}

// UnconfirmedTxs returns the script's mempool transactions. The endpoint
// takes no pagination.
func (s *ScriptClient) UnconfirmedTxs(ctx context.Context) (*Response[chronikpb.TxHistoryPage], error) {
	return get(ctx, s.client, s.path("unconfirmed-txs"), chronikpb.UnmarshalTxHistoryPage)
}

// Utxos returns the script's unspent outputs.
func (s *ScriptClient) Utxos(ctx context.Context) (*Response[chronikpb.ScriptUtxos], error) {
	return get(ctx, s.client, s.path("utxos"), chronikpb.UnmarshalScriptUtxos)
}

func (s *ScriptClient) path(endpoint string) string {
	return fmt.Sprintf("/script/%s/%s/%s", s.scriptType, s.payload, endpoint)
}

// pageQueryString renders the optional pagination suffix. Absent means
// page < 0 and pageSize <= 0; page 0 is a real value since pages are
// numbered from zero. Present values always appear in page, page_size
// order.
func pageQueryString(page, pageSize int) string {
	switch {
	case page >= 0 && pageSize > 0:
		return fmt.Sprintf("?page=%d&page_size=%d", page, pageSize)
	case page >= 0:
		return fmt.Sprintf("?page=%d", page)
	case pageSize > 0:
		return fmt.Sprintf("?page_size=%d", pageSize)
	default:
		return ""
	}
}
