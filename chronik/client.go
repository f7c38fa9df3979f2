// Package chronik is a client for the Chronik indexer HTTP and websocket
// API. Every query is one blocking GET or POST with a protobuf body; the
// indexer answers protobuf on success and a fixed error schema on every
// non-200, always under Content-Type application/x-protobuf.
package chronik

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"chronikwatch/chronikpb"
)

// DefaultTimeout bounds each round trip unless WithTimeout overrides it.
const DefaultTimeout = 30 * time.Second

const protobufContentType = "application/x-protobuf"

type Client struct {
	baseURL string
	wsURL   string
	client  *http.Client
}

type Option func(*options)

type options struct {
	timeout time.Duration
	tls     bool
}

// WithTimeout sets the per-call deadline. Zero disables it, making calls
// block until the server answers or the context is cancelled.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTLS switches the client to https and wss URLs.
func WithTLS() Option {
	return func(o *options) { o.tls = true }
}

// NewClient builds a client for the indexer at host:port. The client is
// immutable and safe for concurrent use.
func NewClient(host string, port int, opts ...Option) *Client {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	scheme, wsScheme := "http", "ws"
	if o.tls {
		scheme, wsScheme = "https", "wss"
	}
	return &Client{
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, host, port),
		wsURL:   fmt.Sprintf("%s://%s:%d/ws", wsScheme, host, port),
		client: &http.Client{
			Timeout: o.timeout,
			// One fresh connection per call, torn down afterwards.
			Transport: &http.Transport{DisableKeepAlives: true},
			// A redirect would be a second request; hand back the
			// redirect response instead.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Block queries a block by hex hash or decimal height, passed through to
// the path unvalidated.
func (c *Client) Block(ctx context.Context, hashOrHeight string) (*Response[chronikpb.Block], error) {
	return get(ctx, c, "/block/"+hashOrHeight, chronikpb.UnmarshalBlock)
}

// BlockByHeight is the numeric spelling of Block.
func (c *Client) BlockByHeight(ctx context.Context, height int32) (*Response[chronikpb.Block], error) {
	return c.Block(ctx, strconv.FormatInt(int64(height), 10))
}

// BlockTxs pages through the transactions of a block. Pagination follows
// the same optional rules as ScriptClient queries.
func (c *Client) BlockTxs(ctx context.Context, hashOrHeight string, page, pageSize int) (*Response[chronikpb.TxHistoryPage], error) {
	return get(ctx, c, "/block-txs/"+hashOrHeight+pageQueryString(page, pageSize), chronikpb.UnmarshalTxHistoryPage)
}

// Tx queries a transaction by txid.
func (c *Client) Tx(ctx context.Context, txid string) (*Response[chronikpb.Tx], error) {
	return get(ctx, c, "/tx/"+txid, chronikpb.UnmarshalTx)
}

// RawTx queries the serialized bytes of a transaction by txid.
func (c *Client) RawTx(ctx context.Context, txid string) (*Response[chronikpb.RawTx], error) {
	return get(ctx, c, "/raw-tx/"+txid, chronikpb.UnmarshalRawTx)
}

// BlockchainInfo queries the current tip.
func (c *Client) BlockchainInfo(ctx context.Context) (*Response[chronikpb.BlockchainInfo], error) {
	return get(ctx, c, "/blockchain-info", chronikpb.UnmarshalBlockchainInfo)
}

// BroadcastTx submits one raw transaction to the network.
func (c *Client) BroadcastTx(ctx context.Context, rawTx []byte, skipTokenChecks bool) (*Response[chronikpb.BroadcastTxResponse], error) {
	body := (&chronikpb.BroadcastTxRequest{RawTx: rawTx, SkipTokenChecks: skipTokenChecks}).Marshal()
	return post(ctx, c, "/broadcast-tx", body, chronikpb.UnmarshalBroadcastTxResponse)
}

// BroadcastTxs submits a batch of raw transactions; the indexer accepts
// all or none.
func (c *Client) BroadcastTxs(ctx context.Context, rawTxs [][]byte, skipTokenChecks bool) (*Response[chronikpb.BroadcastTxsResponse], error) {
	body := (&chronikpb.BroadcastTxsRequest{RawTxs: rawTxs, SkipTokenChecks: skipTokenChecks}).Marshal()
	return post(ctx, c, "/broadcast-txs", body, chronikpb.UnmarshalBroadcastTxsResponse)
}

func get[T any](ctx context.Context, c *Client, path string, decode func([]byte) (*T, error)) (*Response[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return exchange(c, req, decode)
}

func post[T any](ctx context.Context, c *Client, path string, body []byte, decode func([]byte) (*T, error)) (*Response[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", protobufContentType)
	return exchange(c, req, decode)
}

// exchange runs one request and classifies the response into an envelope.
// The content type is verified before any decode, whatever the status;
// transport errors pass through untouched.
func exchange[T any](c *Client, req *http.Request, decode func([]byte) (*T, error)) (*Response[T], error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != protobufContentType {
		return nil, &ContentTypeError{ContentType: ct, Body: raw}
	}
	if resp.StatusCode != http.StatusOK {
		apiErr, err := chronikpb.UnmarshalError(raw)
		if err != nil {
			return nil, &DecodeError{What: "error message", Err: err}
		}
		return &Response[T]{status: resp.StatusCode, err: apiErr}, nil
	}
	ok, err := decode(raw)
	if err != nil {
		return nil, &DecodeError{What: "response body", Err: err}
	}
	return &Response[T]{status: resp.StatusCode, ok: ok}, nil
}
