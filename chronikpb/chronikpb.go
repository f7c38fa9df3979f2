// Package chronikpb contains the protobuf message types spoken by the Chronik
// indexer API, together with hand-maintained wire codecs.
//
// Chronik ships its schema as a .proto file but publishes no Go bindings, so
// the messages here are encoded and decoded directly with encoding/protowire.
// Field numbers must stay in sync with the upstream schema. Unknown fields are
// skipped on decode, so payloads from newer server versions stay readable.
package chronikpb

import "encoding/hex"

// HashHex renders a txid or block hash field in display byte order.
// Chronik carries hashes little-endian on the wire while its URL paths
// take them big-endian.
func HashHex(b []byte) string {
	rev := make([]byte, len(b))
	for i, c := range b {
		rev[len(b)-1-i] = c
	}
	return hex.EncodeToString(rev)
}

// Error is the single error payload returned by every non-OK Chronik response,
// regardless of endpoint.
type Error struct {
	Msg string
}

// OutPoint references one output of a transaction.
type OutPoint struct {
	Txid   []byte
	OutIdx uint32
}

// SpentBy references the input of the transaction that spent an output.
type SpentBy struct {
	Txid     []byte
	InputIdx uint32
}

type TxInput struct {
	PrevOut      *OutPoint
	InputScript  []byte
	OutputScript []byte
	Value        int64
	SequenceNo   uint32
}

type TxOutput struct {
	Value        int64
	OutputScript []byte
	SpentBy      *SpentBy
}

// BlockMetadata is the block placement of a confirmed transaction. It is
// absent on mempool transactions.
type BlockMetadata struct {
	Height    int32
	Hash      []byte
	Timestamp int64
	IsFinal   bool
}

// Tx is a transaction as indexed by Chronik. Txid and all hashes are
// little-endian raw bytes, amounts are satoshis.
type Tx struct {
	Txid          []byte
	Version       int32
	Inputs        []*TxInput
	Outputs       []*TxOutput
	LockTime      uint32
	Block         *BlockMetadata
	TimeFirstSeen int64
	Size          uint32
	IsCoinbase    bool
}

// BlockInfo carries the indexed header data and aggregate stats of one block.
type BlockInfo struct {
	Hash      []byte
	PrevHash  []byte
	Height    int32
	NBits     uint32
	Timestamp int64

	BlockSize  uint64
	NumTxs     uint64
	NumInputs  uint64
	NumOutputs uint64

	SumInputSats          int64
	SumCoinbaseOutputSats int64
	SumNormalOutputSats   int64
	SumBurnedSats         int64

	IsFinal bool
}

type Block struct {
	BlockInfo *BlockInfo
}

// TxHistoryPage is one page of a paginated transaction history.
type TxHistoryPage struct {
	Txs      []*Tx
	NumPages uint32
	NumTxs   uint32
}

type ScriptUtxo struct {
	Outpoint    *OutPoint
	BlockHeight int32
	IsCoinbase  bool
	Value       int64
	IsFinal     bool
}

// ScriptUtxos is the unspent output set of one script. Script holds the raw
// locking script bytes the UTXOs pay to.
type ScriptUtxos struct {
	Script []byte
	Utxos  []*ScriptUtxo
}

type BlockchainInfo struct {
	TipHash   []byte
	TipHeight int32
}

// RawTx wraps the raw serialized bytes of one transaction.
type RawTx struct {
	RawTx []byte
}

type BroadcastTxRequest struct {
	RawTx           []byte
	SkipTokenChecks bool
}

type BroadcastTxResponse struct {
	Txid []byte
}

type BroadcastTxsRequest struct {
	RawTxs          [][]byte
	SkipTokenChecks bool
}

type BroadcastTxsResponse struct {
	Txids [][]byte
}

// BlockMsgType says what happened to the block named in a MsgBlock.
type BlockMsgType int32

const (
	BlkConnected    BlockMsgType = 0
	BlkDisconnected BlockMsgType = 1
	BlkFinalized    BlockMsgType = 2
)

func (t BlockMsgType) String() string {
	switch t {
	case BlkConnected:
		return "BLK_CONNECTED"
	case BlkDisconnected:
		return "BLK_DISCONNECTED"
	case BlkFinalized:
		return "BLK_FINALIZED"
	}
	return "BLK_UNKNOWN"
}

// TxMsgType says what happened to the transaction named in a MsgTx.
type TxMsgType int32

const (
	TxAddedToMempool     TxMsgType = 0
	TxRemovedFromMempool TxMsgType = 1
	TxConfirmed          TxMsgType = 2
	TxFinalized          TxMsgType = 3
)

func (t TxMsgType) String() string {
	switch t {
	case TxAddedToMempool:
		return "TX_ADDED_TO_MEMPOOL"
	case TxRemovedFromMempool:
		return "TX_REMOVED_FROM_MEMPOOL"
	case TxConfirmed:
		return "TX_CONFIRMED"
	case TxFinalized:
		return "TX_FINALIZED"
	}
	return "TX_UNKNOWN"
}

type MsgBlock struct {
	MsgType     BlockMsgType
	BlockHash   []byte
	BlockHeight int32
}

type MsgTx struct {
	MsgType TxMsgType
	Txid    []byte
}

// WsMsg is one push message received over the websocket. Exactly one of the
// variant fields is set; decoding enforces this by clearing the others when a
// variant arrives.
type WsMsg struct {
	Error *Error
	Block *MsgBlock
	Tx    *MsgTx
}

// WsSub is a subscription change sent to the server over the websocket.
// Exactly one of Blocks and Script should be set.
type WsSub struct {
	IsUnsub bool
	Blocks  *WsSubBlocks
	Script  *WsSubScript
}

// WsSubBlocks subscribes to connect/disconnect/finalize messages for all
// blocks. It has no fields.
type WsSubBlocks struct{}

// WsSubScript subscribes to messages for all transactions touching one script,
// identified the same way as the /script/ HTTP endpoints.
type WsSubScript struct {
	ScriptType string
	Payload    []byte
}
