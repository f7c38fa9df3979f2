package chronikpb

import "google.golang.org/protobuf/encoding/protowire"

// Marshal helpers. Zero-value scalars are omitted, matching proto3 encoding.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendInt32Field sign-extends, as proto3 int32 fields are encoded as 64-bit
// varints.
func appendInt32Field(b []byte, num protowire.Number, v int32) []byte {
	return appendVarintField(b, num, uint64(int64(v)))
}

func appendInt64Field(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, uint64(v))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBoolField(b []byte, num protowire.Number) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func (m *Error) Marshal() []byte {
	var b []byte
	if m.Msg != "" {
		b = appendStringField(b, 1, m.Msg)
	}
	return b
}

func (m *OutPoint) Marshal() []byte {
	var b []byte
	if len(m.Txid) > 0 {
		b = appendBytesField(b, 1, m.Txid)
	}
	if m.OutIdx != 0 {
		b = appendVarintField(b, 2, uint64(m.OutIdx))
	}
	return b
}

func (m *SpentBy) Marshal() []byte {
	var b []byte
	if len(m.Txid) > 0 {
		b = appendBytesField(b, 1, m.Txid)
	}
	if m.InputIdx != 0 {
		b = appendVarintField(b, 2, uint64(m.InputIdx))
	}
	return b
}

func (m *TxInput) Marshal() []byte {
	var b []byte
	if m.PrevOut != nil {
		b = appendBytesField(b, 1, m.PrevOut.Marshal())
	}
	if len(m.InputScript) > 0 {
		b = appendBytesField(b, 2, m.InputScript)
	}
	if len(m.OutputScript) > 0 {
		b = appendBytesField(b, 3, m.OutputScript)
	}
	if m.Value != 0 {
		b = appendInt64Field(b, 4, m.Value)
	}
	if m.SequenceNo != 0 {
		b = appendVarintField(b, 5, uint64(m.SequenceNo))
	}
	return b
}

func (m *TxOutput) Marshal() []byte {
	var b []byte
	if m.Value != 0 {
		b = appendInt64Field(b, 1, m.Value)
	}
	if len(m.OutputScript) > 0 {
		b = appendBytesField(b, 2, m.OutputScript)
	}
	if m.SpentBy != nil {
		b = appendBytesField(b, 4, m.SpentBy.Marshal())
	}
	return b
}

func (m *BlockMetadata) Marshal() []byte {
	var b []byte
	if m.Height != 0 {
		b = appendInt32Field(b, 1, m.Height)
	}
	if len(m.Hash) > 0 {
		b = appendBytesField(b, 2, m.Hash)
	}
	if m.Timestamp != 0 {
		b = appendInt64Field(b, 3, m.Timestamp)
	}
	if m.IsFinal {
		b = appendBoolField(b, 4)
	}
	return b
}

func (m *Tx) Marshal() []byte {
	var b []byte
	if len(m.Txid) > 0 {
		b = appendBytesField(b, 1, m.Txid)
	}
	if m.Version != 0 {
		b = appendInt32Field(b, 2, m.Version)
	}
	for _, in := range m.Inputs {
		b = appendBytesField(b, 3, in.Marshal())
	}
	for _, out := range m.Outputs {
		b = appendBytesField(b, 4, out.Marshal())
	}
	if m.LockTime != 0 {
		b = appendVarintField(b, 5, uint64(m.LockTime))
	}
	if m.Block != nil {
		b = appendBytesField(b, 8, m.Block.Marshal())
	}
	if m.TimeFirstSeen != 0 {
		b = appendInt64Field(b, 9, m.TimeFirstSeen)
	}
	if m.Size != 0 {
		b = appendVarintField(b, 11, uint64(m.Size))
	}
	if m.IsCoinbase {
		b = appendBoolField(b, 12)
	}
	return b
}

func (m *BlockInfo) Marshal() []byte {
	var b []byte
	if len(m.Hash) > 0 {
		b = appendBytesField(b, 1, m.Hash)
	}
	if len(m.PrevHash) > 0 {
		b = appendBytesField(b, 2, m.PrevHash)
	}
	if m.Height != 0 {
		b = appendInt32Field(b, 3, m.Height)
	}
	if m.NBits != 0 {
		b = appendVarintField(b, 4, uint64(m.NBits))
	}
	if m.Timestamp != 0 {
		b = appendInt64Field(b, 5, m.Timestamp)
	}
	if m.BlockSize != 0 {
		b = appendVarintField(b, 6, m.BlockSize)
	}
	if m.NumTxs != 0 {
		b = appendVarintField(b, 7, m.NumTxs)
	}
	if m.NumInputs != 0 {
		b = appendVarintField(b, 8, m.NumInputs)
	}
	if m.NumOutputs != 0 {
		b = appendVarintField(b, 9, m.NumOutputs)
	}
	if m.SumInputSats != 0 {
		b = appendInt64Field(b, 10, m.SumInputSats)
	}
	if m.SumCoinbaseOutputSats != 0 {
		b = appendInt64Field(b, 11, m.SumCoinbaseOutputSats)
	}
	if m.SumNormalOutputSats != 0 {
		b = appendInt64Field(b, 12, m.SumNormalOutputSats)
	}
	if m.SumBurnedSats != 0 {
		b = appendInt64Field(b, 13, m.SumBurnedSats)
	}
	if m.IsFinal {
		b = appendBoolField(b, 14)
	}
	return b
}

func (m *Block) Marshal() []byte {
	var b []byte
	if m.BlockInfo != nil {
		b = appendBytesField(b, 1, m.BlockInfo.Marshal())
	}
	return b
}

func (m *TxHistoryPage) Marshal() []byte {
	var b []byte
	for _, tx := range m.Txs {
		b = appendBytesField(b, 1, tx.Marshal())
	}
	if m.NumPages != 0 {
		b = appendVarintField(b, 2, uint64(m.NumPages))
	}
	if m.NumTxs != 0 {
		b = appendVarintField(b, 3, uint64(m.NumTxs))
	}
	return b
}

func (m *ScriptUtxo) Marshal() []byte {
	var b []byte
	if m.Outpoint != nil {
		b = appendBytesField(b, 1, m.Outpoint.Marshal())
	}
	if m.BlockHeight != 0 {
		b = appendInt32Field(b, 2, m.BlockHeight)
	}
	if m.IsCoinbase {
		b = appendBoolField(b, 3)
	}
	if m.Value != 0 {
		b = appendInt64Field(b, 5, m.Value)
	}
	if m.IsFinal {
		b = appendBoolField(b, 10)
	}
	return b
}

func (m *ScriptUtxos) Marshal() []byte {
	var b []byte
	if len(m.Script) > 0 {
		b = appendBytesField(b, 1, m.Script)
	}
	for _, utxo := range m.Utxos {
		b = appendBytesField(b, 2, utxo.Marshal())
	}
	return b
}

func (m *BlockchainInfo) Marshal() []byte {
	var b []byte
	if len(m.TipHash) > 0 {
		b = appendBytesField(b, 1, m.TipHash)
	}
	if m.TipHeight != 0 {
		b = appendInt32Field(b, 2, m.TipHeight)
	}
	return b
}

func (m *RawTx) Marshal() []byte {
	var b []byte
	if len(m.RawTx) > 0 {
		b = appendBytesField(b, 1, m.RawTx)
	}
	return b
}

func (m *BroadcastTxRequest) Marshal() []byte {
	var b []byte
	if len(m.RawTx) > 0 {
		b = appendBytesField(b, 1, m.RawTx)
	}
	if m.SkipTokenChecks {
		b = appendBoolField(b, 2)
	}
	return b
}

func (m *BroadcastTxResponse) Marshal() []byte {
	var b []byte
	if len(m.Txid) > 0 {
		b = appendBytesField(b, 1, m.Txid)
	}
	return b
}

func (m *BroadcastTxsRequest) Marshal() []byte {
	var b []byte
	for _, raw := range m.RawTxs {
		b = appendBytesField(b, 1, raw)
	}
	if m.SkipTokenChecks {
		b = appendBoolField(b, 2)
	}
	return b
}

func (m *BroadcastTxsResponse) Marshal() []byte {
	var b []byte
	for _, txid := range m.Txids {
		b = appendBytesField(b, 1, txid)
	}
	return b
}

func (m *MsgBlock) Marshal() []byte {
	var b []byte
	if m.MsgType != 0 {
		b = appendVarintField(b, 1, uint64(m.MsgType))
	}
	if len(m.BlockHash) > 0 {
		b = appendBytesField(b, 2, m.BlockHash)
	}
	if m.BlockHeight != 0 {
		b = appendInt32Field(b, 3, m.BlockHeight)
	}
	return b
}

func (m *MsgTx) Marshal() []byte {
	var b []byte
	if m.MsgType != 0 {
		b = appendVarintField(b, 1, uint64(m.MsgType))
	}
	if len(m.Txid) > 0 {
		b = appendBytesField(b, 2, m.Txid)
	}
	return b
}

func (m *WsMsg) Marshal() []byte {
	var b []byte
	if m.Error != nil {
		b = appendBytesField(b, 1, m.Error.Marshal())
	}
	if m.Block != nil {
		b = appendBytesField(b, 2, m.Block.Marshal())
	}
	if m.Tx != nil {
		b = appendBytesField(b, 3, m.Tx.Marshal())
	}
	return b
}

func (m *WsSub) Marshal() []byte {
	var b []byte
	if m.IsUnsub {
		b = appendBoolField(b, 1)
	}
	if m.Blocks != nil {
		b = appendBytesField(b, 2, nil)
	}
	if m.Script != nil {
		b = appendBytesField(b, 3, m.Script.Marshal())
	}
	return b
}

func (m *WsSubScript) Marshal() []byte {
	var b []byte
	if m.ScriptType != "" {
		b = appendStringField(b, 1, m.ScriptType)
	}
	if len(m.Payload) > 0 {
		b = appendBytesField(b, 2, m.Payload)
	}
	return b
}
