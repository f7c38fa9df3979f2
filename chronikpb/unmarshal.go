package chronikpb

import "google.golang.org/protobuf/encoding/protowire"

// unmarshalFields walks the wire fields of data and hands each one to fn.
// fn reports how many bytes it consumed; zero means the field is unknown to
// the message and is skipped wholesale.
func unmarshalFields(data []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		consumed, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if consumed == 0 {
			consumed = protowire.ConsumeFieldValue(num, typ, data)
			if consumed < 0 {
				return protowire.ParseError(consumed)
			}
		}
		data = data[consumed:]
	}
	return nil
}

func cloneBytes(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	return append([]byte(nil), v...)
}

func (m *Error) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Msg = v
			return n, nil
		}
		return 0, nil
	})
}

func (m *OutPoint) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txid = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.OutIdx = uint32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *SpentBy) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txid = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.InputIdx = uint32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *TxInput) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			prevOut := new(OutPoint)
			if err := prevOut.Unmarshal(v); err != nil {
				return 0, err
			}
			m.PrevOut = prevOut
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.InputScript = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.OutputScript = cloneBytes(v)
			return n, nil
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = int64(v)
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.SequenceNo = uint32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *TxOutput) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = int64(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.OutputScript = cloneBytes(v)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			spentBy := new(SpentBy)
			if err := spentBy.Unmarshal(v); err != nil {
				return 0, err
			}
			m.SpentBy = spentBy
			return n, nil
		}
		return 0, nil
	})
}

func (m *BlockMetadata) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Height = int32(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Hash = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Timestamp = int64(v)
			return n, nil
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.IsFinal = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *Tx) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txid = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Version = int32(v)
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			in := new(TxInput)
			if err := in.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Inputs = append(m.Inputs, in)
			return n, nil
		case num == 4 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			out := new(TxOutput)
			if err := out.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Outputs = append(m.Outputs, out)
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.LockTime = uint32(v)
			return n, nil
		case num == 8 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			block := new(BlockMetadata)
			if err := block.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Block = block
			return n, nil
		case num == 9 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.TimeFirstSeen = int64(v)
			return n, nil
		case num == 11 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Size = uint32(v)
			return n, nil
		case num == 12 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.IsCoinbase = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *BlockInfo) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			switch num {
			case 1:
				m.Hash = cloneBytes(v)
			case 2:
				m.PrevHash = cloneBytes(v)
			default:
				return 0, nil
			}
			return n, nil
		}
		if typ != protowire.VarintType {
			return 0, nil
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		switch num {
		case 3:
			m.Height = int32(v)
		case 4:
			m.NBits = uint32(v)
		case 5:
			m.Timestamp = int64(v)
		case 6:
			m.BlockSize = v
		case 7:
			m.NumTxs = v
		case 8:
			m.NumInputs = v
		case 9:
			m.NumOutputs = v
		case 10:
			m.SumInputSats = int64(v)
		case 11:
			m.SumCoinbaseOutputSats = int64(v)
		case 12:
			m.SumNormalOutputSats = int64(v)
		case 13:
			m.SumBurnedSats = int64(v)
		case 14:
			m.IsFinal = v != 0
		default:
			return 0, nil
		}
		return n, nil
	})
}

func (m *Block) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			info := new(BlockInfo)
			if err := info.Unmarshal(v); err != nil {
				return 0, err
			}
			m.BlockInfo = info
			return n, nil
		}
		return 0, nil
	})
}

func (m *TxHistoryPage) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			tx := new(Tx)
			if err := tx.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Txs = append(m.Txs, tx)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.NumPages = uint32(v)
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.NumTxs = uint32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *ScriptUtxo) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			outpoint := new(OutPoint)
			if err := outpoint.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Outpoint = outpoint
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.BlockHeight = int32(v)
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.IsCoinbase = v != 0
			return n, nil
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Value = int64(v)
			return n, nil
		case num == 10 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.IsFinal = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *ScriptUtxos) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Script = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			utxo := new(ScriptUtxo)
			if err := utxo.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Utxos = append(m.Utxos, utxo)
			return n, nil
		}
		return 0, nil
	})
}

func (m *BlockchainInfo) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.TipHash = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.TipHeight = int32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *RawTx) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.RawTx = cloneBytes(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *BroadcastTxRequest) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.RawTx = cloneBytes(v)
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.SkipTokenChecks = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *BroadcastTxResponse) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txid = cloneBytes(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *BroadcastTxsRequest) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.RawTxs = append(m.RawTxs, cloneBytes(v))
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.SkipTokenChecks = v != 0
			return n, nil
		}
		return 0, nil
	})
}

func (m *BroadcastTxsResponse) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txids = append(m.Txids, cloneBytes(v))
			return n, nil
		}
		return 0, nil
	})
}

func (m *MsgBlock) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.MsgType = BlockMsgType(int32(v))
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.BlockHash = cloneBytes(v)
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.BlockHeight = int32(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *MsgTx) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.MsgType = TxMsgType(int32(v))
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Txid = cloneBytes(v)
			return n, nil
		}
		return 0, nil
	})
}

func (m *WsMsg) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			e := new(Error)
			if err := e.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Error, m.Block, m.Tx = e, nil, nil
			return n, nil
		case 2:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			blk := new(MsgBlock)
			if err := blk.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Error, m.Block, m.Tx = nil, blk, nil
			return n, nil
		case 3:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			tx := new(MsgTx)
			if err := tx.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Error, m.Block, m.Tx = nil, nil, tx
			return n, nil
		}
		return 0, nil
	})
}

func (m *WsSub) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.IsUnsub = v != 0
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			_, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Blocks, m.Script = &WsSubBlocks{}, nil
			return n, nil
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			script := new(WsSubScript)
			if err := script.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Blocks, m.Script = nil, script
			return n, nil
		}
		return 0, nil
	})
}

func (m *WsSubScript) Unmarshal(data []byte) error {
	return unmarshalFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.ScriptType = v
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Payload = cloneBytes(v)
			return n, nil
		}
		return 0, nil
	})
}

// Decode helpers in the shape the client's transport expects.

func UnmarshalError(b []byte) (*Error, error) {
	m := new(Error)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalBlock(b []byte) (*Block, error) {
	m := new(Block)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalTx(b []byte) (*Tx, error) {
	m := new(Tx)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalTxHistoryPage(b []byte) (*TxHistoryPage, error) {
	m := new(TxHistoryPage)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalScriptUtxos(b []byte) (*ScriptUtxos, error) {
	m := new(ScriptUtxos)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalBlockchainInfo(b []byte) (*BlockchainInfo, error) {
	m := new(BlockchainInfo)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalRawTx(b []byte) (*RawTx, error) {
	m := new(RawTx)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalBroadcastTxResponse(b []byte) (*BroadcastTxResponse, error) {
	m := new(BroadcastTxResponse)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalBroadcastTxsResponse(b []byte) (*BroadcastTxsResponse, error) {
	m := new(BroadcastTxsResponse)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}

func UnmarshalWsMsg(b []byte) (*WsMsg, error) {
	m := new(WsMsg)
	if err := m.Unmarshal(b); err != nil {
		return nil, err
	}
	return m, nil
}
