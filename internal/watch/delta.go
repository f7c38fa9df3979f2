package watch

import (
	"bytes"
	"fmt"

	"chronikwatch/chronikpb"
	"chronikwatch/internal/wallet"
)

// P2PKHScript renders the locking script OP_DUP OP_HASH160 <payload>
// OP_EQUALVERIFY OP_CHECKSIG.
func P2PKHScript(payload []byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xa9, 0x14)
	script = append(script, payload...)
	return append(script, 0x88, 0xac)
}

// P2SHScript renders the locking script OP_HASH160 <payload> OP_EQUAL.
func P2SHScript(payload []byte) []byte {
	script := make([]byte, 0, 23)
	script = append(script, 0xa9, 0x14)
	script = append(script, payload...)
	return append(script, 0x87)
}

// ScriptFor maps a script identity to its locking script bytes.
func ScriptFor(scriptType string, payload []byte) ([]byte, error) {
	switch scriptType {
	case wallet.ScriptTypeP2PKH:
		return P2PKHScript(payload), nil
	case wallet.ScriptTypeP2SH:
		return P2SHScript(payload), nil
	}
	return nil, fmt.Errorf("unsupported script type %q", scriptType)
}

// DeltaSats is the net satoshi movement of tx for the given locking
// script: outputs paying to it minus inputs spending from it.
func DeltaSats(tx *chronikpb.Tx, script []byte) int64 {
	var delta int64
	for _, out := range tx.Outputs {
		if bytes.Equal(out.OutputScript, script) {
			delta += out.Value
		}
	}
	for _, in := range tx.Inputs {
		if bytes.Equal(in.OutputScript, script) {
			delta -= in.Value
		}
	}
	return delta
}
