package models

import "time"

type TxStatus string

const (
	TxSeen      TxStatus = "seen"
	TxConfirmed TxStatus = "confirmed"
	TxFinalized TxStatus = "finalized"
)

type Watch struct {
	WatchID         string
	Label           string
	ScriptType      string
	PayloadHex      string
	DerivationIndex *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type WatchTx struct {
	Txid        string
	WatchID     string
	DeltaSats   int64
	Status      TxStatus
	BlockHeight *int32
	BlockHash   *string
	FirstSeenAt time.Time
	UpdatedAt   time.Time
}
