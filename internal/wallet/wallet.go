package wallet

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"golang.org/x/crypto/ripemd160"
)

// Legacy base58check version bytes.
const (
	pubKeyHashVersion = 0x00
	scriptHashVersion = 0x05
)

const (
	ScriptTypeP2PKH = "p2pkh"
	ScriptTypeP2SH  = "p2sh"
)

var (
	ErrBadAddress     = errors.New("malformed address")
	ErrUnknownVersion = errors.New("unknown address version byte")
)

type AddressDeriver struct {
	XPub string
}

// Derive expects XPub at path m/44'/899'/0'/0 and returns the p2pkh
// script payload of child index i: hash160 of the compressed pubkey.
func (d AddressDeriver) Derive(index uint32) ([]byte, error) {
	if d.XPub == "" {
		return nil, errors.New("xpub is not configured")
	}

	key, err := hdkeychain.NewKeyFromString(d.XPub)
	if err != nil {
		return nil, err
	}
	child, err := key.Derive(index)
	if err != nil {
		return nil, err
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}
	return Hash160(pubKey.SerializeCompressed()), nil
}

// Hash160 is sha256 followed by ripemd160, the payload form used by
// p2pkh and p2sh scripts.
func Hash160(b []byte) []byte {
	hash := sha256.Sum256(b)
	rip := ripemd160.New()
	_, _ = rip.Write(hash[:])
	return rip.Sum(nil)
}

// ParseAddress decodes a legacy base58check address into the script
// identity Chronik queries by.
func ParseAddress(addr string) (scriptType string, payload []byte, err error) {
	decoded, version, err := base58.CheckDecode(addr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	if len(decoded) != ripemd160.Size {
		return "", nil, fmt.Errorf("%w: payload is %d bytes", ErrBadAddress, len(decoded))
	}
	switch version {
	case pubKeyHashVersion:
		return ScriptTypeP2PKH, decoded, nil
	case scriptHashVersion:
		return ScriptTypeP2SH, decoded, nil
	}
	return "", nil, fmt.Errorf("%w: 0x%02x", ErrUnknownVersion, version)
}

// P2PKHAddress renders a p2pkh payload back to its legacy address form.
func P2PKHAddress(payload []byte) string {
	return base58.CheckEncode(payload, pubKeyHashVersion)
}

// P2SHAddress renders a p2sh payload back to its legacy address form.
func P2SHAddress(payload []byte) string {
	return base58.CheckEncode(payload, scriptHashVersion)
}
