package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Modenjaya/og-upload/pkg/types"
)

const privateKeyHexLen = 64

// Identity is a signing wallet loaded from the key file.
type Identity struct {
	Key     *ecdsa.PrivateKey
	Address common.Address
	Index   int
}

// normalizeKey strips whitespace and an optional 0x prefix.
func normalizeKey(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), "0x")
}

// ValidatePrivateKey reports whether raw is a 64-char hex secp256k1 key,
// with or without a 0x prefix.
func ValidatePrivateKey(raw string) bool {
	key := normalizeKey(raw)
	if len(key) != privateKeyHexLen {
		return false
	}
	if _, err := hex.DecodeString(key); err != nil {
		return false
	}
	_, err := crypto.HexToECDSA(key)
	return err == nil
}

// NewIdentity parses raw and derives its address.
func NewIdentity(raw string, index int) (Identity, error) {
	if !ValidatePrivateKey(raw) {
		return Identity{}, types.ErrConfiguration.Wrapf("invalid private key at position %d", index+1)
	}
	key, err := crypto.HexToECDSA(normalizeKey(raw))
	if err != nil {
		return Identity{}, types.ErrConfiguration.Wrapf("private key at position %d: %s", index+1, err)
	}
	return Identity{
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Index:   index,
	}, nil
}
