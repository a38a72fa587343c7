package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ContentDescriptor is one upload payload. Root is the SHA-256 of the exact
// bytes Data encodes.
type ContentDescriptor struct {
	Root common.Hash
	Data string
	Size uint64
}

// RootHex returns the 0x-prefixed digest.
func (d ContentDescriptor) RootHex() string {
	return d.Root.Hex()
}

// TransactionRecord tracks a submitted registration. BlockNumber and Status
// are only set once a receipt has been observed.
type TransactionRecord struct {
	Hash        common.Hash
	Nonce       uint64
	GasPrice    *big.Int
	GasLimit    uint64
	Value       *big.Int
	BlockNumber *big.Int
	Status      *uint64
}

// Confirmed reports whether a receipt has been attached.
func (r *TransactionRecord) Confirmed() bool {
	return r != nil && r.BlockNumber != nil && r.Status != nil
}

// ExplorerLink joins the explorer base and the tx hash.
func ExplorerLink(base string, hash common.Hash) string {
	return fmt.Sprintf("%s%s", base, hash.Hex())
}
