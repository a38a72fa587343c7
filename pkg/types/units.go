package types

import (
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/params"
)

// ParseEther converts a decimal OG amount (18 decimals) into wei.
func ParseEther(amount string) (*big.Int, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(strings.TrimSpace(amount))
	if err != nil {
		return nil, ErrConfiguration.Wrapf("invalid amount %q: %s", amount, err)
	}
	if dec.IsNegative() {
		return nil, ErrConfiguration.Wrapf("amount %q must not be negative", amount)
	}
	return dec.MulInt64(params.Ether).TruncateInt().BigInt(), nil
}

// FormatEther renders wei as a decimal OG amount.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return sdkmath.LegacyNewDecFromBigIntWithPrec(wei, 18).String()
}
