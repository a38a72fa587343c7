package registrar

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/Modenjaya/og-upload/pkg/types"
)

var gasMargin = sdkmath.LegacyMustNewDecFromStr(types.GasSafetyMultiplier)

// ApplyGasMargin returns ceil(estimate * 1.5).
func ApplyGasMargin(estimate uint64) uint64 {
	withMargin := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(estimate)).Mul(gasMargin)
	return withMargin.Ceil().TruncateInt().Uint64()
}

// RequiredFunds is gasPrice*gasLimit + value.
func RequiredFunds(gasPrice *big.Int, gasLimit uint64, value *big.Int) *big.Int {
	cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	return cost.Add(cost, value)
}
