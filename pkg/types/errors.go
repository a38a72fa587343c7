package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace groups the upload pipeline errors.
const Codespace = "ogupload"

var (
	ErrConfiguration          = errorsmod.Register(Codespace, 2, "configuration error")
	ErrTransientNetwork       = errorsmod.Register(Codespace, 3, "transient network error")
	ErrInsufficientBalance    = errorsmod.Register(Codespace, 4, "insufficient balance")
	ErrHashCollisionExhausted = errorsmod.Register(Codespace, 5, "unique content hash attempts exhausted")
	ErrTransactionTimeout     = errorsmod.Register(Codespace, 6, "transaction not confirmed within timeout")
	ErrTransactionFailed      = errorsmod.Register(Codespace, 7, "transaction failed")
	ErrChainMismatch          = errorsmod.Register(Codespace, 8, "chain id mismatch")
	ErrIndexerRejected        = errorsmod.Register(Codespace, 9, "indexer rejected request")
)
