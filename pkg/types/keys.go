package types

import "time"

const (
	// AppName is used for the binary name and the env var prefix.
	AppName = "og-upload"

	DefaultChainID         = 16601
	DefaultRPCURL          = "https://evmrpc-testnet.0g.ai"
	DefaultIndexerURL      = "https://indexer-storage-testnet-turbo.0g.ai"
	DefaultContractAddress = "0xbD75117F80b4E22698D0Cd7612d92BDb8eaff628"
	DefaultExplorerURL     = "https://chainscan-galileo.0g.ai/tx/"
	DefaultReferer         = "https://storagescan-galileo.0g.ai/"
	DefaultKeysFile        = "private_keys.txt"
	DefaultProxyFile       = "proxy.txt"

	// DefaultMinBalance covers worst-case gas plus the storage fee, in OG.
	DefaultMinBalance = "0.0015"
	// DefaultStorageFee is the on-chain registration payment, in OG.
	DefaultStorageFee = "0.000839233398436224"

	DefaultGasLimit = uint64(300_000)
)

const (
	MaxHashAttempts   = 5
	MaxUploadAttempts = 3

	ReceiptTimeout       = 300 * time.Second
	ReceiptInitialPoll   = 2 * time.Second
	ReceiptMaxPoll       = 30 * time.Second
	ReceiptPollGrowth    = 1.5
	GasSafetyMultiplier  = "1.5"
	RetryDelayMin        = 10 * time.Second
	RetryDelayMax        = 30 * time.Second
	DelayAfterSuccess    = 3 * time.Second
	DelayAfterFailure    = 5 * time.Second
	DelayBetweenAccounts = 10 * time.Second
)
