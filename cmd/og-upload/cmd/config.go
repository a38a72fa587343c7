package cmd

import (
	"errors"
	"math/big"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Modenjaya/og-upload/pkg/types"
)

const (
	flagConfig          = "config"
	flagRPCURL          = "rpc-url"
	flagIndexerURL      = "indexer-url"
	flagChainID         = "chain-id"
	flagContract        = "contract"
	flagExplorerURL     = "explorer-url"
	flagKeysFile        = "keys-file"
	flagProxyFile       = "proxy-file"
	flagCount           = "count"
	flagMinBalance      = "min-balance"
	flagStorageFee      = "storage-fee"
	flagDefaultGasLimit = "default-gas-limit"
	flagLogLevel        = "log-level"
	flagHTTPTimeout     = "http-timeout"

	envPrefix = "OGUPLOAD"
)

// Config is the resolved runtime configuration.
type Config struct {
	RPCURL          string
	IndexerURL      string
	ChainID         uint64
	Contract        common.Address
	ExplorerURL     string
	KeysFile        string
	ProxyFile       string
	Count           int
	MinBalance      *big.Int
	StorageFee      *big.Int
	DefaultGasLimit uint64
	LogLevel        string
	HTTPTimeout     time.Duration
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "path to a YAML config file (default ./config.yaml if present)")
	fs.String(flagRPCURL, types.DefaultRPCURL, "EVM JSON-RPC endpoint")
	fs.String(flagIndexerURL, types.DefaultIndexerURL, "storage indexer base URL")
	fs.Uint64(flagChainID, types.DefaultChainID, "expected chain id")
	fs.String(flagContract, types.DefaultContractAddress, "flow contract address")
	fs.String(flagExplorerURL, types.DefaultExplorerURL, "explorer transaction URL prefix")
	fs.String(flagKeysFile, types.DefaultKeysFile, "file with one private key per line")
	fs.String(flagProxyFile, types.DefaultProxyFile, "file with one proxy URL per line")
	fs.Int(flagCount, 0, "uploads per wallet (prompted when zero)")
	fs.String(flagMinBalance, types.DefaultMinBalance, "minimum wallet balance in OG")
	fs.String(flagStorageFee, types.DefaultStorageFee, "storage fee sent with each registration, in OG")
	fs.Uint64(flagDefaultGasLimit, types.DefaultGasLimit, "gas limit used when estimation fails")
	fs.String(flagLogLevel, "info", "log level (trace, debug, info, warn, error)")
	fs.Duration(flagHTTPTimeout, 30*time.Second, "timeout for each HTTP request")
}

// newViper layers flags over OGUPLOAD_* env vars over the config file.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, types.ErrConfiguration.Wrapf("read config: %s", err)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		RPCURL:          v.GetString(flagRPCURL),
		IndexerURL:      strings.TrimRight(v.GetString(flagIndexerURL), "/"),
		ChainID:         v.GetUint64(flagChainID),
		ExplorerURL:     v.GetString(flagExplorerURL),
		KeysFile:        v.GetString(flagKeysFile),
		ProxyFile:       v.GetString(flagProxyFile),
		Count:           v.GetInt(flagCount),
		DefaultGasLimit: v.GetUint64(flagDefaultGasLimit),
		LogLevel:        v.GetString(flagLogLevel),
		HTTPTimeout:     v.GetDuration(flagHTTPTimeout),
	}

	contract := v.GetString(flagContract)
	if !common.IsHexAddress(contract) {
		return Config{}, types.ErrConfiguration.Wrapf("invalid contract address %q", contract)
	}
	cfg.Contract = common.HexToAddress(contract)

	var err error
	if cfg.MinBalance, err = types.ParseEther(v.GetString(flagMinBalance)); err != nil {
		return Config{}, errorsmod.Wrap(err, flagMinBalance)
	}
	if cfg.StorageFee, err = types.ParseEther(v.GetString(flagStorageFee)); err != nil {
		return Config{}, errorsmod.Wrap(err, flagStorageFee)
	}
	if cfg.ChainID == 0 {
		return Config{}, types.ErrConfiguration.Wrap("chain id must be set")
	}
	if cfg.Count < 0 {
		return Config{}, types.ErrConfiguration.Wrapf("count must not be negative, got %d", cfg.Count)
	}
	return cfg, nil
}
