package cli

import (
	"time"

	"libra-txs/blockchains/client"
	"libra-txs/core"
	"libra-txs/core/configs"
	"libra-txs/core/configs/parsers"
	"libra-txs/core/configs/validators"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Keys of the values resolved through viper. Each one is filled, from the
// highest precedence to the lowest, by its command line flag, its
// environment variables, the configuration file and a built in default.
const (
	keyConfig    = "config"
	keyNodeURL   = "node_url"
	keyFaucetURL = "faucet_url"
	keyLogLevel  = "log_level"
)

// settings is what every command needs once flags, environment and
// configuration file are resolved.
type settings struct {
	logLevel core.LogLevel
	client   client.Config
	options  client.TransactionOptions
}

// bindEnv attaches the environment variables to their viper keys.
func bindEnv(v *viper.Viper) error {
	var err error

	err = v.BindEnv(keyNodeURL, "NODE_URL")
	if err != nil {
		return err
	}

	err = v.BindEnv(keyFaucetURL, "FAUCET_URL", "APTOS_FAUCET_URL")
	if err != nil {
		return err
	}

	return v.BindEnv(keyLogLevel, "LOG_LEVEL")
}

// loadSettings reads the configuration file and resolves the settings. A
// missing file is only an error when its path was given explicitly.
func loadSettings(v *viper.Viper, explicitConfig bool) (*settings, error) {
	var ret settings
	var config *configs.Config
	var path string
	var err error

	path = v.GetString(keyConfig)

	if explicitConfig {
		config, err = parsers.ParseConfig(path)
	} else {
		config, err = parsers.ParseConfigIfExists(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load configuration '%s'", path)
	}

	_, err = validators.ValidateConfig(config)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid configuration '%s'", path)
	}

	if config.UpstreamNode() != "" {
		v.SetDefault(keyNodeURL, config.UpstreamNode())
	} else {
		v.SetDefault(keyNodeURL, client.DefaultNodeURL)
	}

	v.SetDefault(keyFaucetURL, config.FaucetURL)
	v.SetDefault(keyLogLevel, "info")

	ret.logLevel, err = core.ParseLogLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}

	ret.client = client.DefaultConfig()
	ret.client.NodeURL = v.GetString(keyNodeURL)
	ret.client.FaucetURL = v.GetString(keyFaucetURL)

	if config.Client.HTTPTimeoutMs > 0 {
		ret.client.HTTPTimeout = millis(config.Client.HTTPTimeoutMs)
	}
	if config.Client.PollIntervalMs > 0 {
		ret.client.PollInterval = millis(config.Client.PollIntervalMs)
	}
	if config.Client.ExpirationGraceMs > 0 {
		ret.client.ExpirationGrace = millis(config.Client.ExpirationGraceMs)
	}

	ret.options = client.DefaultTransactionOptions()

	if config.Transaction.MaxGasAmount > 0 {
		ret.options.MaxGasAmount = config.Transaction.MaxGasAmount
	}
	if config.Transaction.GasUnitPrice > 0 {
		ret.options.GasUnitPrice = config.Transaction.GasUnitPrice
	}
	if config.Transaction.TimeoutSecs > 0 {
		ret.options.TimeoutSecs = config.Transaction.TimeoutSecs
	}
	if config.Transaction.CoinType != "" {
		ret.options.CoinType = config.Transaction.CoinType
	}

	return &ret, nil
}

func millis(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
