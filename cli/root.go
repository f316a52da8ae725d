package cli

import (
	"io"

	"libra-txs/blockchains/client"
	"libra-txs/core"
	"libra-txs/core/configs/parsers"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	flagConfig    = "config"
	flagNodeURL   = "node-url"
	flagFaucetURL = "faucet-url"
	flagLogLevel  = "log-level"
)

// app holds what the commands share once the root command resolved its
// settings.
type app struct {
	viper    *viper.Viper
	level    zap.AtomicLevel
	settings *settings

	// Builds the client of the node, replaced in tests.
	connect func(client.Config, core.Logger) (chainClient, error)

	// Entropy of the generated keys, nil for crypto/rand.
	random io.Reader
}

func connectNode(config client.Config, logger core.Logger) (chainClient, error) {
	var ret *client.Client
	var err error

	ret, err = client.New(config, logger)
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// NewRootCmd returns the command line of the tool. The logs are printed at
// `level`, which the root command sets from --log-level.
func NewRootCmd(level zap.AtomicLevel) *cobra.Command {
	return newApp(level, connectNode).rootCmd()
}

func newApp(level zap.AtomicLevel, connect func(client.Config, core.Logger) (chainClient, error)) *app {
	return &app{
		viper:   viper.New(),
		level:   level,
		connect: connect,
	}
}

func (a *app) rootCmd() *cobra.Command {
	var root *cobra.Command

	root = &cobra.Command{
		Use:   "txs",
		Short: "Account and transaction command line for Move chains",
		Long: `Account and transaction command line for Move chains.

Settings come, in decreasing precedence, from the command line flags, the
environment (NODE_URL, FAUCET_URL or APTOS_FAUCET_URL, LOG_LEVEL), the
configuration file and the built in defaults.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
	}

	root.PersistentFlags().String(flagConfig, parsers.DefaultConfigPath(),
		"configuration file, ignored when absent unless given explicitly")
	root.PersistentFlags().String(flagNodeURL, "", "REST endpoint of the node")
	root.PersistentFlags().String(flagFaucetURL, "", "faucet endpoint")
	root.PersistentFlags().String(flagLogLevel, "",
		"silent, fatal, error, warn, info, debug or trace")

	root.AddCommand(
		a.generateLocalAccountCmd(),
		a.createAccountCmd(),
		a.getAccountBalanceCmd(),
		a.getAccountResourceCmd(),
		a.transferCoinsCmd(),
		a.generateTransactionCmd(),
		a.viewCmd(),
		a.demoCmd(),
	)

	return root
}

// setupViper binds the root flags and the environment to the viper keys.
func (a *app) setupViper(cmd *cobra.Command) error {
	var bindings = map[string]string{
		keyConfig:    flagConfig,
		keyNodeURL:   flagNodeURL,
		keyFaucetURL: flagFaucetURL,
		keyLogLevel:  flagLogLevel,
	}
	var key, flag string
	var err error

	for key, flag = range bindings {
		err = a.viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag))
		if err != nil {
			return err
		}
	}

	return bindEnv(a.viper)
}

func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	var err error

	err = a.setupViper(cmd)
	if err != nil {
		return err
	}

	a.settings, err = loadSettings(a.viper, cmd.Flags().Changed(flagConfig))
	if err != nil {
		return err
	}

	a.level.SetLevel(a.settings.logLevel.ZapLevel())
	core.SetLogger(core.NewZapLogger(zap.L(), a.settings.logLevel))

	core.Debugf("settings resolved, node %s, faucet %s",
		a.settings.client.NodeURL, a.settings.client.FaucetURL)

	return nil
}

func (a *app) client() (chainClient, error) {
	return a.connect(a.settings.client, core.ExtendLogger("client"))
}
