package cli

import (
	"fmt"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/client"

	"github.com/spf13/cobra"
)

const (
	flagPrivateKey     = "private-key"
	flagPrivateKeyFile = "private-key-file"
	flagOutputDir      = "output-dir"
	flagAccount        = "account-address"
	flagCoins          = "coins"
	flagCoinType       = "coin-type"
	flagResourceType   = "resource-type"
	flagToAccount      = "to-account"
	flagAmount         = "amount"
	flagMaxGas         = "max-gas"
	flagGasUnitPrice   = "gas-unit-price"
	flagTimeoutSecs    = "timeout-secs"
	flagFunctionID     = "function-id"
	flagTypeArgs       = "type-args"
	flagArgs           = "args"
	flagSubmit         = "submit"
)

func printResult(cmd *cobra.Command, result string) {
	fmt.Fprintln(cmd.OutOrStdout(), result)
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagPrivateKey, "", "hex encoded private key of the sender")
	cmd.Flags().String(flagPrivateKeyFile, "",
		"key file written by generate-local-account, its first key signs")
	cmd.MarkFlagsOneRequired(flagPrivateKey, flagPrivateKeyFile)
	cmd.MarkFlagsMutuallyExclusive(flagPrivateKey, flagPrivateKeyFile)
}

func addTransactionFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64(flagMaxGas, client.DefaultMaxGasAmount, "maximum gas units")
	cmd.Flags().Uint64(flagGasUnitPrice, client.DefaultGasUnitPrice, "price of a gas unit")
	cmd.Flags().Uint64(flagTimeoutSecs, client.DefaultTimeoutSecs,
		"seconds before the transaction expires")
}

func addFunctionFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagFunctionID, "", "function as <address>::<module>::<function>")
	cmd.Flags().String(flagTypeArgs, "", "comma separated type arguments")
	cmd.Flags().String(flagArgs, "", "comma separated argument literals")
	_ = cmd.MarkFlagRequired(flagFunctionID)
}

// transactionOptions returns the configured options, overridden by the
// flags given on the command line. An explicit zero is kept so that it is
// rejected.
func (a *app) transactionOptions(cmd *cobra.Command) client.TransactionOptions {
	var ret client.TransactionOptions

	ret = a.settings.options

	if cmd.Flags().Changed(flagMaxGas) {
		ret.MaxGasAmount, _ = cmd.Flags().GetUint64(flagMaxGas)
	}
	if cmd.Flags().Changed(flagGasUnitPrice) {
		ret.GasUnitPrice, _ = cmd.Flags().GetUint64(flagGasUnitPrice)
	}
	if cmd.Flags().Changed(flagTimeoutSecs) {
		ret.TimeoutSecs, _ = cmd.Flags().GetUint64(flagTimeoutSecs)
	}
	if cmd.Flags().Changed(flagCoinType) {
		ret.CoinType, _ = cmd.Flags().GetString(flagCoinType)
	}

	return ret
}

func (a *app) accountKey(cmd *cobra.Command) (*account.AccountKey, error) {
	var privateKey, keyFile string

	privateKey, _ = cmd.Flags().GetString(flagPrivateKey)
	keyFile, _ = cmd.Flags().GetString(flagPrivateKeyFile)

	return loadAccountKey(privateKey, keyFile)
}

func (a *app) generateLocalAccountCmd() *cobra.Command {
	var privateKey, outputDir string
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "generate-local-account",
		Short: "Generate a key pair and print its account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result string
			var err error

			result, err = generateLocalAccount(privateKey, outputDir)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&privateKey, flagPrivateKey, "",
		"derive the account of this hex key instead of a fresh one")
	cmd.Flags().StringVar(&outputDir, flagOutputDir, "",
		"directory receiving private-keys.yaml and public-keys.yaml")

	return cmd
}

func (a *app) createAccountCmd() *cobra.Command {
	var address string
	var coins uint64
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "create-account",
		Short: "Create an account through the faucet, funding it with --coins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c chainClient
			var result string
			var err error

			c, err = a.client()
			if err != nil {
				return err
			}

			result, err = createAccount(cmd.Context(), c, address, coins)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, flagAccount, "", "address of the account")
	cmd.Flags().Uint64Var(&coins, flagCoins, 0, "coins minted to the account")
	_ = cmd.MarkFlagRequired(flagAccount)

	return cmd
}

func (a *app) getAccountBalanceCmd() *cobra.Command {
	var address string
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "get-account-balance",
		Short: "Print the coin balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c chainClient
			var result string
			var err error

			c, err = a.client()
			if err != nil {
				return err
			}

			result, err = getAccountBalance(cmd.Context(), c, address,
				a.transactionOptions(cmd).CoinType)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, flagAccount, "", "address of the account")
	cmd.Flags().String(flagCoinType, client.DefaultCoinType, "coin to report")
	_ = cmd.MarkFlagRequired(flagAccount)

	return cmd
}

func (a *app) getAccountResourceCmd() *cobra.Command {
	var address, resourceType string
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "get-account-resource",
		Short: "Print a resource stored under an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c chainClient
			var result string
			var err error

			c, err = a.client()
			if err != nil {
				return err
			}

			result, err = getAccountResource(cmd.Context(), c, address,
				resourceType)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, flagAccount, "", "address of the account")
	cmd.Flags().StringVar(&resourceType, flagResourceType,
		client.AccountResourceType, "move type of the resource")
	_ = cmd.MarkFlagRequired(flagAccount)

	return cmd
}

func (a *app) transferCoinsCmd() *cobra.Command {
	var to string
	var amount uint64
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "transfer-coins",
		Short: "Transfer coins and wait for the transfer to commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var key *account.AccountKey
			var c chainClient
			var result string
			var err error

			key, err = a.accountKey(cmd)
			if err != nil {
				return err
			}

			c, err = a.client()
			if err != nil {
				return err
			}

			result, err = transferCoins(cmd.Context(), c, key, to, amount,
				a.transactionOptions(cmd))
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, flagToAccount, "", "address of the receiver")
	cmd.Flags().Uint64Var(&amount, flagAmount, 0, "coins to transfer")
	cmd.Flags().String(flagCoinType, client.DefaultCoinType, "coin to transfer")
	addKeyFlags(cmd)
	addTransactionFlags(cmd)
	_ = cmd.MarkFlagRequired(flagToAccount)
	_ = cmd.MarkFlagRequired(flagAmount)

	return cmd
}

func (a *app) generateTransactionCmd() *cobra.Command {
	var submit bool
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "generate-transaction",
		Short: "Sign an entry function call, optionally submitting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var functionID, typeArgs, args string
			var key *account.AccountKey
			var c chainClient
			var result string
			var err error

			key, err = a.accountKey(cmd)
			if err != nil {
				return err
			}

			c, err = a.client()
			if err != nil {
				return err
			}

			functionID, _ = cmd.Flags().GetString(flagFunctionID)
			typeArgs, _ = cmd.Flags().GetString(flagTypeArgs)
			args, _ = cmd.Flags().GetString(flagArgs)

			result, err = generateTransaction(cmd.Context(), c, key,
				functionID, typeArgs, args, a.transactionOptions(cmd), submit)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	addFunctionFlags(cmd)
	addKeyFlags(cmd)
	addTransactionFlags(cmd)
	cmd.Flags().BoolVar(&submit, flagSubmit, false,
		"submit the transaction and wait for it to commit")

	return cmd
}

func (a *app) viewCmd() *cobra.Command {
	var cmd *cobra.Command

	cmd = &cobra.Command{
		Use:   "view",
		Short: "Call a view function and print its results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var functionID, typeArgs, args string
			var c chainClient
			var result string
			var err error

			c, err = a.client()
			if err != nil {
				return err
			}

			functionID, _ = cmd.Flags().GetString(flagFunctionID)
			typeArgs, _ = cmd.Flags().GetString(flagTypeArgs)
			args, _ = cmd.Flags().GetString(flagArgs)

			result, err = view(cmd.Context(), c, functionID, typeArgs, args)
			if err != nil {
				return err
			}

			printResult(cmd, result)
			return nil
		},
	}

	addFunctionFlags(cmd)

	return cmd
}

func (a *app) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Fund two fresh accounts and transfer coins between them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c chainClient
			var err error

			c, err = a.client()
			if err != nil {
				return err
			}

			return runDemo(cmd.Context(), c, cmd.OutOrStdout(), a.random,
				a.transactionOptions(cmd))
		},
	}
}
