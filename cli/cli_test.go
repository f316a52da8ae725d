package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/client"
	"libra-txs/blockchains/payload"
	"libra-txs/blockchains/txbuilder"
	"libra-txs/blockchains/types"
	"libra-txs/core"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testPrivateKey = "c43f57994644ebda1eabfebf84def73fbd1d3ce442a9d2b2f4cb9f4da7b9908c"
	testPublicKey  = "ef00c7b6f6246543445a847a6d136d293c107b05044f7fc105a063c93c50d7a0"
	testAddress    = "0xfda03992f666875ddf854193fccd3e62ea111d066029490dd37c891ed9c3f880"
)

// stubClient keeps balances in memory and records what was asked.
type stubClient struct {
	balances   map[types.Address]uint64
	created    []types.Address
	funded     map[types.Address]uint64
	transfers  []client.TransactionOptions
	submitted  int
	waited     int
	views      []string
	coinTypes  []string
	failWith   error
	nextHashID byte
}

func newStubClient() *stubClient {
	return &stubClient{
		balances: make(map[types.Address]uint64),
		funded:   make(map[types.Address]uint64),
	}
}

func (s *stubClient) GetAccountResource(_ context.Context, _ types.Address, resourceType string) (json.RawMessage, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	return json.RawMessage(`{"type":"` + resourceType + `","data":{"sequence_number":"3"}}`), nil
}

func (s *stubClient) GetCoinBalance(_ context.Context, addr types.Address, coinType string) (uint64, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}

	s.coinTypes = append(s.coinTypes, coinType)

	return s.balances[addr], nil
}

func (s *stubClient) Transfer(_ context.Context, from *account.LocalAccount, to types.Address, amount uint64, options client.TransactionOptions) (*client.PendingTransaction, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	if s.balances[from.Address()] < amount {
		return nil, errors.New("insufficient balance")
	}

	s.balances[from.Address()] -= amount
	s.balances[to] += amount
	s.transfers = append(s.transfers, options)

	return s.pending(from.Address(), from.Increment()), nil
}

func (s *stubClient) pending(sender types.Address, sequence uint64) *client.PendingTransaction {
	var hash [32]byte

	s.nextHashID++
	hash[0] = s.nextHashID

	return &client.PendingTransaction{
		Hash:           types.Address(hash).String(),
		Sender:         sender,
		SequenceNumber: sequence,
	}
}

func (s *stubClient) GenerateTransaction(_ context.Context, sender *account.LocalAccount, functionID, typeArgs, args string, options client.TransactionOptions) (*types.SignedTransaction, error) {
	var function *types.EntryFunction
	var err error

	function, err = payload.ParseEntryFunction(functionID, typeArgs, args)
	if err != nil {
		return nil, err
	}

	sender.SequenceNumber = 9

	return sender.SignTransaction(txbuilder.New(function, 1000, 4).
		MaxGasAmount(options.MaxGasAmount).
		GasUnitPrice(options.GasUnitPrice))
}

func (s *stubClient) SubmitTransaction(_ context.Context, signed *types.SignedTransaction) (*client.PendingTransaction, error) {
	s.submitted++

	return s.pending(signed.RawTxn.Sender, signed.RawTxn.SequenceNumber), nil
}

func (s *stubClient) WaitForTransaction(_ context.Context, pending *client.PendingTransaction) (*client.TransactionInfo, error) {
	s.waited++

	return &client.TransactionInfo{Hash: pending.Hash, Version: 42, Success: true}, nil
}

func (s *stubClient) View(_ context.Context, functionID, _, _ string) ([]json.RawMessage, error) {
	s.views = append(s.views, functionID)

	return []json.RawMessage{json.RawMessage(`"100"`), json.RawMessage(`true`)}, nil
}

func (s *stubClient) FundByFaucet(_ context.Context, addr types.Address, amount uint64) ([]string, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}

	s.funded[addr] += amount
	s.balances[addr] += amount

	return []string{"0x01"}, nil
}

func (s *stubClient) CreateAccountByFaucet(_ context.Context, addr types.Address) error {
	if s.failWith != nil {
		return s.failWith
	}

	s.created = append(s.created, addr)

	return nil
}

func testKey(t *testing.T) *account.AccountKey {
	key, err := account.FromEncodedString(testPrivateKey)
	require.NoError(t, err)

	return key
}

func TestGenerateLocalAccount(t *testing.T) {
	t.Run("known key", func(t *testing.T) {
		out, err := generateLocalAccount("0x"+testPrivateKey, "")
		require.NoError(t, err)

		lines := strings.Split(out, "\n")
		require.Len(t, lines, 6)
		require.Equal(t, "", lines[0])
		require.Equal(t, "====================================", lines[1])
		require.Equal(t, "Private key: "+testPrivateKey, lines[2])
		require.Equal(t, "Public key: "+testPublicKey, lines[3])
		require.Equal(t, "Authentication key: "+strings.TrimPrefix(testAddress, "0x"), lines[4])
		require.Equal(t, "Account address: "+testAddress, lines[5])
	})

	t.Run("fresh keys differ", func(t *testing.T) {
		first, err := generateLocalAccount("", "")
		require.NoError(t, err)

		second, err := generateLocalAccount("", "")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("bad key", func(t *testing.T) {
		_, err := generateLocalAccount("0x1234", "")
		require.ErrorIs(t, err, types.ErrInvalidKeyEncoding)
	})

	t.Run("key files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "keys")

		_, err := generateLocalAccount(testPrivateKey, dir)
		require.NoError(t, err)

		for _, name := range []string{privateKeysFile, publicKeysFile} {
			info, err := os.Stat(filepath.Join(dir, name))
			require.NoError(t, err)
			require.Equal(t, os.FileMode(keyFileMode), info.Mode().Perm())
		}

		public, err := os.ReadFile(filepath.Join(dir, publicKeysFile))
		require.NoError(t, err)
		require.Contains(t, string(public), testPublicKey)
		require.NotContains(t, string(public), testPrivateKey)

		key, err := loadAccountKey("", filepath.Join(dir, privateKeysFile))
		require.NoError(t, err)
		require.Equal(t, testAddress, key.Address().String())
	})
}

func TestLoadAccountKey(t *testing.T) {
	t.Run("hex wins", func(t *testing.T) {
		key, err := loadAccountKey(testPrivateKey, "/does/not/exist")
		require.NoError(t, err)
		require.Equal(t, testAddress, key.Address().String())
	})

	t.Run("nothing given", func(t *testing.T) {
		_, err := loadAccountKey("", "")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadAccountKey("", filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("first of several keys", func(t *testing.T) {
		observed, logs := observer.New(zapcore.WarnLevel)
		core.SetLogger(core.NewZapLogger(zap.New(observed), core.LOG_WARN))
		defer core.SetLogger(core.NewNoLogger())

		path := filepath.Join(t.TempDir(), privateKeysFile)
		require.NoError(t, os.WriteFile(path, []byte(
			"- private: \"0x"+testPrivateKey+"\"\n"+
				"- private: \"b33cb58af3686ce54cc081b0ae095242702618d8f9b2b1f421fa523d337fca9c\"\n"),
			0600))

		key, err := loadAccountKey("", path)
		require.NoError(t, err)
		require.Equal(t, testAddress, key.Address().String())
		require.Equal(t, 1, logs.Len())
		require.Contains(t, logs.All()[0].Message, "using the first one")
	})
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("without coins", func(t *testing.T) {
		stub := newStubClient()

		out, err := createAccount(ctx, stub, testAddress, 0)
		require.NoError(t, err)
		require.Equal(t, successMessage, out)
		require.Len(t, stub.created, 1)
		require.Empty(t, stub.funded)
	})

	t.Run("with coins", func(t *testing.T) {
		stub := newStubClient()

		_, err := createAccount(ctx, stub, testAddress, 500)
		require.NoError(t, err)
		require.Empty(t, stub.created)

		addr, _ := types.ParseAddress(testAddress)
		require.Equal(t, uint64(500), stub.funded[addr])
	})

	t.Run("bad address", func(t *testing.T) {
		stub := newStubClient()

		_, err := createAccount(ctx, stub, "0xzz", 0)
		require.Error(t, err)
		require.Empty(t, stub.created)
	})

	t.Run("faucet error", func(t *testing.T) {
		stub := newStubClient()
		stub.failWith = types.ErrFaucetNotConfigured

		_, err := createAccount(ctx, stub, testAddress, 0)
		require.ErrorIs(t, err, types.ErrFaucetNotConfigured)
	})
}

func TestAccountQueries(t *testing.T) {
	ctx := context.Background()
	stub := newStubClient()
	addr, _ := types.ParseAddress(testAddress)
	stub.balances[addr] = 1234

	t.Run("balance", func(t *testing.T) {
		out, err := getAccountBalance(ctx, stub, testAddress, client.DefaultCoinType)
		require.NoError(t, err)
		require.Equal(t, "Account balance: 1234 coins", out)
	})

	t.Run("resource", func(t *testing.T) {
		out, err := getAccountResource(ctx, stub, testAddress, client.AccountResourceType)
		require.NoError(t, err)
		require.Contains(t, out, "\n  \"type\": \"0x1::account::Account\"")
	})

	t.Run("not found", func(t *testing.T) {
		failing := newStubClient()
		failing.failWith = types.ErrAccountNotFound

		_, err := getAccountBalance(ctx, failing, testAddress, "")
		require.ErrorIs(t, err, types.ErrAccountNotFound)
	})
}

func TestTransferCoins(t *testing.T) {
	ctx := context.Background()
	key := testKey(t)

	t.Run("committed", func(t *testing.T) {
		stub := newStubClient()
		stub.balances[key.Address()] = 10

		out, err := transferCoins(ctx, stub, key, "0x2", 4, client.DefaultTransactionOptions())
		require.NoError(t, err)
		require.Equal(t, successMessage, out)
		require.Equal(t, 1, stub.waited)
		require.Equal(t, uint64(6), stub.balances[key.Address()])
	})

	t.Run("bad receiver", func(t *testing.T) {
		stub := newStubClient()

		_, err := transferCoins(ctx, stub, key, "two", 4, client.DefaultTransactionOptions())
		require.Error(t, err)
		require.Empty(t, stub.transfers)
	})

	t.Run("rejected", func(t *testing.T) {
		stub := newStubClient()

		_, err := transferCoins(ctx, stub, key, "0x2", 4, client.DefaultTransactionOptions())
		require.Error(t, err)
		require.Zero(t, stub.waited)
	})
}

func TestGenerateTransaction(t *testing.T) {
	ctx := context.Background()
	key := testKey(t)

	t.Run("print only", func(t *testing.T) {
		stub := newStubClient()

		out, err := generateTransaction(ctx, stub, key, "0x1::coin::transfer",
			"0x1::aptos_coin::AptosCoin", "@0x2, 10u64",
			client.DefaultTransactionOptions(), false)
		require.NoError(t, err)
		require.Contains(t, out, "Sender: "+testAddress)
		require.Contains(t, out, "Sequence number: 9")
		require.Contains(t, out, "Payload: 0x1::coin::transfer\n")
		require.Contains(t, out, "Hash: 0x")
		require.Contains(t, out, "Signed transaction: 0x")
		require.Zero(t, stub.submitted)
	})

	t.Run("submit", func(t *testing.T) {
		stub := newStubClient()

		out, err := generateTransaction(ctx, stub, key, "0x1::coin::transfer",
			"0x1::aptos_coin::AptosCoin", "@0x2, 10u64",
			client.DefaultTransactionOptions(), true)
		require.NoError(t, err)
		require.Equal(t, 1, stub.submitted)
		require.True(t, strings.HasSuffix(out, "Version: 42\n"+successMessage))
	})

	t.Run("bad function", func(t *testing.T) {
		stub := newStubClient()

		_, err := generateTransaction(ctx, stub, key, "coin::transfer", "", "",
			client.DefaultTransactionOptions(), true)
		require.ErrorIs(t, err, types.ErrMalformedFunctionID)
		require.Zero(t, stub.submitted)
	})
}

func TestView(t *testing.T) {
	stub := newStubClient()

	out, err := view(context.Background(), stub, "0x1::coin::balance", "", "")
	require.NoError(t, err)
	require.Equal(t, "\n=======OUTPUT=======\n[\"100\", true]", out)
	require.Equal(t, []string{"0x1::coin::balance"}, stub.views)
}

func TestDemo(t *testing.T) {
	var out bytes.Buffer

	stub := newStubClient()

	err := runDemo(context.Background(), stub, &out, nil, client.DefaultTransactionOptions())
	require.NoError(t, err)
	require.Len(t, stub.transfers, 2)
	require.Len(t, stub.created, 1)

	text := out.String()
	for _, heading := range []string{"=== Addresses ===", "=== Initial Balances ===",
		"=== Intermediate Balances ===", "=== Final Balances ==="} {
		require.Contains(t, text, heading)
	}

	require.Contains(t, text, "Alice: 100000000\nBob: 0")
	require.Contains(t, text, "Alice: 99999000\nBob: 1000")
	require.Contains(t, text, "Alice: 99998000\nBob: 2000")
}

// runRoot executes the command line against a stub client and returns the
// output and the configuration the client was built with.
func runRoot(t *testing.T, stub *stubClient, args ...string) (string, client.Config, error) {
	var out bytes.Buffer
	var config client.Config

	a := newApp(zap.NewAtomicLevel(), func(c client.Config, _ core.Logger) (chainClient, error) {
		config = c
		return stub, nil
	})

	root := a.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), config, err
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	absent := filepath.Join(dir, "absent.yaml")

	configPath := filepath.Join(dir, "0L.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`profile:
  upstream_nodes:
    - "http://config-node:8080"
faucet_url: "http://config-faucet:8081"
transaction:
  max_gas_amount: 2000
  gas_unit_price: 150
`), 0600))

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("NODE_URL", "")
		t.Setenv("FAUCET_URL", "")
		t.Setenv("APTOS_FAUCET_URL", "")

		stub := newStubClient()
		out, config, err := runRoot(t, stub, "get-account-balance",
			"--account-address", "0x1", "--config", configPath)
		require.NoError(t, err)
		require.Equal(t, "Account balance: 0 coins\n", out)
		require.Equal(t, "http://config-node:8080", config.NodeURL)
		require.Equal(t, "http://config-faucet:8081", config.FaucetURL)
		require.Equal(t, []string{client.DefaultCoinType}, stub.coinTypes)
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("NODE_URL", "http://env-node:8080")
		t.Setenv("APTOS_FAUCET_URL", "http://env-faucet:8081")

		_, config, err := runRoot(t, newStubClient(), "create-account",
			"--account-address", "0x1", "--config", configPath)
		require.NoError(t, err)
		require.Equal(t, "http://env-node:8080", config.NodeURL)
		require.Equal(t, "http://env-faucet:8081", config.FaucetURL)
	})

	t.Run("flag over environment", func(t *testing.T) {
		t.Setenv("NODE_URL", "http://env-node:8080")

		_, config, err := runRoot(t, newStubClient(), "create-account",
			"--account-address", "0x1", "--config", configPath,
			"--node-url", "http://flag-node:8080")
		require.NoError(t, err)
		require.Equal(t, "http://flag-node:8080", config.NodeURL)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		_, _, err := runRoot(t, newStubClient(), "create-account",
			"--account-address", "0x1", "--config", absent)
		require.Error(t, err)
	})

	t.Run("built in defaults", func(t *testing.T) {
		t.Setenv("NODE_URL", "")

		a := newApp(zap.NewAtomicLevel(), connectNode)
		a.viper.SetDefault(keyConfig, absent)

		settings, err := loadSettings(a.viper, false)
		require.NoError(t, err)
		require.Equal(t, client.DefaultNodeURL, settings.client.NodeURL)
		require.Equal(t, client.DefaultTransactionOptions(), settings.options)
		require.Equal(t, core.LOG_INFO, settings.logLevel)
	})

	t.Run("configured gas and flag override", func(t *testing.T) {
		stub := newStubClient()
		key := testKey(t)
		stub.balances[key.Address()] = 100

		_, _, err := runRoot(t, stub, "transfer-coins", "--config", configPath,
			"--private-key", testPrivateKey, "--to-account", "0x2",
			"--amount", "1", "--gas-unit-price", "300")
		require.NoError(t, err)
		require.Len(t, stub.transfers, 1)
		require.Equal(t, uint64(2000), stub.transfers[0].MaxGasAmount)
		require.Equal(t, uint64(300), stub.transfers[0].GasUnitPrice)
		require.Equal(t, uint64(client.DefaultTimeoutSecs), stub.transfers[0].TimeoutSecs)
	})

	t.Run("missing key", func(t *testing.T) {
		_, _, err := runRoot(t, newStubClient(), "transfer-coins",
			"--config", configPath, "--to-account", "0x2", "--amount", "1")
		require.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, _, err := runRoot(t, newStubClient(), "view", "--config", configPath,
			"--function-id", "0x1::m::f", "--log-level", "loud")
		require.Error(t, err)
	})

	t.Run("view", func(t *testing.T) {
		stub := newStubClient()

		out, _, err := runRoot(t, stub, "view", "--config", configPath,
			"--function-id", "0x1::coin::balance")
		require.NoError(t, err)
		require.Contains(t, out, "=======OUTPUT=======")
	})
}
