package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/client"
	"libra-txs/blockchains/types"
	"libra-txs/core"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

const successMessage = "Success!"

// chainClient is the part of *client.Client the commands use.
type chainClient interface {
	GetAccountResource(ctx context.Context, addr types.Address, resourceType string) (json.RawMessage, error)
	GetCoinBalance(ctx context.Context, addr types.Address, coinType string) (uint64, error)
	Transfer(ctx context.Context, from *account.LocalAccount, to types.Address, amount uint64, options client.TransactionOptions) (*client.PendingTransaction, error)
	GenerateTransaction(ctx context.Context, sender *account.LocalAccount, functionID, typeArgs, args string, options client.TransactionOptions) (*types.SignedTransaction, error)
	SubmitTransaction(ctx context.Context, signed *types.SignedTransaction) (*client.PendingTransaction, error)
	WaitForTransaction(ctx context.Context, pending *client.PendingTransaction) (*client.TransactionInfo, error)
	View(ctx context.Context, functionID, typeArgs, args string) ([]json.RawMessage, error)
	FundByFaucet(ctx context.Context, addr types.Address, amount uint64) ([]string, error)
	CreateAccountByFaucet(ctx context.Context, addr types.Address) error
}

// formatLocalAccount prints the key material of `key` the way
// generate-local-account shows it.
func formatLocalAccount(key *account.AccountKey) string {
	var b strings.Builder

	b.WriteString("\n====================================\n")
	fmt.Fprintf(&b, "Private key: %s\n", hex.EncodeToString(key.PrivateKey()))
	fmt.Fprintf(&b, "Public key: %s\n", hex.EncodeToString(key.PublicKey()))
	fmt.Fprintf(&b, "Authentication key: %s\n",
		hex.EncodeToString(key.AuthenticationKey()))
	fmt.Fprintf(&b, "Account address: %s", key.Address())

	return b.String()
}

// generateLocalAccount derives the account of `privateKey`, or of a fresh
// key when it is empty, and writes the key files in `outputDir` if given.
func generateLocalAccount(privateKey, outputDir string) (string, error) {
	var key *account.AccountKey
	var err error

	if privateKey != "" {
		key, err = account.FromEncodedString(privateKey)
	} else {
		key, err = account.Generate(nil)
	}
	if err != nil {
		return "", err
	}

	if outputDir != "" {
		err = writeKeyFiles(outputDir, key)
		if err != nil {
			return "", err
		}
	}

	return formatLocalAccount(key), nil
}

// createAccount creates `address` through the faucet, and funds it with
// `coins` when not zero.
func createAccount(ctx context.Context, c chainClient, address string, coins uint64) (string, error) {
	var addr types.Address
	var err error

	addr, err = types.ParseAddress(address)
	if err != nil {
		return "", err
	}

	if coins == 0 {
		err = c.CreateAccountByFaucet(ctx, addr)
	} else {
		_, err = c.FundByFaucet(ctx, addr, coins)
	}
	if err != nil {
		return "", err
	}

	return successMessage, nil
}

func getAccountBalance(ctx context.Context, c chainClient, address, coinType string) (string, error) {
	var addr types.Address
	var balance uint64
	var err error

	addr, err = types.ParseAddress(address)
	if err != nil {
		return "", err
	}

	balance, err = c.GetCoinBalance(ctx, addr, coinType)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Account balance: %d coins", balance), nil
}

// getAccountResource prints the resource indented.
func getAccountResource(ctx context.Context, c chainClient, address, resourceType string) (string, error) {
	var addr types.Address
	var resource json.RawMessage
	var out bytes.Buffer
	var err error

	addr, err = types.ParseAddress(address)
	if err != nil {
		return "", err
	}

	resource, err = c.GetAccountResource(ctx, addr, resourceType)
	if err != nil {
		return "", err
	}

	err = json.Indent(&out, resource, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "decode resource")
	}

	return out.String(), nil
}

// transferCoins sends `amount` coins to `to` and waits until the transfer
// is committed.
func transferCoins(ctx context.Context, c chainClient, key *account.AccountKey, to string, amount uint64, options client.TransactionOptions) (string, error) {
	var pending *client.PendingTransaction
	var sender *account.LocalAccount
	var receiver types.Address
	var err error

	receiver, err = types.ParseAddress(to)
	if err != nil {
		return "", err
	}

	// The client fills the sequence number from the chain.
	sender = account.NewLocalAccount(key, 0)

	pending, err = c.Transfer(ctx, sender, receiver, amount, options)
	if err != nil {
		return "", err
	}

	core.Infof("transfer of %d to %s submitted as %s", amount, receiver,
		pending.Hash)

	_, err = c.WaitForTransaction(ctx, pending)
	if err != nil {
		return "", err
	}

	return successMessage, nil
}

// generateTransaction signs a call to `functionID` and prints it. When
// `submit` is set the transaction is also sent and waited for.
func generateTransaction(ctx context.Context, c chainClient, key *account.AccountKey, functionID, typeArgs, args string, options client.TransactionOptions, submit bool) (string, error) {
	var signed *types.SignedTransaction
	var pending *client.PendingTransaction
	var info *client.TransactionInfo
	var encoded []byte
	var hash string
	var b strings.Builder
	var err error

	signed, err = c.GenerateTransaction(ctx, account.NewLocalAccount(key, 0),
		functionID, typeArgs, args, options)
	if err != nil {
		return "", err
	}

	encoded, err = signed.BcsSerialize()
	if err != nil {
		return "", err
	}

	hash, err = signed.Hash()
	if err != nil {
		return "", err
	}

	core.Tracef("signed %s: %x", hash, encoded)

	fmt.Fprintf(&b, "Sender: %s\n", signed.RawTxn.Sender)
	fmt.Fprintf(&b, "Sequence number: %d\n", signed.RawTxn.SequenceNumber)
	fmt.Fprintf(&b, "Payload: %s\n", signed.RawTxn.Payload)
	fmt.Fprintf(&b, "Hash: %s\n", hash)
	fmt.Fprintf(&b, "Signed transaction: %s", hexutil.Encode(encoded))

	if !submit {
		return b.String(), nil
	}

	pending, err = c.SubmitTransaction(ctx, signed)
	if err != nil {
		return "", err
	}

	info, err = c.WaitForTransaction(ctx, pending)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "\nVersion: %d\n%s", info.Version, successMessage)

	return b.String(), nil
}

// view prints the values returned by a view function as a list.
func view(ctx context.Context, c chainClient, functionID, typeArgs, args string) (string, error) {
	var values []json.RawMessage
	var parts []string
	var value json.RawMessage
	var err error

	values, err = c.View(ctx, functionID, typeArgs, args)
	if err != nil {
		return "", err
	}

	parts = make([]string, 0, len(values))
	for _, value = range values {
		parts = append(parts, string(value))
	}

	return "\n=======OUTPUT=======\n[" + strings.Join(parts, ", ") + "]", nil
}
