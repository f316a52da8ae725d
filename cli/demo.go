package cli

import (
	"context"
	"fmt"
	"io"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/client"
	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

const (
	demoFunding  = 100_000_000
	demoTransfer = 1_000
)

// runDemo creates two fresh accounts, funds the first one and makes it pay
// the second one twice, printing balances along the way.
func runDemo(ctx context.Context, c chainClient, out io.Writer, rng io.Reader, options client.TransactionOptions) error {
	var alice, bob *account.LocalAccount
	var key *account.AccountKey
	var pending *client.PendingTransaction
	var step int
	var err error

	key, err = account.Generate(rng)
	if err != nil {
		return err
	}
	alice = account.NewLocalAccount(key, 0)

	key, err = account.Generate(rng)
	if err != nil {
		return err
	}
	bob = account.NewLocalAccount(key, 0)

	fmt.Fprintf(out, "\n=== Addresses ===\n")
	fmt.Fprintf(out, "Alice: %s\n", alice.Address())
	fmt.Fprintf(out, "Bob: %s\n", bob.Address())

	_, err = c.FundByFaucet(ctx, alice.Address(), demoFunding)
	if err != nil {
		return errors.Wrap(err, "fund alice")
	}

	err = c.CreateAccountByFaucet(ctx, bob.Address())
	if err != nil {
		return errors.Wrap(err, "create bob")
	}

	err = printBalances(ctx, c, out, "Initial", alice, bob, options)
	if err != nil {
		return err
	}

	for step = 0; step < 2; step++ {
		pending, err = c.Transfer(ctx, alice, bob.Address(), demoTransfer, options)
		if err == nil {
			_, err = c.WaitForTransaction(ctx, pending)
		}
		if err != nil {
			return errors.Wrapf(err, "transfer %d", step+1)
		}

		if step == 0 {
			err = printBalances(ctx, c, out, "Intermediate", alice, bob, options)
		} else {
			err = printBalances(ctx, c, out, "Final", alice, bob, options)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func printBalances(ctx context.Context, c chainClient, out io.Writer, title string, alice, bob *account.LocalAccount, options client.TransactionOptions) error {
	var balances [2]uint64
	var addrs [2]types.Address
	var i int
	var err error

	addrs = [2]types.Address{alice.Address(), bob.Address()}

	for i = range addrs {
		balances[i], err = c.GetCoinBalance(ctx, addrs[i], options.CoinType)
		if err != nil {
			return errors.Wrapf(err, "balance of %s", addrs[i])
		}
	}

	fmt.Fprintf(out, "\n=== %s Balances ===\n", title)
	fmt.Fprintf(out, "Alice: %d\n", balances[0])
	fmt.Fprintf(out, "Bob: %d\n", balances[1])

	return nil
}
