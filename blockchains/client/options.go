package client

import (
	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

const (
	DefaultMaxGasAmount = 5000
	DefaultGasUnitPrice = 100
	DefaultTimeoutSecs  = 10
	DefaultCoinType     = "0x1::aptos_coin::AptosCoin"

	AccountResourceType = "0x1::account::Account"
)

// TransactionOptions are the per transaction parameters chosen by the
// sender. They are policy, the chain only requires them to be non zero.
type TransactionOptions struct {
	MaxGasAmount uint64
	GasUnitPrice uint64

	// The transaction expires this many seconds after it is built.
	TimeoutSecs uint64

	// Coin moved by Transfer.
	CoinType string
}

func DefaultTransactionOptions() TransactionOptions {
	return TransactionOptions{
		MaxGasAmount: DefaultMaxGasAmount,
		GasUnitPrice: DefaultGasUnitPrice,
		TimeoutSecs:  DefaultTimeoutSecs,
		CoinType:     DefaultCoinType,
	}
}

func (o TransactionOptions) validate() error {
	if o.MaxGasAmount == 0 {
		return errors.Wrap(types.ErrInvalidGasParameters, "max gas amount is zero")
	}

	if o.GasUnitPrice == 0 {
		return errors.Wrap(types.ErrInvalidGasParameters, "gas unit price is zero")
	}

	if o.TimeoutSecs == 0 {
		return errors.Wrap(types.ErrIncompleteTransaction, "expiration timeout is zero")
	}

	return nil
}

func (o TransactionOptions) coinType() string {
	if o.CoinType == "" {
		return DefaultCoinType
	}

	return o.CoinType
}
