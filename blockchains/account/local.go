package account

import (
	"libra-txs/blockchains/txbuilder"
	"libra-txs/blockchains/types"
)

// LocalAccount is an account whose key is held by this process, along with
// the sequence number its next transaction must carry.
type LocalAccount struct {
	Key            *AccountKey
	SequenceNumber uint64
}

func NewLocalAccount(key *AccountKey, sequenceNumber uint64) *LocalAccount {
	return &LocalAccount{
		Key:            key,
		SequenceNumber: sequenceNumber,
	}
}

func (a *LocalAccount) Address() types.Address {
	return a.Key.Address()
}

// Increment advances the local counter and returns its previous value.
func (a *LocalAccount) Increment() uint64 {
	var ret uint64 = a.SequenceNumber

	a.SequenceNumber++

	return ret
}

// SignTransaction completes `builder` with this account as sender, signs it
// and moves to the next sequence number. The counter is not touched when
// the transaction cannot be built.
func (a *LocalAccount) SignTransaction(builder *txbuilder.Builder) (*types.SignedTransaction, error) {
	var signed *types.SignedTransaction
	var err error

	signed, err = builder.
		Sender(a.Address()).
		SequenceNumber(a.SequenceNumber).
		Sign(a.Key)
	if err != nil {
		return nil, err
	}

	a.Increment()

	return signed, nil
}
