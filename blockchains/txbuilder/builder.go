// Package txbuilder assembles raw transactions field by field and signs
// them.
package txbuilder

import (
	"strings"

	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

// Signer is the key material a transaction is signed with.
type Signer interface {
	PublicKey() []byte

	Sign(message []byte) []byte
}

// Builder collects the fields of a raw transaction. The payload, expiration
// and chain are fixed at creation, the sender side and gas parameters are
// set with the chainable setters.
type Builder struct {
	payload    types.TransactionPayload
	expiration uint64
	chainID    uint8

	sender         *types.Address
	sequenceNumber *uint64
	maxGasAmount   *uint64
	gasUnitPrice   *uint64
}

func New(payload types.TransactionPayload, expirationTimestampSecs uint64, chainID uint8) *Builder {
	return &Builder{
		payload:    payload,
		expiration: expirationTimestampSecs,
		chainID:    chainID,
	}
}

func (b *Builder) Sender(addr types.Address) *Builder {
	b.sender = &addr
	return b
}

func (b *Builder) SequenceNumber(sequence uint64) *Builder {
	b.sequenceNumber = &sequence
	return b
}

func (b *Builder) MaxGasAmount(amount uint64) *Builder {
	b.maxGasAmount = &amount
	return b
}

func (b *Builder) GasUnitPrice(price uint64) *Builder {
	b.gasUnitPrice = &price
	return b
}

func (b *Builder) Build() (*types.RawTransaction, error) {
	var missing []string

	if b.payload == nil {
		missing = append(missing, "payload")
	}
	if b.sender == nil {
		missing = append(missing, "sender")
	}
	if b.sequenceNumber == nil {
		missing = append(missing, "sequence number")
	}
	if b.maxGasAmount == nil {
		missing = append(missing, "max gas amount")
	}
	if b.gasUnitPrice == nil {
		missing = append(missing, "gas unit price")
	}

	if len(missing) > 0 {
		return nil, errors.Wrapf(types.ErrIncompleteTransaction,
			"missing %s", strings.Join(missing, ", "))
	}

	if *b.maxGasAmount == 0 {
		return nil, errors.Wrap(types.ErrInvalidGasParameters,
			"max gas amount is zero")
	}

	if *b.gasUnitPrice == 0 {
		return nil, errors.Wrap(types.ErrInvalidGasParameters,
			"gas unit price is zero")
	}

	return &types.RawTransaction{
		Sender:                  *b.sender,
		SequenceNumber:          *b.sequenceNumber,
		Payload:                 b.payload,
		MaxGasAmount:            *b.maxGasAmount,
		GasUnitPrice:            *b.gasUnitPrice,
		ExpirationTimestampSecs: b.expiration,
		ChainID:                 b.chainID,
	}, nil
}

// Sign builds the raw transaction and signs its signing message with
// `signer`.
func (b *Builder) Sign(signer Signer) (*types.SignedTransaction, error) {
	var raw *types.RawTransaction
	var message []byte
	var err error

	raw, err = b.Build()
	if err != nil {
		return nil, err
	}

	message, err = raw.SigningMessage()
	if err != nil {
		return nil, errors.Wrap(err, "encode raw transaction")
	}

	return &types.SignedTransaction{
		RawTxn: *raw,
		Authenticator: types.Ed25519Authenticator{
			PublicKey: signer.PublicKey(),
			Signature: signer.Sign(message),
		},
	}, nil
}
