package types

import (
	"encoding/hex"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
	"golang.org/x/crypto/sha3"
)

const (
	payloadEntryFunction uint32 = 2

	authenticatorEd25519 uint32 = 0

	// Variant of the on-chain transaction enumeration wrapping a user
	// signed transaction.
	transactionUser byte = 0

	rawTransactionSalt = "APTOS::RawTransaction"
	transactionSalt    = "APTOS::Transaction"
)

type ModuleID struct {
	Address Address
	Name    string
}

func (m ModuleID) String() string {
	return m.Address.ShortString() + "::" + m.Name
}

func (m ModuleID) Serialize(serializer serde.Serializer) error {
	var err error

	err = m.Address.Serialize(serializer)
	if err != nil {
		return err
	}

	return serializer.SerializeStr(m.Name)
}

// TransactionPayload is what a transaction asks the chain to execute.
// The only payload built by this client is the entry function call.
type TransactionPayload interface {
	isTransactionPayload()

	Serialize(serde.Serializer) error
}

// EntryFunction calls a public entry function of a published module. Each
// element of Args is the BCS encoding of the argument at the same position
// in the function signature.
type EntryFunction struct {
	Module   ModuleID
	Function string
	TypeArgs []TypeTag
	Args     [][]byte
}

func NewEntryFunction(module ModuleID, function string, typeArgs []TypeTag, args [][]byte) *EntryFunction {
	if typeArgs == nil {
		typeArgs = make([]TypeTag, 0)
	}

	if args == nil {
		args = make([][]byte, 0)
	}

	return &EntryFunction{
		Module:   module,
		Function: function,
		TypeArgs: typeArgs,
		Args:     args,
	}
}

func (*EntryFunction) isTransactionPayload() {}

func (f *EntryFunction) Serialize(serializer serde.Serializer) error {
	var arg []byte
	var err error

	err = serializer.SerializeVariantIndex(payloadEntryFunction)
	if err != nil {
		return err
	}

	err = f.Module.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeStr(f.Function)
	if err != nil {
		return err
	}

	err = serializeTypeTags(serializer, f.TypeArgs)
	if err != nil {
		return err
	}

	err = serializer.SerializeLen(uint64(len(f.Args)))
	if err != nil {
		return err
	}

	for _, arg = range f.Args {
		err = serializer.SerializeBytes(arg)
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *EntryFunction) String() string {
	return f.Module.String() + "::" + f.Function
}

type RawTransaction struct {
	Sender                  Address
	SequenceNumber          uint64
	Payload                 TransactionPayload
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

func (t *RawTransaction) Serialize(serializer serde.Serializer) error {
	var err error

	err = t.Sender.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(t.SequenceNumber)
	if err != nil {
		return err
	}

	err = t.Payload.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(t.MaxGasAmount)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(t.GasUnitPrice)
	if err != nil {
		return err
	}

	err = serializer.SerializeU64(t.ExpirationTimestampSecs)
	if err != nil {
		return err
	}

	return serializer.SerializeU8(t.ChainID)
}

func (t *RawTransaction) BcsSerialize() ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = t.Serialize(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

// SigningMessage returns the bytes the sender signs: the hash of the raw
// transaction domain separator followed by the BCS encoding.
func (t *RawTransaction) SigningMessage() ([]byte, error) {
	var encoded []byte
	var err error

	encoded, err = t.BcsSerialize()
	if err != nil {
		return nil, err
	}

	return append(hashSalt(rawTransactionSalt), encoded...), nil
}

// Ed25519Authenticator carries what the chain needs to authenticate a
// single signer transaction without any state lookup.
type Ed25519Authenticator struct {
	PublicKey []byte
	Signature []byte
}

func (a *Ed25519Authenticator) Serialize(serializer serde.Serializer) error {
	var err error

	err = serializer.SerializeVariantIndex(authenticatorEd25519)
	if err != nil {
		return err
	}

	err = serializer.SerializeBytes(a.PublicKey)
	if err != nil {
		return err
	}

	return serializer.SerializeBytes(a.Signature)
}

type SignedTransaction struct {
	RawTxn        RawTransaction
	Authenticator Ed25519Authenticator
}

func (t *SignedTransaction) Serialize(serializer serde.Serializer) error {
	var err error

	err = t.RawTxn.Serialize(serializer)
	if err != nil {
		return err
	}

	return t.Authenticator.Serialize(serializer)
}

// BcsSerialize returns the body submitted to the node.
func (t *SignedTransaction) BcsSerialize() ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = t.Serialize(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

// Hash returns the hex literal of the hash the chain assigns to this
// transaction once accepted.
func (t *SignedTransaction) Hash() (string, error) {
	var hasher = sha3.New256()
	var encoded []byte
	var err error

	encoded, err = t.BcsSerialize()
	if err != nil {
		return "", err
	}

	hasher.Write(hashSalt(transactionSalt))
	hasher.Write([]byte{transactionUser})
	hasher.Write(encoded)

	return "0x" + hex.EncodeToString(hasher.Sum(nil)), nil
}

func hashSalt(salt string) []byte {
	var sum [32]byte = sha3.Sum256([]byte(salt))

	return sum[:]
}
