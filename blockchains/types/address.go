package types

import (
	"encoding/hex"
	"strings"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
	"github.com/pkg/errors"
)

const AddressLength = 32

// Address identifies an account on chain. It is the authentication key of
// the account's original public key.
type Address [AddressLength]byte

var (
	AddressZero = Address{}
	AddressOne  = Address{AddressLength - 1: 1}
)

// Naive check if the string has a leading "0x" or "0X".
func checkPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ParseAddress decodes an hex address literal. The "0x" prefix is optional
// and short literals such as "0x1" are left padded with zeros.
func ParseAddress(literal string) (Address, error) {
	var ret Address
	var digits string
	var raw []byte
	var err error

	digits = literal
	if checkPrefix(digits) {
		digits = digits[2:]
	}

	if len(digits) == 0 || len(digits) > 2*AddressLength {
		return ret, errors.Errorf("invalid address length '%s'", literal)
	}

	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	raw, err = hex.DecodeString(digits)
	if err != nil {
		return ret, errors.Errorf("invalid address '%s': %v", literal, err)
	}

	copy(ret[AddressLength-len(raw):], raw)

	return ret, nil
}

// String returns the fixed length "0x" literal of the address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString returns the literal with leading zeros stripped, the way
// framework addresses such as "0x1" are usually written.
func (a Address) ShortString() string {
	var digits string = strings.TrimLeft(hex.EncodeToString(a[:]), "0")

	if digits == "" {
		digits = "0"
	}

	return "0x" + digits
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	var addr Address
	var err error

	addr, err = ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}

// Serialize writes the address as a fixed size sequence of bytes, without
// length prefix.
func (a Address) Serialize(serializer serde.Serializer) error {
	var b byte
	var err error

	for _, b = range a {
		err = serializer.SerializeU8(b)
		if err != nil {
			return err
		}
	}

	return nil
}

func DeserializeAddress(deserializer serde.Deserializer) (Address, error) {
	var ret Address
	var err error
	var i int

	for i = range ret {
		ret[i], err = deserializer.DeserializeU8()
		if err != nil {
			return ret, err
		}
	}

	return ret, nil
}
