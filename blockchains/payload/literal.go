package payload

import (
	"encoding/hex"
	"fmt"
	"strings"

	"libra-txs/blockchains/types"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/bcs"
	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindBytes
)

var kindNames = map[Kind]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindU128:    "u128",
	KindU256:    "u256",
	KindAddress: "address",
	KindBytes:   "vector<u8>",
}

var uintBits = map[Kind]int{
	KindU8:   8,
	KindU16:  16,
	KindU32:  32,
	KindU64:  64,
	KindU128: 128,
	KindU256: 256,
}

func (k Kind) String() string {
	var name string
	var ok bool

	name, ok = kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return name
}

// Literal is one argument value of an entry function call. Each kind
// carries its own canonical encoding and its rendering for the JSON view
// requests.
type Literal interface {
	Kind() Kind

	// Encode returns the BCS encoding of the value.
	Encode() ([]byte, error)

	// JSON returns the value the node expects in a JSON request.
	JSON() interface{}

	// String returns the literal in the syntax ParseLiterals accepts.
	String() string
}

type BoolLiteral bool

func (BoolLiteral) Kind() Kind {
	return KindBool
}

func (l BoolLiteral) Encode() ([]byte, error) {
	return encodeWith(func(s serde.Serializer) error {
		return s.SerializeBool(bool(l))
	})
}

func (l BoolLiteral) JSON() interface{} {
	return bool(l)
}

func (l BoolLiteral) String() string {
	if l {
		return "true"
	}

	return "false"
}

// UintLiteral is an unsigned integer of one of the Move widths. Its value
// always fits the width of its kind.
type UintLiteral struct {
	kind  Kind
	value *uint256.Int
}

// NewUintLiteral checks that `value` fits in `kind`.
func NewUintLiteral(kind Kind, value *uint256.Int) (*UintLiteral, error) {
	var bits int
	var ok bool

	bits, ok = uintBits[kind]
	if !ok {
		return nil, errors.Errorf("%s is not an integer kind", kind)
	}

	if value.BitLen() > bits {
		return nil, errors.Errorf("%s does not fit in %s", value.Dec(), kind)
	}

	return &UintLiteral{kind: kind, value: new(uint256.Int).Set(value)}, nil
}

func NewU64Literal(value uint64) *UintLiteral {
	return &UintLiteral{kind: KindU64, value: uint256.NewInt(value)}
}

func (l *UintLiteral) Kind() Kind {
	return l.kind
}

func (l *UintLiteral) Value() *uint256.Int {
	return new(uint256.Int).Set(l.value)
}

func (l *UintLiteral) Encode() ([]byte, error) {
	var v *uint256.Int = l.value

	return encodeWith(func(s serde.Serializer) error {
		switch l.kind {
		case KindU8:
			return s.SerializeU8(uint8(v.Uint64()))
		case KindU16:
			return s.SerializeU16(uint16(v.Uint64()))
		case KindU32:
			return s.SerializeU32(uint32(v.Uint64()))
		case KindU64:
			return s.SerializeU64(v.Uint64())
		case KindU128:
			return s.SerializeU128(serde.Uint128{High: v[1], Low: v[0]})
		default:
			return serializeU256(s, v)
		}
	})
}

// serializeU256 writes the 32 bytes of the value in little endian order,
// which is how the chain lays out its 256 bits integers.
func serializeU256(s serde.Serializer, v *uint256.Int) error {
	var be [32]byte = v.Bytes32()
	var err error
	var i int

	for i = len(be) - 1; i >= 0; i-- {
		err = s.SerializeU8(be[i])
		if err != nil {
			return err
		}
	}

	return nil
}

func (l *UintLiteral) JSON() interface{} {
	switch l.kind {
	case KindU8, KindU16, KindU32:
		return l.value.Uint64()
	default:
		return l.value.Dec()
	}
}

func (l *UintLiteral) String() string {
	return l.value.Dec() + l.kind.String()
}

type AddressLiteral types.Address

func (AddressLiteral) Kind() Kind {
	return KindAddress
}

func (l AddressLiteral) Encode() ([]byte, error) {
	return encodeWith(types.Address(l).Serialize)
}

func (l AddressLiteral) JSON() interface{} {
	return types.Address(l).String()
}

func (l AddressLiteral) String() string {
	return "@" + types.Address(l).ShortString()
}

type BytesLiteral []byte

func (BytesLiteral) Kind() Kind {
	return KindBytes
}

func (l BytesLiteral) Encode() ([]byte, error) {
	return encodeWith(func(s serde.Serializer) error {
		return s.SerializeBytes([]byte(l))
	})
}

func (l BytesLiteral) JSON() interface{} {
	return hexutil.Encode([]byte(l))
}

func (l BytesLiteral) String() string {
	return `x"` + hex.EncodeToString([]byte(l)) + `"`
}

func encodeWith(fn func(serde.Serializer) error) ([]byte, error) {
	var serializer serde.Serializer = bcs.NewSerializer()
	var err error

	err = fn(serializer)
	if err != nil {
		return nil, err
	}

	return serializer.GetBytes(), nil
}

// DecodeLiteral reads back the BCS encoding of a literal of kind `kind`.
// The whole input must be consumed.
func DecodeLiteral(kind Kind, data []byte) (Literal, error) {
	var deserializer serde.Deserializer = bcs.NewDeserializer(data)
	var ret Literal
	var err error

	ret, err = decodeLiteral(kind, deserializer)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", kind)
	}

	if deserializer.GetBufferOffset() != uint64(len(data)) {
		return nil, errors.Errorf("decode %s: %d trailing bytes", kind,
			uint64(len(data))-deserializer.GetBufferOffset())
	}

	return ret, nil
}

func decodeLiteral(kind Kind, d serde.Deserializer) (Literal, error) {
	var value uint256.Int
	var err error

	switch kind {
	case KindBool:
		var b bool
		b, err = d.DeserializeBool()
		return BoolLiteral(b), err

	case KindU8:
		var v uint8
		v, err = d.DeserializeU8()
		value.SetUint64(uint64(v))

	case KindU16:
		var v uint16
		v, err = d.DeserializeU16()
		value.SetUint64(uint64(v))

	case KindU32:
		var v uint32
		v, err = d.DeserializeU32()
		value.SetUint64(uint64(v))

	case KindU64:
		var v uint64
		v, err = d.DeserializeU64()
		value.SetUint64(v)

	case KindU128:
		var v serde.Uint128
		v, err = d.DeserializeU128()
		value[0], value[1] = v.Low, v.High

	case KindU256:
		var le [32]byte
		var i int
		for i = range le {
			le[len(le)-1-i], err = d.DeserializeU8()
			if err != nil {
				return nil, err
			}
		}
		value.SetBytes32(le[:])

	case KindAddress:
		var addr types.Address
		addr, err = types.DeserializeAddress(d)
		return AddressLiteral(addr), err

	case KindBytes:
		var b []byte
		b, err = d.DeserializeBytes()
		return BytesLiteral(b), err

	default:
		return nil, errors.Errorf("unknown literal kind %d", int(kind))
	}

	if err != nil {
		return nil, err
	}

	return &UintLiteral{kind: kind, value: &value}, nil
}

// ParseLiterals parses a comma separated list of literals:
//
//	true | false                   bool
//	123 | 1_000u64 | 255u8 ...     unsigned integer, u64 when unsuffixed
//	0x1 | @0x1                     address
//	x"00ff"                        bytes given in hex
//	b"hello"                       bytes given as ASCII text
//
// A single invalid literal fails the whole list.
func ParseLiterals(s string) ([]Literal, error) {
	var ret []Literal = make([]Literal, 0)
	var tokens []string
	var token string
	var literal Literal
	var err error
	var i int

	if strings.TrimSpace(s) == "" {
		return ret, nil
	}

	tokens, err = splitLiterals(s)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgumentLiteral, "'%s': %v", s, err)
	}

	for i, token = range tokens {
		literal, err = parseLiteral(token)
		if err != nil {
			return nil, errors.Wrapf(types.ErrInvalidArgumentLiteral,
				"argument %d '%s': %v", i, token, err)
		}

		ret = append(ret, literal)
	}

	return ret, nil
}

// ParseValueArguments parses a list of literals and encodes each of them.
func ParseValueArguments(s string) ([][]byte, error) {
	var literals []Literal
	var literal Literal
	var ret [][]byte
	var encoded []byte
	var err error

	literals, err = ParseLiterals(s)
	if err != nil {
		return nil, err
	}

	ret = make([][]byte, 0, len(literals))

	for _, literal = range literals {
		encoded, err = literal.Encode()
		if err != nil {
			return nil, errors.Wrapf(types.ErrInvalidArgumentLiteral,
				"encode '%s': %v", literal, err)
		}

		ret = append(ret, encoded)
	}

	return ret, nil
}

// ParseJSONArguments parses a list of literals into the values of a JSON
// view request.
func ParseJSONArguments(s string) ([]interface{}, error) {
	var literals []Literal
	var literal Literal
	var ret []interface{}
	var err error

	literals, err = ParseLiterals(s)
	if err != nil {
		return nil, err
	}

	ret = make([]interface{}, 0, len(literals))
	for _, literal = range literals {
		ret = append(ret, literal.JSON())
	}

	return ret, nil
}

// splitLiterals cuts `s` on the commas which are not inside a quoted
// string.
func splitLiterals(s string) ([]string, error) {
	var ret []string
	var quoted bool
	var start, i int
	var token string

	for i = 0; i <= len(s); i++ {
		if i < len(s) && s[i] == '"' {
			quoted = !quoted
			continue
		}

		if i < len(s) && (quoted || s[i] != ',') {
			continue
		}

		token = strings.TrimSpace(s[start:i])
		if token == "" {
			return nil, errors.Errorf("empty argument at offset %d", start)
		}

		ret = append(ret, token)
		start = i + 1
	}

	if quoted {
		return nil, errors.New("unterminated quote")
	}

	return ret, nil
}

var uintSuffixes = []struct {
	suffix string
	kind   Kind
}{
	{"u128", KindU128},
	{"u256", KindU256},
	{"u16", KindU16},
	{"u32", KindU32},
	{"u64", KindU64},
	{"u8", KindU8},
}

func parseLiteral(token string) (Literal, error) {
	switch {
	case token == "true":
		return BoolLiteral(true), nil

	case token == "false":
		return BoolLiteral(false), nil

	case strings.HasPrefix(token, "@"):
		return parseAddressLiteral(token[1:])

	case strings.HasPrefix(token, "0x"), strings.HasPrefix(token, "0X"):
		return parseAddressLiteral(token)

	case strings.HasPrefix(token, `x"`):
		return parseQuoted(token[1:], func(body string) ([]byte, error) {
			return hex.DecodeString(body)
		})

	case strings.HasPrefix(token, `b"`):
		return parseQuoted(token[1:], decodeASCII)

	case token[0] >= '0' && token[0] <= '9':
		return parseUintLiteral(token)

	default:
		return nil, errors.New("unrecognized literal")
	}
}

func parseAddressLiteral(literal string) (Literal, error) {
	var addr types.Address
	var err error

	if !strings.HasPrefix(literal, "0x") && !strings.HasPrefix(literal, "0X") {
		return nil, errors.New("address must start with 0x")
	}

	addr, err = types.ParseAddress(literal)
	if err != nil {
		return nil, err
	}

	return AddressLiteral(addr), nil
}

func parseQuoted(quoted string, decode func(string) ([]byte, error)) (Literal, error) {
	var body []byte
	var err error

	if len(quoted) < 2 || quoted[len(quoted)-1] != '"' {
		return nil, errors.New("unterminated quote")
	}

	body, err = decode(quoted[1 : len(quoted)-1])
	if err != nil {
		return nil, err
	}

	return BytesLiteral(body), nil
}

func decodeASCII(s string) ([]byte, error) {
	var i int

	for i = 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return nil, errors.Errorf("non printable ASCII byte 0x%02x", s[i])
		}
	}

	return []byte(s), nil
}

func parseUintLiteral(token string) (Literal, error) {
	var kind Kind = KindU64
	var digits string = token
	var literal *UintLiteral
	var value *uint256.Int
	var entry struct {
		suffix string
		kind   Kind
	}
	var err error

	for _, entry = range uintSuffixes {
		if strings.HasSuffix(digits, entry.suffix) {
			digits = strings.TrimSuffix(digits, entry.suffix)
			kind = entry.kind
			break
		}
	}

	if strings.HasPrefix(digits, "_") || strings.HasSuffix(digits, "_") {
		return nil, errors.New("misplaced digit separator")
	}

	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" || strings.IndexFunc(digits, notDigit) >= 0 {
		return nil, errors.New("not a decimal integer")
	}

	value, err = uint256.FromDecimal(digits)
	if err != nil {
		return nil, errors.Errorf("%v for u256", err)
	}

	literal, err = NewUintLiteral(kind, value)
	if err != nil {
		return nil, err
	}

	return literal, nil
}

func notDigit(c rune) bool {
	return c < '0' || c > '9'
}
