package types

import (
	"fmt"
	"strings"

	"github.com/novifinancial/serde-reflection/serde-generate/runtime/golang/serde"
	"github.com/pkg/errors"
)

// TypeTag is the canonical representation of a Move type, as used for the
// type arguments of an entry function.
type TypeTag interface {
	isTypeTag()

	Serialize(serde.Serializer) error

	String() string
}

// PrimitiveTag is a type tag without parameters. The constant values are the
// BCS variant indices of the type tag enumeration.
type PrimitiveTag uint32

const (
	TagBool    PrimitiveTag = 0
	TagU8      PrimitiveTag = 1
	TagU64     PrimitiveTag = 2
	TagU128    PrimitiveTag = 3
	TagAddress PrimitiveTag = 4
	TagSigner  PrimitiveTag = 5
	TagU16     PrimitiveTag = 8
	TagU32     PrimitiveTag = 9
	TagU256    PrimitiveTag = 10

	tagVector uint32 = 6
	tagStruct uint32 = 7
)

var primitiveNames = map[PrimitiveTag]string{
	TagBool:    "bool",
	TagU8:      "u8",
	TagU16:     "u16",
	TagU32:     "u32",
	TagU64:     "u64",
	TagU128:    "u128",
	TagU256:    "u256",
	TagAddress: "address",
	TagSigner:  "signer",
}

// PrimitiveTagByName returns the primitive tag spelled `name` in Move source.
func PrimitiveTagByName(name string) (PrimitiveTag, bool) {
	var tag PrimitiveTag
	var spelled string

	for tag, spelled = range primitiveNames {
		if spelled == name {
			return tag, true
		}
	}

	return 0, false
}

func (PrimitiveTag) isTypeTag() {}

func (t PrimitiveTag) Serialize(serializer serde.Serializer) error {
	return serializer.SerializeVariantIndex(uint32(t))
}

func (t PrimitiveTag) String() string {
	var name string
	var ok bool

	name, ok = primitiveNames[t]
	if !ok {
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}

	return name
}

type VectorTag struct {
	Elem TypeTag
}

func (*VectorTag) isTypeTag() {}

func (t *VectorTag) Serialize(serializer serde.Serializer) error {
	var err error

	err = serializer.SerializeVariantIndex(tagVector)
	if err != nil {
		return err
	}

	return t.Elem.Serialize(serializer)
}

func (t *VectorTag) String() string {
	return "vector<" + t.Elem.String() + ">"
}

// StructTag names a struct declared in a published module, possibly
// instantiated with type parameters.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

func (*StructTag) isTypeTag() {}

func (t *StructTag) Serialize(serializer serde.Serializer) error {
	var err error

	err = serializer.SerializeVariantIndex(tagStruct)
	if err != nil {
		return err
	}

	err = t.Address.Serialize(serializer)
	if err != nil {
		return err
	}

	err = serializer.SerializeStr(t.Module)
	if err != nil {
		return err
	}

	err = serializer.SerializeStr(t.Name)
	if err != nil {
		return err
	}

	return serializeTypeTags(serializer, t.TypeParams)
}

func (t *StructTag) String() string {
	var params []string
	var param TypeTag
	var ret string

	ret = fmt.Sprintf("%s::%s::%s", t.Address.ShortString(), t.Module, t.Name)

	if len(t.TypeParams) == 0 {
		return ret
	}

	params = make([]string, 0, len(t.TypeParams))
	for _, param = range t.TypeParams {
		params = append(params, param.String())
	}

	return ret + "<" + strings.Join(params, ", ") + ">"
}

func serializeTypeTags(serializer serde.Serializer, tags []TypeTag) error {
	var tag TypeTag
	var err error

	err = serializer.SerializeLen(uint64(len(tags)))
	if err != nil {
		return err
	}

	for _, tag = range tags {
		err = tag.Serialize(serializer)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeserializeTypeTag reads back a type tag written by Serialize.
func DeserializeTypeTag(deserializer serde.Deserializer) (TypeTag, error) {
	var index uint32
	var err error

	index, err = deserializer.DeserializeVariantIndex()
	if err != nil {
		return nil, err
	}

	switch index {
	case tagVector:
		var elem TypeTag

		elem, err = DeserializeTypeTag(deserializer)
		if err != nil {
			return nil, err
		}

		return &VectorTag{Elem: elem}, nil

	case tagStruct:
		return deserializeStructTag(deserializer)

	default:
		if _, ok := primitiveNames[PrimitiveTag(index)]; !ok {
			return nil, errors.Errorf("unknown type tag variant %d", index)
		}

		return PrimitiveTag(index), nil
	}
}

func deserializeStructTag(deserializer serde.Deserializer) (*StructTag, error) {
	var ret StructTag
	var length uint64
	var param TypeTag
	var err error
	var i uint64

	ret.Address, err = DeserializeAddress(deserializer)
	if err != nil {
		return nil, err
	}

	ret.Module, err = deserializer.DeserializeStr()
	if err != nil {
		return nil, err
	}

	ret.Name, err = deserializer.DeserializeStr()
	if err != nil {
		return nil, err
	}

	length, err = deserializer.DeserializeLen()
	if err != nil {
		return nil, err
	}

	// The length is untrusted, the slice grows with the decoded params.
	for i = 0; i < length; i++ {
		param, err = DeserializeTypeTag(deserializer)
		if err != nil {
			return nil, err
		}

		ret.TypeParams = append(ret.TypeParams, param)
	}

	return &ret, nil
}

// IsValidIdentifier reports whether `s` can name a Move module, function or
// struct.
func IsValidIdentifier(s string) bool {
	var i int
	var c rune

	if s == "" {
		return false
	}

	for i, c = range s {
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return s != "_"
}
