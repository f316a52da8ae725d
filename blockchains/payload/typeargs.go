package payload

import (
	"strings"

	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

// typeParser is a recursive descent parser over the grammar
//
//	type    := primitive | "vector" "<" type ">" | struct
//	struct  := ADDRESS "::" ident "::" ident [ "<" type { "," type } ">" ]
type typeParser struct {
	input string
	pos   int
}

// ParseTypeArguments parses a comma separated list of type tags. Commas
// nested inside angle brackets belong to the enclosing type. An empty input
// is an empty list.
func ParseTypeArguments(s string) ([]types.TypeTag, error) {
	var parser typeParser = typeParser{input: s}
	var ret []types.TypeTag = make([]types.TypeTag, 0)
	var tag types.TypeTag
	var err error

	if strings.TrimSpace(s) == "" {
		return ret, nil
	}

	for {
		tag, err = parser.parseType()
		if err != nil {
			return nil, parser.wrap(err)
		}

		ret = append(ret, tag)

		if parser.done() {
			return ret, nil
		}

		err = parser.expect(",")
		if err != nil {
			return nil, parser.wrap(err)
		}
	}
}

// ParseTypeTag parses exactly one type tag.
func ParseTypeTag(s string) (types.TypeTag, error) {
	var parser typeParser = typeParser{input: s}
	var tag types.TypeTag
	var err error

	tag, err = parser.parseType()
	if err != nil {
		return nil, parser.wrap(err)
	}

	if !parser.done() {
		return nil, parser.wrap(errors.New("trailing characters"))
	}

	return tag, nil
}

func (p *typeParser) wrap(err error) error {
	return errors.Wrapf(types.ErrInvalidTypeArgument, "'%s' at offset %d: %v",
		p.input, p.pos, err)
}

func (p *typeParser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) done() bool {
	p.skipSpaces()
	return p.pos >= len(p.input)
}

func (p *typeParser) peek(token string) bool {
	p.skipSpaces()
	return strings.HasPrefix(p.input[p.pos:], token)
}

func (p *typeParser) expect(token string) error {
	if !p.peek(token) {
		return errors.Errorf("expected '%s'", token)
	}

	p.pos += len(token)

	return nil
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

func (p *typeParser) word() (string, error) {
	var start int

	p.skipSpaces()

	start = p.pos
	for p.pos < len(p.input) && isWordByte(p.input[p.pos]) {
		p.pos++
	}

	if start == p.pos {
		return "", errors.New("expected a name")
	}

	return p.input[start:p.pos], nil
}

func (p *typeParser) identifier() (string, error) {
	var ret string
	var err error

	ret, err = p.word()
	if err != nil {
		return "", err
	}

	if !types.IsValidIdentifier(ret) {
		return "", errors.Errorf("invalid identifier '%s'", ret)
	}

	return ret, nil
}

func (p *typeParser) parseType() (types.TypeTag, error) {
	var primitive types.PrimitiveTag
	var elem types.TypeTag
	var name string
	var ok bool
	var err error

	name, err = p.word()
	if err != nil {
		return nil, err
	}

	primitive, ok = types.PrimitiveTagByName(name)
	if ok {
		return primitive, nil
	}

	if name == "vector" {
		err = p.expect("<")
		if err != nil {
			return nil, err
		}

		elem, err = p.parseType()
		if err != nil {
			return nil, err
		}

		err = p.expect(">")
		if err != nil {
			return nil, err
		}

		return &types.VectorTag{Elem: elem}, nil
	}

	return p.parseStruct(name)
}

func (p *typeParser) parseStruct(address string) (*types.StructTag, error) {
	var ret types.StructTag
	var param types.TypeTag
	var err error

	ret.Address, err = types.ParseAddress(address)
	if err != nil {
		return nil, err
	}

	err = p.expect("::")
	if err != nil {
		return nil, err
	}

	ret.Module, err = p.identifier()
	if err != nil {
		return nil, err
	}

	err = p.expect("::")
	if err != nil {
		return nil, err
	}

	ret.Name, err = p.identifier()
	if err != nil {
		return nil, err
	}

	ret.TypeParams = make([]types.TypeTag, 0)

	if !p.peek("<") {
		return &ret, nil
	}

	p.pos++

	for {
		param, err = p.parseType()
		if err != nil {
			return nil, err
		}

		ret.TypeParams = append(ret.TypeParams, param)

		if p.peek(">") {
			p.pos++
			return &ret, nil
		}

		err = p.expect(",")
		if err != nil {
			return nil, err
		}
	}
}
