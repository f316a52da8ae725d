// Package payload turns the textual form of an entry function call, as
// typed on a command line, into its canonical encoding.
package payload

import (
	"strings"

	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

// ParseFunctionID splits "ADDRESS::module::function" into its three parts.
func ParseFunctionID(functionID string) (types.Address, string, string, error) {
	var addr types.Address
	var parts []string
	var err error

	parts = strings.Split(strings.TrimSpace(functionID), "::")
	if len(parts) != 3 {
		return addr, "", "", errors.Wrapf(types.ErrMalformedFunctionID,
			"'%s': expected ADDRESS::module::function", functionID)
	}

	addr, err = types.ParseAddress(parts[0])
	if err != nil {
		return addr, "", "", errors.Wrapf(types.ErrMalformedFunctionID,
			"'%s': %v", functionID, err)
	}

	if !types.IsValidIdentifier(parts[1]) {
		return addr, "", "", errors.Wrapf(types.ErrMalformedFunctionID,
			"'%s': invalid module name '%s'", functionID, parts[1])
	}

	if !types.IsValidIdentifier(parts[2]) {
		return addr, "", "", errors.Wrapf(types.ErrMalformedFunctionID,
			"'%s': invalid function name '%s'", functionID, parts[2])
	}

	return addr, parts[1], parts[2], nil
}

// ParseEntryFunction parses every textual part of an entry function call.
// Nothing is returned unless all of them are valid.
func ParseEntryFunction(functionID, typeArgs, args string) (*types.EntryFunction, error) {
	var module types.ModuleID
	var function string
	var tags []types.TypeTag
	var encoded [][]byte
	var err error

	module.Address, module.Name, function, err = ParseFunctionID(functionID)
	if err != nil {
		return nil, err
	}

	tags, err = ParseTypeArguments(typeArgs)
	if err != nil {
		return nil, err
	}

	encoded, err = ParseValueArguments(args)
	if err != nil {
		return nil, err
	}

	return types.NewEntryFunction(module, function, tags, encoded), nil
}
