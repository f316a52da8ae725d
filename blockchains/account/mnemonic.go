package account

import (
	"fmt"
	"strconv"
	"strings"

	"libra-txs/blockchains/types"

	"github.com/anyproto/go-slip10"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ed25519"
)

const (
	// DefaultDerivationPath is the path wallets use for the first account
	// of a mnemonic.
	DefaultDerivationPath = "m/44'/637'/0'/0'/0'"

	hardenedOffset uint32 = 0x80000000

	// Position of the account segment in "m/44'/637'/account'/change'/index'".
	accountSegment = 2
)

// FromMnemonic derives the key of an account from a BIP-39 phrase along a
// SLIP-0010 hardened path. When `accountIndex` is not zero it replaces the
// account segment of `derivationPath`.
func FromMnemonic(phrase, derivationPath string, accountIndex uint32) (*AccountKey, error) {
	var segments []uint32
	var seed []byte
	var private ed25519.PrivateKey
	var err error

	phrase = strings.Join(strings.Fields(phrase), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, types.ErrInvalidMnemonic
	}

	if derivationPath == "" {
		derivationPath = DefaultDerivationPath
	}

	segments, err = parseDerivationPath(derivationPath)
	if err != nil {
		return nil, err
	}

	if accountIndex != 0 {
		if accountIndex >= hardenedOffset {
			return nil, errors.Wrapf(types.ErrInvalidPath,
				"account index %d out of range", accountIndex)
		}

		segments[accountSegment] = accountIndex + hardenedOffset
	}

	seed, err = bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidMnemonic, "%v", err)
	}

	private, err = derive(formatDerivationPath(segments), seed)
	if err != nil {
		return nil, err
	}

	return newAccountKey(private), nil
}

// derive walks the SLIP-0010 ed25519 tree of `seed` down `path`.
func derive(path string, seed []byte) (ed25519.PrivateKey, error) {
	var private ed25519.PrivateKey

	node, err := slip10.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidPath, "'%s': %v", path, err)
	}

	_, private = node.Keypair()

	return ed25519.NewKeyFromSeed(private.Seed()), nil
}

// parseDerivationPath accepts BIP-44 paths for this chain, where every
// segment is hardened as SLIP-0010 requires for ed25519.
func parseDerivationPath(path string) ([]uint32, error) {
	var ret []uint32
	var parts []string
	var part string
	var value uint64
	var err error
	var i int

	parts = strings.Split(path, "/")
	if len(parts) != 6 || parts[0] != "m" {
		return nil, errors.Wrapf(types.ErrInvalidPath, "'%s'", path)
	}

	ret = make([]uint32, 0, len(parts)-1)

	for i, part = range parts[1:] {
		if !strings.HasSuffix(part, "'") {
			return nil, errors.Wrapf(types.ErrInvalidPath,
				"'%s': segment %d is not hardened", path, i+1)
		}

		value, err = strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 31)
		if err != nil {
			return nil, errors.Wrapf(types.ErrInvalidPath,
				"'%s': segment %d: %v", path, i+1, err)
		}

		ret = append(ret, uint32(value)+hardenedOffset)
	}

	if ret[0] != 44+hardenedOffset || ret[1] != 637+hardenedOffset {
		return nil, errors.Wrapf(types.ErrInvalidPath,
			"'%s': expected m/44'/637'/...", path)
	}

	return ret, nil
}

// formatDerivationPath writes `segments` back as a hardened path.
func formatDerivationPath(segments []uint32) string {
	var b strings.Builder
	var segment uint32

	b.WriteString("m")
	for _, segment = range segments {
		fmt.Fprintf(&b, "/%d'", segment-hardenedOffset)
	}

	return b.String()
}
