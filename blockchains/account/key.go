package account

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"libra-txs/blockchains/types"

	"github.com/diem/client-sdk-go/diemkeys"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// AccountKey owns the ed25519 key of a single signer account and everything
// derived from it.
type AccountKey struct {
	keys *diemkeys.Keys
	sk   ed25519.PrivateKey
	pk   ed25519.PublicKey
}

func newAccountKey(sk ed25519.PrivateKey) *AccountKey {
	var pk ed25519.PublicKey = sk.Public().(ed25519.PublicKey)

	return &AccountKey{
		keys: diemkeys.NewKeysFromPublicAndPrivateKeys(
			diemkeys.NewEd25519PublicKey(pk),
			diemkeys.NewEd25519PrivateKey(sk)),
		sk: sk,
		pk: pk,
	}
}

// FromPrivateKey accepts either the 32 bytes seed of the key or its 64 bytes
// expanded form. In the latter case the embedded public half must match the
// seed.
func FromPrivateKey(raw []byte) (*AccountKey, error) {
	var sk ed25519.PrivateKey

	switch len(raw) {
	case ed25519.SeedSize:
		sk = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		sk = ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !sk.Equal(ed25519.PrivateKey(raw)) {
			return nil, errors.Wrap(types.ErrInvalidKeyEncoding,
				"public half does not match seed")
		}
	default:
		return nil, errors.Wrapf(types.ErrInvalidKeyEncoding,
			"expected %d or %d bytes, got %d", ed25519.SeedSize,
			ed25519.PrivateKeySize, len(raw))
	}

	return newAccountKey(sk), nil
}

// FromEncodedString decodes a hex private key, with or without "0x" prefix.
func FromEncodedString(encoded string) (*AccountKey, error) {
	var raw []byte
	var err error

	encoded = strings.TrimSpace(encoded)
	encoded = strings.TrimPrefix(strings.TrimPrefix(encoded, "0x"), "0X")

	raw, err = hex.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidKeyEncoding, "%v", err)
	}

	return FromPrivateKey(raw)
}

// Generate draws a fresh key from `rng`, or from the system CSPRNG when
// `rng` is nil.
func Generate(rng io.Reader) (*AccountKey, error) {
	var seed [ed25519.SeedSize]byte
	var err error

	if rng == nil {
		rng = rand.Reader
	}

	_, err = io.ReadFull(rng, seed[:])
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}

	return newAccountKey(ed25519.NewKeyFromSeed(seed[:])), nil
}

func (k *AccountKey) PrivateKey() []byte {
	return append([]byte{}, k.sk.Seed()...)
}

func (k *AccountKey) PublicKey() []byte {
	return k.keys.PublicKey.Bytes()
}

// AuthenticationKey is the hash of the public key followed by the single
// ed25519 scheme byte.
func (k *AccountKey) AuthenticationKey() []byte {
	return []byte(k.keys.AuthKey())
}

// Address returns the address an account created from this key lives at.
// Key rotation is not tracked, so it always equals the authentication key.
func (k *AccountKey) Address() types.Address {
	var ret types.Address

	copy(ret[:], k.AuthenticationKey())

	return ret
}

func (k *AccountKey) Sign(message []byte) []byte {
	return k.keys.PrivateKey.Sign(message)
}

func (k *AccountKey) Verify(message, signature []byte) bool {
	return ed25519.Verify(k.pk, message, signature)
}
