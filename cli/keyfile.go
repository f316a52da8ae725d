package cli

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"libra-txs/blockchains/account"
	"libra-txs/core"
	"libra-txs/core/configs"
	"libra-txs/core/configs/parsers"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	privateKeysFile = "private-keys.yaml"
	publicKeysFile  = "public-keys.yaml"

	keyFileMode = 0600
	keyDirMode  = 0700
)

// writeKeyFiles stores `key` in `dir` as a private key file readable by
// --private-key-file, and a public key file safe to share.
func writeKeyFiles(dir string, key *account.AccountKey) error {
	var private []configs.AccountKey
	var public []configs.PublicKey
	var err error

	err = os.MkdirAll(dir, keyDirMode)
	if err != nil {
		return errors.Wrapf(err, "create '%s'", dir)
	}

	private = []configs.AccountKey{{
		PrivateKey: key.PrivateKey(),
		Address:    key.Address().String(),
	}}

	public = []configs.PublicKey{{
		PublicKey:         hex.EncodeToString(key.PublicKey()),
		AuthenticationKey: hex.EncodeToString(key.AuthenticationKey()),
		Address:           key.Address().String(),
	}}

	err = writeYaml(filepath.Join(dir, privateKeysFile), private)
	if err != nil {
		return err
	}

	err = writeYaml(filepath.Join(dir, publicKeysFile), public)
	if err != nil {
		return err
	}

	core.Infof("key files of %s written in '%s'", key.Address(), dir)

	return nil
}

func writeYaml(path string, value interface{}) error {
	var data []byte
	var err error

	data, err = yaml.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode '%s'", path)
	}

	err = os.WriteFile(path, data, keyFileMode)
	if err != nil {
		return errors.Wrapf(err, "write '%s'", path)
	}

	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, keyFileMode)
}

// loadAccountKey returns the key given in hex on the command line, or the
// first key of `keyFile`.
func loadAccountKey(privateKey, keyFile string) (*account.AccountKey, error) {
	var keys []configs.AccountKey
	var err error

	if privateKey != "" {
		return account.FromEncodedString(privateKey)
	}

	if keyFile == "" {
		return nil, errors.New("one of --private-key or --private-key-file is required")
	}

	keys, err = parsers.ParseKeyFile(keyFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read '%s'", keyFile)
	}

	if len(keys) == 0 {
		return nil, errors.Errorf("no key in '%s'", keyFile)
	} else if len(keys) > 1 {
		core.Warnf("%d keys in '%s', using the first one", len(keys), keyFile)
	}

	return account.FromPrivateKey(keys[0].PrivateKey)
}
