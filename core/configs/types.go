package configs

import (
	"encoding/hex"
	"errors"
)

// Config contains the information of the client configuration file.
// The layout follows the node operator configuration so an existing
// "0L.toml" can be given as is, unknown sections are ignored. The same
// fields can be written in YAML.
type Config struct {
	Profile     ProfileConfig     `yaml:"profile" mapstructure:"profile"`         // Account and nodes of the operator
	FaucetURL   string            `yaml:"faucet_url" mapstructure:"faucet_url"`   // Faucet of a local or test network
	Transaction TransactionConfig `yaml:"transaction" mapstructure:"transaction"` // Defaults of the sent transactions
	Client      ClientConfig      `yaml:"client" mapstructure:"client"`           // Polling and timeouts
}

// ProfileConfig lists the nodes the client can talk to.
type ProfileConfig struct {
	Account       string   `yaml:"account" mapstructure:"account"`               // Address of the operator
	UpstreamNodes []string `yaml:"upstream_nodes" mapstructure:"upstream_nodes"` // REST urls of the nodes
}

// TransactionConfig holds the defaults of the transaction flags. A zero
// value keeps the built in default.
type TransactionConfig struct {
	MaxGasAmount uint64 `yaml:"max_gas_amount" mapstructure:"max_gas_amount"`
	GasUnitPrice uint64 `yaml:"gas_unit_price" mapstructure:"gas_unit_price"`
	TimeoutSecs  uint64 `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CoinType     string `yaml:"coin_type" mapstructure:"coin_type"`
}

// ClientConfig holds the durations used by the client, in milliseconds.
type ClientConfig struct {
	HTTPTimeoutMs     uint64 `yaml:"http_timeout_ms" mapstructure:"http_timeout_ms"`
	PollIntervalMs    uint64 `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	ExpirationGraceMs uint64 `yaml:"expiration_grace_ms" mapstructure:"expiration_grace_ms"`
}

// UpstreamNode returns the node to use, the first of the list, or an empty
// string when none is configured.
func (c *Config) UpstreamNode() string {
	if len(c.Profile.UpstreamNodes) == 0 {
		return ""
	}

	return c.Profile.UpstreamNodes[0]
}

// AccountKey is one entry of a key file.
type AccountKey struct {
	PrivateKey []byte `yaml:"private"` // Private key seed
	Address    string `yaml:"address"` // Address that it is from
}

// PublicKey is one entry of a public key file.
type PublicKey struct {
	PublicKey         string `yaml:"public"`   // Hex of the ed25519 public key
	AuthenticationKey string `yaml:"auth_key"` // Hex of the authentication key
	Address           string `yaml:"address"`  // Address of the account
}

// Naive check if the prefixed PrivateKey has "0x" leading.
func checkPrefix(keyHex string) bool {
	return len(keyHex) >= 2 && // Length must be 0x or more
		keyHex[0] == '0' && // Starts with 0
		(keyHex[1] == 'x' || keyHex[1] == 'X') // followed by an x or X
}

func (ak *AccountKey) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var c struct {
		PrivateKey string `yaml:"private"`
		Address    string `yaml:"address"`
	}
	err := unmarshal(&c)

	if err != nil {
		return err
	}

	if len(c.PrivateKey) == 0 {
		return errors.New("empty PrivateKey passed to unmarshal")
	}

	if checkPrefix(c.PrivateKey) {
		c.PrivateKey = c.PrivateKey[2:]
	}

	privateKeyBytes, err := hex.DecodeString(c.PrivateKey)
	// If we couldn't decode
	if err != nil {
		return err
	}

	(*ak).PrivateKey = privateKeyBytes
	(*ak).Address = c.Address

	return nil
}

// Keys are written back in the same "0x" form they are read.
func (ak AccountKey) MarshalYAML() (interface{}, error) {
	return struct {
		PrivateKey string `yaml:"private"`
		Address    string `yaml:"address"`
	}{
		PrivateKey: "0x" + hex.EncodeToString(ak.PrivateKey),
		Address:    ak.Address,
	}, nil
}
