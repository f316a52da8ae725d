package parsers

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"libra-txs/core/configs"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Location of the node operator configuration relative to the home
// directory.
const defaultConfigPath = ".0L/0L.toml"

// DefaultConfigPath returns the configuration file used when none is given
// on the command line.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()

	if err != nil {
		return ""
	}

	return filepath.Join(home, defaultConfigPath)
}

// Parse the client configuration file.
// This function both (a) reads the file from disk, and (b) parses it as
// YAML for the ".yaml" and ".yml" extensions, as TOML otherwise.
func ParseConfig(filePath string) (*configs.Config, error) {

	// Get the bytes of the file
	configFileBytes, err := ioutil.ReadFile(filePath)

	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return parseConfigYaml(configFileBytes)
	default:
		return parseConfigToml(configFileBytes)
	}
}

// Parse the configuration if the file exists, an absent file gives the
// empty configuration. Any other read error is reported.
func ParseConfigIfExists(filePath string) (*configs.Config, error) {
	if filePath == "" {
		return &configs.Config{}, nil
	}

	_, err := os.Stat(filePath)

	if os.IsNotExist(err) {
		zap.L().Debug("no configuration file", zap.String("path", filePath))
		return &configs.Config{}, nil
	}

	return ParseConfig(filePath)
}

// Parse the client configuration in the YAML files.
// This will get the bytes of the file.
func parseConfigYaml(fileContents []byte) (*configs.Config, error) {
	var config configs.Config
	err := yaml.Unmarshal(fileContents, &config)

	if err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}

	return &config, nil
}

// Parse the client configuration in the TOML file of a node operator.
func parseConfigToml(fileContents []byte) (*configs.Config, error) {
	var config configs.Config
	v := viper.New()
	v.SetConfigType("toml")

	err := v.ReadConfig(bytes.NewReader(fileContents))

	if err != nil {
		return nil, errors.Wrap(err, "parse configuration")
	}

	err = v.Unmarshal(&config)

	if err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}

	return &config, nil
}

// Parse a file of private keys as written by generate-local-account.
func ParseKeyFile(filePath string) ([]configs.AccountKey, error) {
	keyFileBytes, err := ioutil.ReadFile(filePath)

	if err != nil {
		return nil, err
	}

	return parseKeyYaml(keyFileBytes)
}

func parseKeyYaml(fileContents []byte) ([]configs.AccountKey, error) {
	var keys []configs.AccountKey
	err := yaml.Unmarshal(fileContents, &keys)

	if err != nil {
		return nil, errors.Wrap(err, "parse key file")
	}

	return keys, nil
}
