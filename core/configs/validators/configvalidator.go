package validators

import (
	"fmt"
	"net/url"

	"libra-txs/blockchains/payload"
	"libra-txs/core/configs"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Validates all fields of the client configuration
// Determines the validity and returns a boolean whether it is
// valid or invalid.
func ValidateConfig(c *configs.Config) (bool, error) {
	// Nodes can be omitted, the command line or the environment then
	// provides one.
	if len(c.Profile.UpstreamNodes) == 0 {
		zap.L().Debug("no upstream node in configuration file")
	}

	// Every node must be a usable url.
	for i, node := range c.Profile.UpstreamNodes {
		if !isHTTPURL(node) {
			return false, fmt.Errorf("upstream node %d '%s' is not an http url", i, node)
		}
	}

	if len(c.Profile.UpstreamNodes) > 1 {
		zap.L().Warn("several upstream nodes configured, using the first one",
			zap.String("node", c.UpstreamNode()))
	}

	if c.FaucetURL != "" && !isHTTPURL(c.FaucetURL) {
		return false, fmt.Errorf("faucet '%s' is not an http url", c.FaucetURL)
	}

	// Transaction defaults are optional, an explicit zero keeps the
	// built in value, so only the coin type can be wrong.
	if c.Transaction.CoinType != "" {
		_, err := payload.ParseTypeTag(c.Transaction.CoinType)

		if err != nil {
			return false, errors.Wrap(err, "coin type")
		}
	}

	return true, nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)

	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
