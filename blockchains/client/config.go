package client

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultNodeURL         = "http://0.0.0.0:8080/v1"
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultExpirationGrace = 5 * time.Second
	DefaultFaucetTimeout   = 30 * time.Second
	DefaultUserAgent       = "libra-txs"
)

// Config is everything a Client needs to reach a node. It is resolved once
// by the caller and never read from the environment by the client itself.
type Config struct {
	// Base URL of the node REST interface. The "/v1" suffix is added when
	// missing.
	NodeURL string

	// Base URL of the faucet. Funding operations fail when empty.
	FaucetURL string

	HTTPTimeout time.Duration

	// Delay between two lookups of a pending transaction.
	PollInterval time.Duration

	// How long after its expiration a transaction is still looked up
	// before being reported as expired.
	ExpirationGrace time.Duration

	// How long to wait for the transactions a faucet returns.
	FaucetTimeout time.Duration

	UserAgent string
}

func DefaultConfig() Config {
	return Config{
		NodeURL:         DefaultNodeURL,
		HTTPTimeout:     DefaultHTTPTimeout,
		PollInterval:    DefaultPollInterval,
		ExpirationGrace: DefaultExpirationGrace,
		FaucetTimeout:   DefaultFaucetTimeout,
		UserAgent:       DefaultUserAgent,
	}
}

func (c Config) withDefaults() Config {
	if c.NodeURL == "" {
		c.NodeURL = DefaultNodeURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ExpirationGrace < 0 {
		c.ExpirationGrace = 0
	}
	if c.FaucetTimeout <= 0 {
		c.FaucetTimeout = DefaultFaucetTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	return c
}

// NormalizeNodeURL checks `raw` is an http(s) URL and returns it with the
// API version path appended.
func NormalizeNodeURL(raw string) (string, error) {
	var ret string
	var err error

	ret, err = normalizeURL(raw)
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(ret, "/v1") {
		ret += "/v1"
	}

	return ret, nil
}

func normalizeURL(raw string) (string, error) {
	var parsed *url.URL
	var err error

	parsed, err = url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrapf(err, "invalid url '%s'", raw)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Errorf("invalid url '%s': scheme must be http or https", raw)
	}

	if parsed.Host == "" {
		return "", errors.Errorf("invalid url '%s': missing host", raw)
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}
