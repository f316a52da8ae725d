// Package client talks to the REST interface of a node and of a faucet. It
// queries accounts, builds and submits transactions, and waits for them to
// be committed.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"libra-txs/blockchains/types"
	"libra-txs/core"

	"github.com/pkg/errors"
)

// Client holds only immutable configuration and can be shared between
// goroutines.
type Client struct {
	logger    core.Logger
	config    Config
	nodeURL   string
	faucetURL string
	http      *http.Client
}

func New(config Config, logger core.Logger) (*Client, error) {
	var ret Client
	var err error

	if logger == nil {
		logger = core.NewNoLogger()
	}

	ret.config = config.withDefaults()
	ret.logger = logger

	ret.nodeURL, err = NormalizeNodeURL(ret.config.NodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "node")
	}

	if ret.config.FaucetURL != "" {
		ret.faucetURL, err = normalizeURL(ret.config.FaucetURL)
		if err != nil {
			return nil, errors.Wrap(err, "faucet")
		}
	}

	ret.http = &http.Client{Timeout: ret.config.HTTPTimeout}

	logger.Debugf("node api at %s", ret.nodeURL)

	return &ret, nil
}

func (c *Client) NodeURL() string {
	return c.nodeURL
}

type ledgerInfo struct {
	ChainID         uint8      `json:"chain_id"`
	LedgerTimestamp jsonUint64 `json:"ledger_timestamp"`
}

// GetChainID asks the node which chain it serves. It is not cached so a
// client keeps working when a local network is restarted.
func (c *Client) GetChainID(ctx context.Context) (uint8, error) {
	var info ledgerInfo
	var err error

	_, err = c.get(ctx, "/", &info)
	if err != nil {
		return 0, errors.Wrap(err, "get chain id")
	}

	return info.ChainID, nil
}

type accountResource struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GetAccountResource returns the data of the resource `resourceType` stored
// under `addr`, or of the account resource when `resourceType` is empty.
func (c *Client) GetAccountResource(ctx context.Context, addr types.Address, resourceType string) (json.RawMessage, error) {
	var resource accountResource
	var path string
	var err error

	if resourceType == "" {
		resourceType = AccountResourceType
	}

	path = "/accounts/" + addr.String() + "/resource/" +
		url.PathEscape(resourceType)

	_, err = c.get(ctx, path, &resource)
	if isNotFound(err) {
		return nil, errors.Wrapf(types.ErrAccountNotFound,
			"%s has no resource %s", addr, resourceType)
	} else if err != nil {
		return nil, errors.Wrapf(err, "get resource %s of %s",
			resourceType, addr)
	}

	return resource.Data, nil
}

type accountData struct {
	SequenceNumber jsonUint64 `json:"sequence_number"`
}

// GetSequenceNumber returns the sequence number the next transaction of
// `addr` must carry.
func (c *Client) GetSequenceNumber(ctx context.Context, addr types.Address) (uint64, error) {
	var data json.RawMessage
	var account accountData
	var err error

	data, err = c.GetAccountResource(ctx, addr, AccountResourceType)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(data, &account)
	if err != nil {
		return 0, errors.Wrapf(err, "decode account resource of %s", addr)
	}

	return uint64(account.SequenceNumber), nil
}

// GetAccountBalance returns the balance of `addr` in the default coin.
func (c *Client) GetAccountBalance(ctx context.Context, addr types.Address) (uint64, error) {
	return c.GetCoinBalance(ctx, addr, DefaultCoinType)
}

// GetCoinBalance returns the balance of `addr` in `coinType`, the default
// coin when empty.
func (c *Client) GetCoinBalance(ctx context.Context, addr types.Address, coinType string) (uint64, error) {
	var balance jsonUint64
	var path string
	var err error

	if coinType == "" {
		coinType = DefaultCoinType
	}

	path = "/accounts/" + addr.String() + "/balance/" + url.PathEscape(coinType)

	_, err = c.get(ctx, path, &balance)
	if isNotFound(err) {
		return 0, errors.Wrapf(types.ErrAccountNotFound, "%s", addr)
	} else if err != nil {
		return 0, errors.Wrapf(err, "get balance of %s", addr)
	}

	return uint64(balance), nil
}
