package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

// FundByFaucet asks the faucet to mint `amount` coins to `addr`, creating
// the account if needed, and waits for the minting transactions to be
// committed. It returns their hashes.
func (c *Client) FundByFaucet(ctx context.Context, addr types.Address, amount uint64) ([]string, error) {
	var hashes []string
	var hash string
	var query url.Values
	var deadline time.Time
	var err error

	if c.faucetURL == "" {
		return nil, types.ErrFaucetNotConfigured
	}

	query = url.Values{}
	query.Set("address", addr.String())
	query.Set("amount", strconv.FormatUint(amount, 10))

	_, err = c.request(ctx, http.MethodPost, c.faucetURL+"/mint?"+query.Encode(),
		"", []byte{}, &hashes)
	if err != nil {
		return nil, errors.Wrapf(err, "fund %s", addr)
	}

	c.logger.Infof("faucet minted %d to %s in %d transactions", amount,
		addr, len(hashes))

	deadline = time.Now().Add(c.config.FaucetTimeout)

	for _, hash = range hashes {
		_, err = c.waitForHash(ctx, hash, 0, deadline)
		if err != nil {
			return nil, errors.Wrapf(err, "fund %s", addr)
		}
	}

	return hashes, nil
}

// CreateAccountByFaucet creates the account `addr` on chain without giving
// it any coin.
func (c *Client) CreateAccountByFaucet(ctx context.Context, addr types.Address) error {
	var err error

	_, err = c.FundByFaucet(ctx, addr, 0)

	return err
}
