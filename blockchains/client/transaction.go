package client

import (
	"context"
	"net/http"
	"time"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/payload"
	"libra-txs/blockchains/txbuilder"
	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

const (
	transactionPending = "pending_transaction"
)

// PendingTransaction is a transaction the node accepted in its mempool.
type PendingTransaction struct {
	Hash                    string
	Sender                  types.Address
	SequenceNumber          uint64
	ExpirationTimestampSecs uint64
}

type pendingTransactionJSON struct {
	Hash                    string        `json:"hash"`
	Sender                  types.Address `json:"sender"`
	SequenceNumber          jsonUint64    `json:"sequence_number"`
	ExpirationTimestampSecs jsonUint64    `json:"expiration_timestamp_secs"`
}

// TransactionInfo is the outcome of a committed transaction.
type TransactionInfo struct {
	Hash     string
	Version  uint64
	Success  bool
	VMStatus string
	GasUsed  uint64
}

type transactionJSON struct {
	Type     string     `json:"type"`
	Hash     string     `json:"hash"`
	Version  jsonUint64 `json:"version"`
	Success  bool       `json:"success"`
	VMStatus string     `json:"vm_status"`
	GasUsed  jsonUint64 `json:"gas_used"`
}

// Transfer moves `amount` of the options coin from `from` to `to` and
// returns once the node accepted the transaction.
func (c *Client) Transfer(ctx context.Context, from *account.LocalAccount, to types.Address, amount uint64, options TransactionOptions) (*PendingTransaction, error) {
	var function *types.EntryFunction
	var signed *types.SignedTransaction
	var err error

	err = options.validate()
	if err != nil {
		return nil, err
	}

	function, err = transferFunction(options.coinType(), to, amount)
	if err != nil {
		return nil, err
	}

	signed, err = c.sign(ctx, from, function, options)
	if err != nil {
		return nil, err
	}

	c.logger.Infof("transfer %d from %s to %s", amount, from.Address(), to)

	return c.SubmitTransaction(ctx, signed)
}

func transferFunction(coinType string, to types.Address, amount uint64) (*types.EntryFunction, error) {
	var coin types.TypeTag
	var recipient, value []byte
	var err error

	coin, err = payload.ParseTypeTag(coinType)
	if err != nil {
		return nil, err
	}

	recipient, err = payload.AddressLiteral(to).Encode()
	if err != nil {
		return nil, err
	}

	value, err = payload.NewU64Literal(amount).Encode()
	if err != nil {
		return nil, err
	}

	return types.NewEntryFunction(
		types.ModuleID{Address: types.AddressOne, Name: "coin"},
		"transfer", []types.TypeTag{coin}, [][]byte{recipient, value}), nil
}

// GenerateTransaction builds and signs a call of `functionID` without
// submitting it. The textual arguments are all parsed before the node is
// contacted.
func (c *Client) GenerateTransaction(ctx context.Context, sender *account.LocalAccount, functionID, typeArgs, args string, options TransactionOptions) (*types.SignedTransaction, error) {
	var function *types.EntryFunction
	var err error

	err = options.validate()
	if err != nil {
		return nil, err
	}

	function, err = payload.ParseEntryFunction(functionID, typeArgs, args)
	if err != nil {
		return nil, err
	}

	return c.sign(ctx, sender, function, options)
}

// sign refreshes the sequence number of `sender` from the chain and signs a
// transaction calling `function`.
func (c *Client) sign(ctx context.Context, sender *account.LocalAccount, function types.TransactionPayload, options TransactionOptions) (*types.SignedTransaction, error) {
	var builder *txbuilder.Builder
	var expiration uint64
	var sequence uint64
	var chainID uint8
	var err error

	sequence, err = c.GetSequenceNumber(ctx, sender.Address())
	if err != nil {
		return nil, err
	}

	chainID, err = c.GetChainID(ctx)
	if err != nil {
		return nil, err
	}

	sender.SequenceNumber = sequence
	expiration = uint64(time.Now().Unix()) + options.TimeoutSecs

	builder = txbuilder.New(function, expiration, chainID).
		MaxGasAmount(options.MaxGasAmount).
		GasUnitPrice(options.GasUnitPrice)

	c.logger.Debugf("sign transaction of %s with sequence %d on chain %d",
		sender.Address(), sequence, chainID)

	return sender.SignTransaction(builder)
}

// SubmitTransaction sends `signed` to the node once. A refusal is returned
// as a *SubmissionRejectedError and is never retried.
func (c *Client) SubmitTransaction(ctx context.Context, signed *types.SignedTransaction) (*PendingTransaction, error) {
	var decoded pendingTransactionJSON
	var rerr *RequestError
	var body []byte
	var err error

	body, err = signed.BcsSerialize()
	if err != nil {
		return nil, errors.Wrap(err, "encode signed transaction")
	}

	_, err = c.post(ctx, "/transactions", contentTypeSignedTxn, body, &decoded)
	if errors.As(err, &rerr) {
		return nil, newSubmissionRejectedError(rerr)
	} else if err != nil {
		return nil, errors.Wrap(err, "submit transaction")
	}

	if decoded.Hash == "" {
		decoded.Hash, err = signed.Hash()
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debugf("transaction %s accepted", decoded.Hash)

	return &PendingTransaction{
		Hash:                    decoded.Hash,
		Sender:                  signed.RawTxn.Sender,
		SequenceNumber:          signed.RawTxn.SequenceNumber,
		ExpirationTimestampSecs: signed.RawTxn.ExpirationTimestampSecs,
	}, nil
}

// WaitForTransaction polls the node until `pending` is committed or cannot
// be anymore. Failed execution is reported with ErrTransactionFailed and a
// transaction still unknown after its expiration with
// ErrTransactionExpired.
func (c *Client) WaitForTransaction(ctx context.Context, pending *PendingTransaction) (*TransactionInfo, error) {
	var expiration time.Time

	expiration = time.Unix(int64(pending.ExpirationTimestampSecs), 0)

	return c.waitForHash(ctx, pending.Hash, pending.ExpirationTimestampSecs,
		expiration.Add(c.config.ExpirationGrace))
}

// waitForHash looks up `hash` every poll interval until `deadline`. When
// `expiration` is not zero, a ledger time past it ends the wait early.
func (c *Client) waitForHash(ctx context.Context, hash string, expiration uint64, deadline time.Time) (*TransactionInfo, error) {
	var decoded transactionJSON
	var header http.Header
	var ledger uint64
	var known bool
	var timer *time.Timer
	var err error

	timer = time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "wait for %s", hash)
		case <-timer.C:
		}

		decoded = transactionJSON{}
		header, err = c.get(ctx, "/transactions/by_hash/"+hash, &decoded)

		switch {
		case err == nil && decoded.Type != transactionPending:
			return committed(hash, &decoded)

		case err == nil, isNotFound(err):
			c.logger.Tracef("transaction %s pending", hash)

		case errors.Is(err, types.ErrNetwork), isUnavailable(err):
			c.logger.Warnf("poll transaction %s: %v", hash, err)

		default:
			return nil, errors.Wrapf(err, "wait for %s", hash)
		}

		ledger, known = ledgerTimestampSecs(header)
		if expiration > 0 && known && ledger > expiration {
			return nil, errors.Wrapf(types.ErrTransactionExpired,
				"%s expired at %d, ledger at %d", hash, expiration, ledger)
		}

		if !time.Now().Before(deadline) {
			return nil, errors.Wrapf(types.ErrTransactionExpired,
				"%s not committed before %s", hash, deadline.Format(time.RFC3339))
		}

		timer.Reset(c.config.PollInterval)
	}
}

func committed(hash string, decoded *transactionJSON) (*TransactionInfo, error) {
	var info TransactionInfo = TransactionInfo{
		Hash:     hash,
		Version:  uint64(decoded.Version),
		Success:  decoded.Success,
		VMStatus: decoded.VMStatus,
		GasUsed:  uint64(decoded.GasUsed),
	}

	if !decoded.Success {
		return &info, errors.Wrapf(types.ErrTransactionFailed, "%s: %s",
			hash, decoded.VMStatus)
	}

	return &info, nil
}
