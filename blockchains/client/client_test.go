package client

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"libra-txs/blockchains/account"
	"libra-txs/blockchains/types"

	"github.com/stretchr/testify/require"
)

const (
	testPrivateKey = "c43f57994644ebda1eabfebf84def73fbd1d3ce442a9d2b2f4cb9f4da7b9908c"
	testChainID    = 4
	acceptedHash   = "0xab00000000000000000000000000000000000000000000000000000000000000"
)

// fakeNode serves the subset of the node REST interface the client uses.
type fakeNode struct {
	lock sync.Mutex

	requests      int
	sequences     map[types.Address]interface{}
	balances      map[types.Address]interface{}
	resourcePaths []string
	submitted     [][]byte
	contentTypes  []string
	reject        bool
	status        map[string]string
	ledgerUsec    uint64
	views         []viewRequest
	mints         []url.Values
	overloaded    int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		sequences: make(map[types.Address]interface{}),
		balances:  make(map[types.Address]interface{}),
		status:    make(map[string]string),
	}
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"message":    what + " not found",
		"error_code": what + "_not_found",
	})
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.lock.Lock()
	defer n.lock.Unlock()

	n.requests++

	if n.ledgerUsec > 0 {
		w.Header().Set(headerLedgerTimestamp, strconv.FormatUint(n.ledgerUsec, 10))
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && path == "/":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"chain_id":         testChainID,
			"ledger_timestamp": "1000000",
		})

	case r.Method == http.MethodGet && len(parts) == 4 && parts[0] == "accounts":
		n.serveAccount(w, r, parts)

	case r.Method == http.MethodPost && path == "/transactions":
		n.serveSubmit(w, r)

	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "by_hash":
		n.serveByHash(w, parts[2])

	case r.Method == http.MethodPost && path == "/view":
		var request viewRequest
		_ = json.NewDecoder(r.Body).Decode(&request)
		n.views = append(n.views, request)
		writeJSON(w, http.StatusOK, []interface{}{"100", true})

	case r.Method == http.MethodPost && path == "/mint":
		n.mints = append(n.mints, r.URL.Query())
		n.status["0xfaucet"] = "success"
		writeJSON(w, http.StatusOK, []string{"0xfaucet"})

	default:
		notFound(w, "route")
	}
}

func (n *fakeNode) serveAccount(w http.ResponseWriter, r *http.Request, parts []string) {
	var addr types.Address

	if addr.UnmarshalText([]byte(parts[1])) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad address"})
		return
	}

	switch parts[2] {
	case "resource":
		resource, _ := url.PathUnescape(parts[3])
		n.resourcePaths = append(n.resourcePaths, resource)

		sequence, ok := n.sequences[addr]
		if !ok {
			notFound(w, "account")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type": resource,
			"data": map[string]interface{}{
				"sequence_number":    sequence,
				"authentication_key": addr.String(),
			},
		})

	case "balance":
		balance, ok := n.balances[addr]
		if !ok {
			notFound(w, "account")
			return
		}

		writeJSON(w, http.StatusOK, balance)

	default:
		notFound(w, "route")
	}
}

func (n *fakeNode) serveSubmit(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	n.submitted = append(n.submitted, body)
	n.contentTypes = append(n.contentTypes, r.Header.Get("Content-Type"))

	if n.reject {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message":       "Invalid transaction: SEQUENCE_NUMBER_TOO_OLD",
			"error_code":    "vm_error",
			"vm_error_code": 3,
		})
		return
	}

	n.status[acceptedHash] = "pending"

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"hash":                      acceptedHash,
		"sender":                    hex.EncodeToString(body[:32]),
		"sequence_number":           "0",
		"expiration_timestamp_secs": "0",
	})
}

func (n *fakeNode) serveByHash(w http.ResponseWriter, hash string) {
	if n.overloaded > 0 {
		n.overloaded--
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "overloaded"})
		return
	}

	switch n.status[hash] {
	case "pending":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type": "pending_transaction",
			"hash": hash,
		})
	case "success":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type":      "user_transaction",
			"hash":      hash,
			"version":   "42",
			"success":   true,
			"vm_status": "Executed successfully",
			"gas_used":  "9",
		})
	case "failed":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"type":      "user_transaction",
			"hash":      hash,
			"version":   "43",
			"success":   false,
			"vm_status": "Move abort in 0x1::coin: EINSUFFICIENT_BALANCE(0x10006)",
			"gas_used":  "9",
		})
	case "invalid":
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid hash"})
	default:
		notFound(w, "transaction")
	}
}

// locked runs `fn` while no request is served, for the tests to look at or
// change the node state.
func (n *fakeNode) locked(fn func()) {
	n.lock.Lock()
	defer n.lock.Unlock()
	fn()
}

func (n *fakeNode) setStatus(hash, status string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.status[hash] = status
}

func (n *fakeNode) requestCount() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.requests
}

func newTestClient(t *testing.T, node *fakeNode) *Client {
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	c, err := New(Config{
		NodeURL:         server.URL,
		FaucetURL:       server.URL,
		PollInterval:    10 * time.Millisecond,
		ExpirationGrace: 0,
	}, nil)
	require.NoError(t, err)

	return c
}

func testAccount(t *testing.T) *account.LocalAccount {
	key, err := account.FromEncodedString(testPrivateKey)
	require.NoError(t, err)
	return account.NewLocalAccount(key, 0)
}

func TestNew(t *testing.T) {
	cases := map[string]string{
		"http://0.0.0.0:8080":       "http://0.0.0.0:8080/v1",
		"http://0.0.0.0:8080/":      "http://0.0.0.0:8080/v1",
		"https://node.example/v1/":  "https://node.example/v1",
		"https://node.example/api/": "https://node.example/api/v1",
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			c, err := New(Config{NodeURL: input}, nil)
			require.NoError(t, err)
			require.Equal(t, expected, c.NodeURL())
		})
	}

	t.Run("default", func(t *testing.T) {
		c, err := New(Config{}, nil)
		require.NoError(t, err)
		require.Equal(t, DefaultNodeURL, c.NodeURL())
	})

	for _, bad := range []string{"ftp://node", "node:8080", "http://"} {
		t.Run("reject "+bad, func(t *testing.T) {
			_, err := New(Config{NodeURL: bad}, nil)
			require.Error(t, err)
		})
	}
}

func TestAccountQueries(t *testing.T) {
	node := newFakeNode()
	c := newTestClient(t, node)
	ctx := context.Background()
	acc := testAccount(t)

	t.Run("chain id", func(t *testing.T) {
		id, err := c.GetChainID(ctx)
		require.NoError(t, err)
		require.Equal(t, uint8(testChainID), id)
	})

	t.Run("sequence number as string", func(t *testing.T) {
		node.locked(func() { node.sequences[acc.Address()] = "12" })
		seq, err := c.GetSequenceNumber(ctx, acc.Address())
		require.NoError(t, err)
		require.Equal(t, uint64(12), seq)
	})

	t.Run("sequence number as number", func(t *testing.T) {
		node.locked(func() { node.sequences[acc.Address()] = 13 })
		seq, err := c.GetSequenceNumber(ctx, acc.Address())
		require.NoError(t, err)
		require.Equal(t, uint64(13), seq)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := c.GetSequenceNumber(ctx, types.AddressOne)
		require.True(t, errors.Is(err, types.ErrAccountNotFound))

		_, err = c.GetAccountBalance(ctx, types.AddressOne)
		require.True(t, errors.Is(err, types.ErrAccountNotFound))
	})

	t.Run("balance", func(t *testing.T) {
		node.locked(func() { node.balances[acc.Address()] = "100000000" })
		balance, err := c.GetAccountBalance(ctx, acc.Address())
		require.NoError(t, err)
		require.Equal(t, uint64(100000000), balance)

		node.locked(func() { node.balances[acc.Address()] = 7 })
		balance, err = c.GetAccountBalance(ctx, acc.Address())
		require.NoError(t, err)
		require.Equal(t, uint64(7), balance)
	})

	t.Run("resource", func(t *testing.T) {
		data, err := c.GetAccountResource(ctx, acc.Address(), "")
		require.NoError(t, err)
		require.Contains(t, string(data), "sequence_number")
		node.locked(func() {
			require.Equal(t, AccountResourceType, node.resourcePaths[len(node.resourcePaths)-1])
		})

		_, err = c.GetAccountResource(ctx, acc.Address(), "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>")
		require.NoError(t, err)
		node.locked(func() {
			require.Equal(t, "0x1::coin::CoinStore<0x1::aptos_coin::AptosCoin>",
				node.resourcePaths[len(node.resourcePaths)-1])
		})
	})
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(newFakeNode())
	c, err := New(Config{NodeURL: server.URL}, nil)
	require.NoError(t, err)
	server.Close()

	_, err = c.GetChainID(context.Background())
	require.True(t, errors.Is(err, types.ErrNetwork))
}

func TestGenerateTransaction(t *testing.T) {
	node := newFakeNode()
	c := newTestClient(t, node)
	ctx := context.Background()
	acc := testAccount(t)
	node.locked(func() { node.sequences[acc.Address()] = "5" })

	t.Run("uses chain sequence number", func(t *testing.T) {
		signed, err := c.GenerateTransaction(ctx, acc, "0x1::coin::transfer",
			"0x1::aptos_coin::AptosCoin", "@0x2, 1000", DefaultTransactionOptions())
		require.NoError(t, err)
		require.Equal(t, uint64(5), signed.RawTxn.SequenceNumber)
		require.Equal(t, uint8(testChainID), signed.RawTxn.ChainID)
		require.Equal(t, uint64(DefaultMaxGasAmount), signed.RawTxn.MaxGasAmount)
		require.Equal(t, uint64(6), acc.SequenceNumber)
		node.locked(func() { require.Empty(t, node.submitted) })

		now := uint64(time.Now().Unix())
		require.InDelta(t, now+DefaultTimeoutSecs, signed.RawTxn.ExpirationTimestampSecs, 2)
	})

	t.Run("zero gas makes no request", func(t *testing.T) {
		before := node.requestCount()

		options := DefaultTransactionOptions()
		options.MaxGasAmount = 0
		_, err := c.GenerateTransaction(ctx, acc, "0x1::coin::transfer", "", "", options)
		require.True(t, errors.Is(err, types.ErrInvalidGasParameters))

		options = DefaultTransactionOptions()
		options.GasUnitPrice = 0
		_, err = c.Transfer(ctx, acc, types.AddressOne, 1, options)
		require.True(t, errors.Is(err, types.ErrInvalidGasParameters))

		require.Equal(t, before, node.requestCount())
	})

	t.Run("bad input makes no request", func(t *testing.T) {
		before := node.requestCount()

		_, err := c.GenerateTransaction(ctx, acc, "0x1::coin", "", "", DefaultTransactionOptions())
		require.True(t, errors.Is(err, types.ErrMalformedFunctionID))

		_, err = c.GenerateTransaction(ctx, acc, "0x1::coin::transfer", "vector<", "", DefaultTransactionOptions())
		require.True(t, errors.Is(err, types.ErrInvalidTypeArgument))

		_, err = c.GenerateTransaction(ctx, acc, "0x1::coin::transfer", "", "300u8", DefaultTransactionOptions())
		require.True(t, errors.Is(err, types.ErrInvalidArgumentLiteral))

		require.Equal(t, before, node.requestCount())
	})

	t.Run("unknown sender", func(t *testing.T) {
		key, err := account.Generate(nil)
		require.NoError(t, err)

		_, err = c.GenerateTransaction(ctx, account.NewLocalAccount(key, 0),
			"0x1::coin::transfer", "", "", DefaultTransactionOptions())
		require.True(t, errors.Is(err, types.ErrAccountNotFound))
	})
}

func TestTransfer(t *testing.T) {
	node := newFakeNode()
	c := newTestClient(t, node)
	ctx := context.Background()
	acc := testAccount(t)
	node.locked(func() { node.sequences[acc.Address()] = 9 })

	pending, err := c.Transfer(ctx, acc, types.AddressOne, 1000, DefaultTransactionOptions())
	require.NoError(t, err)
	require.Equal(t, acceptedHash, pending.Hash)
	require.Equal(t, acc.Address(), pending.Sender)
	require.Equal(t, uint64(9), pending.SequenceNumber)

	var body []byte
	node.locked(func() {
		require.Len(t, node.submitted, 1)
		require.Equal(t, contentTypeSignedTxn, node.contentTypes[0])
		body = node.submitted[0]
	})

	require.Equal(t, acc.Address().String(), "0x"+hex.EncodeToString(body[:32]))
	require.Equal(t, "0900000000000000", hex.EncodeToString(body[32:40]))

	transfer, err := transferFunction(DefaultCoinType, types.AddressOne, 1000)
	require.NoError(t, err)
	require.Equal(t, "0x1::coin::transfer", transfer.String())
	require.Equal(t, "0x1::aptos_coin::AptosCoin", transfer.TypeArgs[0].String())
	require.Equal(t, "e803000000000000", hex.EncodeToString(transfer.Args[1]))
}

func TestSubmitRejected(t *testing.T) {
	node := newFakeNode()
	node.reject = true
	c := newTestClient(t, node)
	acc := testAccount(t)
	node.locked(func() { node.sequences[acc.Address()] = 0 })

	_, err := c.Transfer(context.Background(), acc, types.AddressOne, 1, DefaultTransactionOptions())
	require.True(t, errors.Is(err, types.ErrSubmissionRejected))

	var rejected *SubmissionRejectedError
	require.True(t, errors.As(err, &rejected))
	require.Equal(t, http.StatusBadRequest, rejected.Status)
	require.Equal(t, "vm_error", rejected.Code)
	require.Equal(t, uint64(3), rejected.VMErrorCode)
	require.Contains(t, rejected.Message, "SEQUENCE_NUMBER_TOO_OLD")

	node.locked(func() { require.Len(t, node.submitted, 1) })
}

func TestWaitForTransaction(t *testing.T) {
	ctx := context.Background()
	future := uint64(time.Now().Add(time.Minute).Unix())

	t.Run("committed after pending", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)
		node.setStatus("0x01", "pending")

		go func() {
			time.Sleep(30 * time.Millisecond)
			node.setStatus("0x01", "success")
		}()

		info, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x01", ExpirationTimestampSecs: future,
		})
		require.NoError(t, err)
		require.True(t, info.Success)
		require.Equal(t, uint64(42), info.Version)
		require.Equal(t, uint64(9), info.GasUsed)
	})

	t.Run("not found keeps polling", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)

		go func() {
			time.Sleep(30 * time.Millisecond)
			node.setStatus("0x02", "success")
		}()

		_, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x02", ExpirationTimestampSecs: future,
		})
		require.NoError(t, err)
	})

	t.Run("unavailable node keeps polling", func(t *testing.T) {
		node := newFakeNode()
		node.overloaded = 1
		node.status["0x07"] = "success"
		c := newTestClient(t, node)

		info, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x07", ExpirationTimestampSecs: future,
		})
		require.NoError(t, err)
		require.True(t, info.Success)
		require.Equal(t, 2, node.requestCount())
	})

	t.Run("bad request stops", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)
		node.setStatus("0x08", "invalid")

		_, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x08", ExpirationTimestampSecs: future,
		})
		var rerr *RequestError
		require.True(t, errors.As(err, &rerr))
		require.Equal(t, http.StatusBadRequest, rerr.Status)
		require.Equal(t, 1, node.requestCount())
	})

	t.Run("failed execution", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)
		node.setStatus("0x03", "failed")

		info, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x03", ExpirationTimestampSecs: future,
		})
		require.True(t, errors.Is(err, types.ErrTransactionFailed))
		require.Contains(t, err.Error(), "EINSUFFICIENT_BALANCE")
		require.False(t, info.Success)
	})

	t.Run("expired", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)
		node.setStatus("0x04", "pending")

		_, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x04", ExpirationTimestampSecs: uint64(time.Now().Unix()) - 1,
		})
		require.True(t, errors.Is(err, types.ErrTransactionExpired))
	})

	t.Run("ledger past expiration", func(t *testing.T) {
		node := newFakeNode()
		node.ledgerUsec = (future + 1) * 1000000
		c := newTestClient(t, node)

		_, err := c.WaitForTransaction(ctx, &PendingTransaction{
			Hash: "0x05", ExpirationTimestampSecs: future,
		})
		require.True(t, errors.Is(err, types.ErrTransactionExpired))
	})

	t.Run("cancelled", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)
		node.setStatus("0x06", "pending")

		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := c.WaitForTransaction(cctx, &PendingTransaction{
			Hash: "0x06", ExpirationTimestampSecs: future,
		})
		require.Error(t, err)
		require.False(t, errors.Is(err, types.ErrTransactionExpired))
	})
}

func TestView(t *testing.T) {
	node := newFakeNode()
	c := newTestClient(t, node)

	values, err := c.View(context.Background(), "0x1::coin::balance",
		"0x1::aptos_coin::AptosCoin", "@0x1, 5u8, 5u128")
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, `"100"`, string(values[0]))

	var request viewRequest
	node.locked(func() {
		require.Len(t, node.views, 1)
		request = node.views[0]
	})
	require.Equal(t, "0x1::coin::balance", request.Function)
	require.Equal(t, []string{"0x1::aptos_coin::AptosCoin"}, request.TypeArguments)
	require.Equal(t, []interface{}{
		types.AddressOne.String(), float64(5), "5",
	}, request.Arguments)

	_, err = c.View(context.Background(), "coin::balance", "", "")
	require.True(t, errors.Is(err, types.ErrMalformedFunctionID))
}

func TestFaucet(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		c, err := New(Config{NodeURL: "http://127.0.0.1:1"}, nil)
		require.NoError(t, err)

		err = c.CreateAccountByFaucet(context.Background(), types.AddressOne)
		require.True(t, errors.Is(err, types.ErrFaucetNotConfigured))
	})

	t.Run("fund", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)

		hashes, err := c.FundByFaucet(context.Background(), types.AddressOne, 500)
		require.NoError(t, err)
		require.Equal(t, []string{"0xfaucet"}, hashes)

		node.locked(func() {
			require.Len(t, node.mints, 1)
			require.Equal(t, types.AddressOne.String(), node.mints[0].Get("address"))
			require.Equal(t, "500", node.mints[0].Get("amount"))
		})
	})

	t.Run("create", func(t *testing.T) {
		node := newFakeNode()
		c := newTestClient(t, node)

		require.NoError(t, c.CreateAccountByFaucet(context.Background(), types.AddressOne))
		node.locked(func() { require.Equal(t, "0", node.mints[0].Get("amount")) })
	})
}

func TestRequestError(t *testing.T) {
	err := &RequestError{Method: "GET", Path: "/x", Status: 500, Message: "boom", Code: "internal"}
	require.Equal(t, "GET /x: status 500: boom (internal)", err.Error())
	require.Equal(t, "GET /x: status 404: no message",
		(&RequestError{Method: "GET", Path: "/x", Status: 404}).Error())
}
