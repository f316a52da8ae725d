package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"libra-txs/blockchains/types"

	"github.com/pkg/errors"
)

const (
	contentTypeJSON      = "application/json"
	contentTypeSignedTxn = "application/x.aptos.signed_transaction+bcs"

	headerLedgerTimestamp = "X-Aptos-Ledger-TimestampUsec"

	// Upper bound of a response body read in memory.
	maxResponseSize = 8 << 20
)

type errorBody struct {
	Message     string `json:"message"`
	ErrorCode   string `json:"error_code"`
	VMErrorCode uint64 `json:"vm_error_code"`
}

// jsonUint64 decodes the 64 bits integers of the node, which are sent as
// decimal strings but as plain numbers by some endpoints.
type jsonUint64 uint64

func (v *jsonUint64) UnmarshalJSON(data []byte) error {
	var text string
	var parsed uint64
	var err error

	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		err = json.Unmarshal(data, &text)
		if err != nil {
			return err
		}
	} else {
		text = string(data)
	}

	parsed, err = strconv.ParseUint(text, 10, 64)
	if err != nil {
		return errors.Errorf("invalid unsigned integer %s", string(data))
	}

	*v = jsonUint64(parsed)

	return nil
}

// get sends a GET request to the node and decodes the JSON response in
// `out`. The response headers are returned even when the status is not a
// success.
func (c *Client) get(ctx context.Context, path string, out interface{}) (http.Header, error) {
	return c.request(ctx, http.MethodGet, c.nodeURL+path, "", nil, out)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte, out interface{}) (http.Header, error) {
	return c.request(ctx, http.MethodPost, c.nodeURL+path, contentType, body, out)
}

func (c *Client) request(ctx context.Context, method, target, contentType string, body []byte, out interface{}) (http.Header, error) {
	var req *http.Request
	var resp *http.Response
	var reader io.Reader
	var data []byte
	var decoded errorBody
	var err error

	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err = http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, target)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.config.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Tracef("%s %s", method, target)

	resp, err = c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, errors.Wrapf(types.ErrNetwork, "%s %s: %v", method,
			target, err)
	}

	defer resp.Body.Close()

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.Header, errors.Wrapf(types.ErrNetwork,
			"%s %s: read response: %v", method, target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if json.Unmarshal(data, &decoded) != nil {
			decoded.Message = string(bytes.TrimSpace(data))
		}

		return resp.Header, &RequestError{
			Method:      method,
			Path:        target,
			Status:      resp.StatusCode,
			Message:     decoded.Message,
			Code:        decoded.ErrorCode,
			VMErrorCode: decoded.VMErrorCode,
		}
	}

	if out == nil {
		return resp.Header, nil
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return resp.Header, errors.Wrapf(err, "%s %s: decode response",
			method, target)
	}

	return resp.Header, nil
}

// isNotFound reports whether `err` is a 404 response of the node.
func isNotFound(err error) bool {
	var rerr *RequestError

	return errors.As(err, &rerr) && rerr.Status == http.StatusNotFound
}

// isUnavailable reports whether `err` is a reply of an overloaded or
// failing node, worth asking again.
func isUnavailable(err error) bool {
	var rerr *RequestError

	return errors.As(err, &rerr) &&
		(rerr.Status >= http.StatusInternalServerError || rerr.Status == http.StatusTooManyRequests)
}

// ledgerTimestampSecs returns the ledger time the node reported in
// `header`, if any.
func ledgerTimestampSecs(header http.Header) (uint64, bool) {
	var usec uint64
	var err error

	if header == nil {
		return 0, false
	}

	usec, err = strconv.ParseUint(header.Get(headerLedgerTimestamp), 10, 64)
	if err != nil {
		return 0, false
	}

	return usec / 1000000, true
}
