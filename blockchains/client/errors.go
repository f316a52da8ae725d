package client

import (
	"fmt"

	"libra-txs/blockchains/types"
)

// RequestError is a response of the node with a non success status.
type RequestError struct {
	Method      string // HTTP method of the request
	Path        string // Path relative to the node API root
	Status      int    // HTTP status of the response
	Message     string // Message of the error body
	Code        string // Error code of the error body
	VMErrorCode uint64 // Move VM status when the error comes from execution
}

func (e *RequestError) Error() string {
	var msg string = e.Message

	if msg == "" {
		msg = "no message"
	}

	if e.Code == "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path,
			e.Status, msg)
	}

	return fmt.Sprintf("%s %s: status %d: %s (%s)", e.Method, e.Path,
		e.Status, msg, e.Code)
}

// SubmissionRejectedError is the node refusing a signed transaction, most
// often because of its sequence number, gas parameters or signature.
type SubmissionRejectedError struct {
	Status      int
	Code        string
	Message     string
	VMErrorCode uint64
}

func newSubmissionRejectedError(err *RequestError) *SubmissionRejectedError {
	return &SubmissionRejectedError{
		Status:      err.Status,
		Code:        err.Code,
		Message:     err.Message,
		VMErrorCode: err.VMErrorCode,
	}
}

func (e *SubmissionRejectedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: status %d: %s", types.ErrSubmissionRejected,
			e.Status, e.Message)
	}

	return fmt.Sprintf("%s: status %d: %s (%s)", types.ErrSubmissionRejected,
		e.Status, e.Message, e.Code)
}

func (e *SubmissionRejectedError) Unwrap() error {
	return types.ErrSubmissionRejected
}
