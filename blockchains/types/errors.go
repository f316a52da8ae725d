package types

import (
	"github.com/pkg/errors"
)

// Errors reported by the transaction client. Callers match them with
// errors.Is; the wrapping layers add the operation and the address or
// function involved.
var (
	ErrInvalidKeyEncoding     = errors.New("invalid key encoding")
	ErrInvalidMnemonic        = errors.New("invalid mnemonic")
	ErrInvalidPath            = errors.New("invalid derivation path")
	ErrMalformedFunctionID    = errors.New("malformed function id")
	ErrInvalidTypeArgument    = errors.New("invalid type argument")
	ErrInvalidArgumentLiteral = errors.New("invalid argument literal")
	ErrIncompleteTransaction  = errors.New("incomplete transaction")
	ErrInvalidGasParameters   = errors.New("invalid gas parameters")
	ErrAccountNotFound        = errors.New("account not found")
	ErrNetwork                = errors.New("network error")
	ErrSubmissionRejected     = errors.New("submission rejected")
	ErrTransactionExpired     = errors.New("transaction expired")
	ErrTransactionFailed      = errors.New("transaction failed")
	ErrFaucetNotConfigured    = errors.New("faucet not configured")
)
