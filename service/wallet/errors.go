package wallet

import "errors"

// Validation errors returned by Transfer and PlanTransfer before anything is
// built or sent. Callers match them with errors.Is.
var (
	ErrFromAddress          = errors.New("from address error")
	ErrToAddress            = errors.New("to address error")
	ErrAmount               = errors.New("amount error")
	ErrTokenAddressRequired = errors.New("tokenAddress required")
	ErrInvalidAddress       = errors.New("invalid address")
)

// Session errors.
var (
	ErrNotConnected = errors.New("wallet not connected")
	ErrNoSession    = errors.New("wallet extension not available")
	ErrNoSigner     = errors.New("session holds none of the required signer keys")
)

// IsValidationError reports whether err was caused by a malformed transfer request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrFromAddress) ||
		errors.Is(err, ErrToAddress) ||
		errors.Is(err, ErrAmount) ||
		errors.Is(err, ErrTokenAddressRequired) ||
		errors.Is(err, ErrInvalidAddress)
}
