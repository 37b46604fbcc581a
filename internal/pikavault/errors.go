package pikavault

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// The client distinguishes four failure classes. Validation errors never
// reach the network. Precondition errors are the program's declared codes
// and must never be retried without a state re-fetch. Transport errors may
// be retried after re-checking chain state. Decode errors are fatal.

// ValidationError reports malformed input caught before submission.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProgramError is one of the program's declared error conditions. The entity
// named by the code was not in the state the operation requires.
type ProgramError struct {
	Code    uint32
	Name    string
	Message string
}

func (e ProgramError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

// TransportError wraps a network failure where the submission outcome is
// known to have not happened, or cannot be known. Callers re-check chain
// state before any retry because the original submission may have landed.
type TransportError struct {
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("transport: %s", e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ErrUnknownOutcome means a submitted transaction was not confirmed within
// the bounded wait. It is neither success nor failure; check again.
var ErrUnknownOutcome = errors.New("transaction outcome unknown, re-check state")

// Declared program errors, codes 6000-6007.
var (
	ErrListingNotActive     = ProgramError{6000, "listingNotActive", "The listing is not active."}
	ErrInsufficientFunds    = ProgramError{6001, "insufficientFunds", "Insufficient funds to complete the purchase."}
	ErrEscrowCreationFailed = ProgramError{6002, "escrowCreationFailed", "Escrow creation failed."}
	ErrListingNotSold       = ProgramError{6003, "listingNotSold", "listing is not currently marked as sold"}
	ErrUnauthorizedRefund   = ProgramError{6004, "unauthorizedRefund", "you are not authorized to request a refund for this purchase"}
	ErrEscrowAlreadyReleased = ProgramError{6005, "escrowAlreadyReleased", "escrow funds have already been released"}
	ErrCannotBuyOwnListing  = ProgramError{6006, "cannotBuyOwnListing", "Cannot buy your own listing"}
	ErrInvalidPrice         = ProgramError{6007, "invalidPrice", "Invalid price"}
)

var programErrors = map[uint32]ProgramError{
	6000: ErrListingNotActive,
	6001: ErrInsufficientFunds,
	6002: ErrEscrowCreationFailed,
	6003: ErrListingNotSold,
	6004: ErrUnauthorizedRefund,
	6005: ErrEscrowAlreadyReleased,
	6006: ErrCannotBuyOwnListing,
	6007: ErrInvalidPrice,
}

// ProgramErrorByCode looks up a declared program error.
func ProgramErrorByCode(code uint32) (ProgramError, bool) {
	pe, ok := programErrors[code]
	return pe, ok
}

var customErrorRe = regexp.MustCompile(`custom program error: (0x[0-9a-fA-F]+|\d+)`)

// ParseSubmitError maps a submission failure onto the taxonomy. Preflight
// simulation surfaces program rejections inside the RPC error message as
// "custom program error: 0x1770"; anything else is transport.
func ParseSubmitError(err error) error {
	if err == nil {
		return nil
	}

	if parts := customErrorRe.FindStringSubmatch(err.Error()); len(parts) == 2 {
		var code uint64
		var parseErr error
		if len(parts[1]) > 2 && parts[1][:2] == "0x" {
			code, parseErr = strconv.ParseUint(parts[1][2:], 16, 32)
		} else {
			code, parseErr = strconv.ParseUint(parts[1], 10, 32)
		}

		if parseErr == nil {
			if pe, ok := programErrors[uint32(code)]; ok {
				return pe
			}
			return ProgramError{Code: uint32(code), Name: "unknown", Message: err.Error()}
		}
	}

	return TransportError{Err: err}
}

// ParseTransactionErr maps the Err field of a confirmed transaction status
// onto the taxonomy. Confirmed failures arrive as
// {"InstructionError": [index, {"Custom": code}]}.
func ParseTransactionErr(txErr interface{}) error {
	if txErr == nil {
		return nil
	}

	if m, ok := txErr.(map[string]interface{}); ok {
		if ie, ok := m["InstructionError"].([]interface{}); ok && len(ie) == 2 {
			if custom, ok := ie[1].(map[string]interface{}); ok {
				if code, ok := custom["Custom"].(float64); ok {
					if pe, ok := programErrors[uint32(code)]; ok {
						return pe
					}
					return ProgramError{Code: uint32(code), Name: "unknown", Message: fmt.Sprintf("custom error %d", uint32(code))}
				}
			}
		}
	}

	return TransportError{Err: fmt.Errorf("transaction failed: %v", txErr)}
}
