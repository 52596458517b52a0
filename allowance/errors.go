package allowance

import "errors"

var (
	// Grant errors
	ErrInvalidRecoveryRate = errors.New("allowance: recovery rate exceeds max amount")

	// Consumption errors
	ErrInsufficientAllowance = errors.New("allowance: insufficient allowance")
)
