// Package errors provides structured error handling for nodeguard.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, lock, probe)
//   - 3XX: Network errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
//   - 6XX: Bootstrap check errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
	// CategoryBootstrap indicates failed startup resource checks.
	CategoryBootstrap Category = "BOOTSTRAP"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound     = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid      = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission   = "ERR_103_CONFIG_PERMISSION"
	ErrCodeCheckConfigInvalid = "ERR_104_CHECK_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeNodeLocked     = "ERR_203_NODE_LOCKED"
	ErrCodePIDFile        = "ERR_204_PID_FILE"

	// Network errors (300-399)
	ErrCodeBindFailed     = "ERR_301_BIND_FAILED"
	ErrCodePublishAddress = "ERR_302_PUBLISH_ADDRESS"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidSize  = "ERR_402_INVALID_SIZE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"

	// Bootstrap errors (600-699)
	ErrCodeBootstrapFailed = "ERR_601_BOOTSTRAP_CHECKS_FAILED"
	ErrCodeCheckViolation  = "ERR_602_CHECK_VIOLATION"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	case '6':
		return CategoryBootstrap
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeBootstrapFailed, ErrCodeCheckConfigInvalid, ErrCodeNodeLocked:
		return SeverityFatal
	case ErrCodeCheckViolation:
		return SeverityWarning
	}
	return SeverityError
}
