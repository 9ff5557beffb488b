package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/bedrockmgr/bsmctl/internal/urls"
)

// Error types for manager API operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates an authentication failure (bad credentials, expired token)
	ErrTypeAuth
	// ErrTypeHTTP indicates an HTTP-level error (non-2xx status code)
	ErrTypeHTTP
	// ErrTypeParse indicates a parsing error (malformed JSON, invalid response)
	ErrTypeParse
	// ErrTypeValidation indicates a validation error (invalid request payload)
	ErrTypeValidation
	// ErrTypeNotFound indicates the named server does not exist on the manager
	ErrTypeNotFound
	// ErrTypeNotRunning indicates an operation that requires a running server
	ErrTypeNotRunning
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the manager refused the connection
	ErrTypeConnectionRefused
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeNotFound:
		return "Server Not Found"
	case ErrTypeNotRunning:
		return "Server Not Running"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents an error that occurred while talking to the manager
type APIError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is retryable
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error and returns a more specific error type
func ClassifyNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{
			Type:      ErrTypeTimeout,
			Message:   "Request timed out",
			Err:       err,
			Retryable: true,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &APIError{
				Type:      ErrTypeConnectionRefused,
				Message:   "Manager refused connection",
				Err:       err,
				Retryable: true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return ClassifyNetworkError(urlErr.Err)
	}

	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Err:       err,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *APIError {
	classified := ClassifyNetworkError(err)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *APIError {
	return &APIError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Retryable:  false,
	}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *APIError {
	retryable := statusCode >= 500 // Server errors are retryable
	return &APIError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *APIError {
	return &APIError{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
	}
}

// NewNotFoundError creates a server-not-found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
		Retryable:  false,
	}
}

// NewNotRunningError creates a server-not-running error
func NewNotRunningError(message string) *APIError {
	return &APIError{
		Type:      ErrTypeNotRunning,
		Message:   message,
		Retryable: false,
	}
}

// notRunningPhrases are manager error fragments that mean the target server
// process is down. The manager reports these as generic 500s or as
// status:error bodies, so they are matched by substring.
var notRunningPhrases = []string{
	"is not running",
	"screen session not found",
	"pipe does not exist",
	"server likely not running",
}

// IsNotRunningMessage reports whether a manager error message indicates the
// target server is not running.
func IsNotRunningMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range notRunningPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, etc.)
func IsNetworkError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeNetwork ||
			apiErr.Type == ErrTypeTimeout ||
			apiErr.Type == ErrTypeConnectionRefused
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeAuth
	}
	return false
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeHTTP
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeParse
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeValidation
	}
	return false
}

// IsNotFoundError checks if an error is a server-not-found error
func IsNotFoundError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeNotFound
	}
	return false
}

// IsNotRunningError checks if an error is a server-not-running error
func IsNotRunningError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrTypeNotRunning
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	apiErr, ok := err.(*APIError)
	if !ok {
		return err.Error()
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return "Manager not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Manager refused connection - is it running?"
	case ErrTypeAuth:
		return "Authentication failed - check credentials"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Manager error (HTTP %d)", apiErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse manager response"
	case ErrTypeNotFound:
		return "Server not found on manager"
	case ErrTypeNotRunning:
		return "Server is not running"
	case ErrTypeValidation:
		return apiErr.Message
	default:
		return apiErr.Message
	}
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	apiErr, ok := err.(*APIError)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch apiErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The manager did not respond in time.",
			"Troubleshooting:",
			"  • Check that the Bedrock Server Manager process is running",
			"  • Verify the host and port are correct",
			"  • Try increasing the timeout duration",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The manager refused the connection.",
			"Troubleshooting:",
			"  • Ensure the manager web server is started",
			"  • Verify the port number (default is 11325)",
			"  • Check firewall rules between this host and the manager",
			"  • Setup guide: " + urls.ManagerSetup,
		}, "\n")

	case ErrTypeAuth:
		return strings.Join([]string{
			"Authentication failed.",
			"Troubleshooting:",
			"  • Check the username and the password you entered",
			"  • The manager may have rotated its credentials",
			"  • See " + urls.Troubleshooting,
		}, "\n")

	case ErrTypeNotFound:
		return strings.Join([]string{
			"The named server does not exist on this manager.",
			"Troubleshooting:",
			"  • Run 'bsmctl servers' to list known servers",
			"  • The server may have been deleted or renamed",
		}, "\n")

	case ErrTypeNotRunning:
		return strings.Join([]string{
			"The operation requires the server to be running.",
			"Troubleshooting:",
			"  • Start the server first: 'bsmctl start <server>'",
			"  • Check the manager logs for crash loops",
		}, "\n")

	case ErrTypeHTTP:
		if apiErr.StatusCode >= 500 {
			return strings.Join([]string{
				fmt.Sprintf("The manager returned an error (HTTP %d).", apiErr.StatusCode),
				"Troubleshooting:",
				"  • Check the manager's own logs for the failure",
				"  • The manager may need a restart or an update",
			}, "\n")
		}
		return fmt.Sprintf("The manager returned HTTP error %d. Check the request parameters.", apiErr.StatusCode)

	case ErrTypeParse:
		return strings.Join([]string{
			"Failed to parse the manager's response.",
			"This may indicate a version mismatch between bsmctl and the manager.",
		}, "\n")

	case ErrTypeValidation:
		return "The request values are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}
