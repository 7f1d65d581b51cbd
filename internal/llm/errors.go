package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFatalAPI marks API errors that no amount of retrying will fix:
// exhausted credit, broken billing, bad or unauthorized credentials.
// Callers check with errors.Is and abort instead of burning retry budget.
var ErrFatalAPI = errors.New("fatal API error")

// fatalPatterns are lowercase substrings of provider error messages that
// indicate a non-retryable condition.
var fatalPatterns = []string{
	"credit balance",
	"quota exceeded",
	"billing",
	"invalid api key",
	"authentication",
	"unauthorized",
	"401",
	"403",
}

// isFatalAPIError reports whether err describes a non-retryable API failure.
// Rate limits and timeouts are transient and therefore not fatal.
func isFatalAPIError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// wrapFatalError wraps err with ErrFatalAPI when it is fatal, and returns it
// unchanged otherwise.
func wrapFatalError(err error) error {
	if isFatalAPIError(err) {
		return fmt.Errorf("%w: %v", ErrFatalAPI, err)
	}
	return err
}
