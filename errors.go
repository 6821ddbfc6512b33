package botdriver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// ErrDisposed is returned by every operation on a session that has been
// closed.
var ErrDisposed = errors.New("botdriver: session used after Close")

// Error strings defined by the W3C WebDriver specification, see
// https://www.w3.org/TR/webdriver/#handling-errors .
const (
	noSuchElement  = "no such element"
	staleReference = "stale element reference"
)

// Legacy JSON wire protocol status codes.
const (
	legacyNoSuchElement  = 7
	legacyStaleReference = 10
)

// IsNoSuchElement reports whether err means that no element matched a
// selector. Both W3C and legacy JSON wire protocol servers are recognised.
func IsNoSuchElement(err error) bool {
	return isErrorKind(err, noSuchElement, legacyNoSuchElement)
}

func isStaleElement(err error) bool {
	return isErrorKind(err, staleReference, legacyStaleReference)
}

func isErrorKind(err error, kind string, legacyCode int) bool {
	if err == nil {
		return false
	}
	var se *selenium.Error
	if errors.As(err, &se) {
		return se.Err == kind || se.LegacyCode == legacyCode
	}
	// Legacy servers are reported with the status text as the message prefix.
	for ; err != nil; err = errors.Unwrap(err) {
		if strings.HasPrefix(err.Error(), kind) {
			return true
		}
	}
	return false
}

// CookieError reports a cookie entry that lacks a required field or carries a
// field of the wrong type.
type CookieError struct {
	// Index is the position of the entry in the input.
	Index int
	// Field is the offending key.
	Field string
	// Reason describes what is wrong with the field.
	Reason string
}

func (e *CookieError) Error() string {
	return fmt.Sprintf("botdriver: cookie %d: field %q %s", e.Index, e.Field, e.Reason)
}
