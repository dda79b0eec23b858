package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced in structured errors. Clients can branch on these
// without parsing messages.
const (
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid    = "TOKEN_INVALID"
	TextCodeSessionNotFound = "SESSION_NOT_FOUND"
	TextCodeDuplicateEmail  = "DUPLICATE_EMAIL"
	TextCodeForbidden       = "FORBIDDEN"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound)

// ErrMismatchedHashAndPassword is returned for any credential mismatch.
// Missing user and wrong password collapse into this one error so the
// login path cannot be used to enumerate accounts.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenInvalid covers bad signatures, malformed structure, unexpected
// algorithms, and expiry. The cause is logged server side; callers get a
// single uniform error so token verification cannot act as an oracle.
var ErrTokenInvalid = errors.New("invalid or expired session token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when a request carries no token
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid)

// ErrDuplicateEmail is returned when registration hits an existing,
// case-insensitive email.
var ErrDuplicateEmail = errors.New("email address is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail)

// ErrForbidden is returned when an authenticated identity lacks the role
// a route requires. The message never names the missing role.
var ErrForbidden = errors.New("forbidden", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrNoEmptyString rejects empty plaintext passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput)

// ErrPasswordTooShort rejects generator lengths that cannot satisfy the
// four character class guarantee.
var ErrPasswordTooShort = errors.New("password length must be at least 4", errors.CategoryBadInput)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsConflictError reports whether err carries the conflict category.
func IsConflictError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryConflict
}
