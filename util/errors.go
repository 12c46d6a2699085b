package util

import "github.com/pkg/errors"

// ErrorKind buckets a failure for reporting policy. Security and output
// failures are treated as possible-attack signals by the caller.
type ErrorKind string

const (
	ErrorKindInput      ErrorKind = "input"
	ErrorKindSecurity   ErrorKind = "security"
	ErrorKindInvocation ErrorKind = "invocation"
	ErrorKindOutput     ErrorKind = "output"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

func NewSecurityError(message string) *Error {
	return &Error{Kind: ErrorKindSecurity, Message: "Security: " + message}
}

func NewInvocationError(message string) *Error {
	return &Error{Kind: ErrorKindInvocation, Message: message}
}

var (
	ErrURLEmpty          = &Error{Kind: ErrorKindInput, Message: "URL must be a non-empty string"}
	ErrURLTooLong        = &Error{Kind: ErrorKindInput, Message: "URL exceeds maximum length"}
	ErrURLInvalid        = &Error{Kind: ErrorKindInput, Message: "URL could not be parsed"}
	ErrURLScheme         = &Error{Kind: ErrorKindInput, Message: "only http and https URLs are allowed"}
	ErrURLHostname       = &Error{Kind: ErrorKindInput, Message: "URL hostname is invalid"}
	ErrURLUnsafe         = NewSecurityError("URL contains forbidden characters")
	ErrURLPrivateHost    = NewSecurityError("URL points to local/private network")
	ErrPathTraversal     = NewSecurityError("path contains traversal sequences")
	ErrPathUnsafe        = NewSecurityError("path contains forbidden characters")
	ErrFragmentEmpty     = &Error{Kind: ErrorKindInput, Message: "fragment has no usable path"}
	ErrProxyScheme       = &Error{Kind: ErrorKindInput, Message: "unsupported proxy scheme"}
	ErrOutputTooLarge    = &Error{Kind: ErrorKindOutput, Message: "Output too large - possible malicious response"}
	ErrOutputNotJSON     = &Error{Kind: ErrorKindOutput, Message: "Failed to parse yt-dlp output"}
	ErrExtractorNotFound = NewInvocationError("yt-dlp executable not found in PATH")
)

// KindOf reports the kind of the innermost typed error, or ErrorKindInput
// for anything else.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ErrorKindInput
}
