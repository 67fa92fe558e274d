package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every error the Client can surface.
type Kind int

const (
	// KindInvalidRequest means the request could not be built (bad URL or
	// configuration).
	KindInvalidRequest Kind = iota
	// KindUnauthorized means no usable credentials exist or refresh
	// retries were exhausted.
	KindUnauthorized
	// KindForbidden maps HTTP 403.
	KindForbidden
	// KindNotFound maps HTTP 404.
	KindNotFound
	// KindRateLimited maps HTTP 429.
	KindRateLimited
	// KindServer is a structured domain error from the response envelope.
	KindServer
	// KindHTTP is any other uncategorized HTTP status.
	KindHTTP
	// KindDecode means the transport succeeded but a 2xx payload did not
	// match the expected shape.
	KindDecode
	// KindNetwork is a transport-level failure: timeout, no connectivity,
	// DNS, cancellation.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server_error"
	case KindHTTP:
		return "http_error"
	case KindDecode:
		return "decode_error"
	case KindNetwork:
		return "network_error"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by the Client. Message and Code carry
// server-provided detail for logs; they are never shown to users directly.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, when one was received
	Code    string // server error code from the envelope, when present
	Message string
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == k
}

// Tailored display messages for well-known server error codes.
var serverCodeMessages = map[string]string{
	"invalid_credentials": "The email or password you entered is incorrect.",
	"token_expired":       "Your session has expired. Please sign in again.",
	"account_disabled":    "This account has been disabled. Contact support for help.",
	"listing_not_found":   "That listing is no longer available.",
}

const (
	genericMessage = "Something went wrong. Please try again."
	// Server messages longer than this are assumed to be technical detail
	// rather than copy written for end users.
	maxDisplayMessageLen = 140
)

// UserMessage maps an error to a short, non-technical display string. Raw
// server detail passes through only when it looks like copy meant for
// humans.
func UserMessage(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return genericMessage
	}
	switch apiErr.Kind {
	case KindInvalidRequest:
		return genericMessage
	case KindUnauthorized:
		return "Please sign in to continue."
	case KindForbidden:
		return "You don't have permission to do that."
	case KindNotFound:
		return "We couldn't find what you were looking for."
	case KindRateLimited:
		return "You're doing that a little too fast. Please wait a moment and try again."
	case KindNetwork:
		return "Unable to reach the server. Check your connection and try again."
	case KindServer:
		if msg, ok := serverCodeMessages[apiErr.Code]; ok {
			return msg
		}
		if displayable(apiErr.Message) {
			return apiErr.Message
		}
		return genericMessage
	default:
		return genericMessage
	}
}

// displayable decides whether a server-provided message is safe to show:
// short, single-line, and free of obvious technical markers.
func displayable(msg string) bool {
	if msg == "" || len(msg) > maxDisplayMessageLen {
		return false
	}
	if strings.ContainsAny(msg, "\n\r<>{}") {
		return false
	}
	lower := strings.ToLower(msg)
	for _, marker := range []string{"exception", "stack trace", "traceback", "sql", "fatal error"} {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}
