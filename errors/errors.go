// Package errors defines the typed failures surfaced by the NotchBar SDK.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies the category of an SDK error.
type Kind int

const (
	// KindUnknown indicates a host-reported failure with no structured reason.
	KindUnknown Kind = iota
	// KindHostNotInstalled indicates the installation probe failed before any
	// channel attempt.
	KindHostNotInstalled
	// KindIncompatibleVersion indicates the host version is below the caller's
	// stated minimum.
	KindIncompatibleVersion
	// KindNotAuthorized indicates presentation is blocked by authorization.
	KindNotAuthorized
	// KindInvalidDescriptor indicates a local validity check failed before any
	// transport.
	KindInvalidDescriptor
	// KindConnectionFailed indicates a channel operation errored.
	KindConnectionFailed
	// KindServiceUnavailable indicates the channel exists but the host interface
	// could not be obtained.
	KindServiceUnavailable
	// KindLimitExceeded indicates a host-reported capacity error.
	KindLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case KindHostNotInstalled:
		return "host_not_installed"
	case KindIncompatibleVersion:
		return "incompatible_version"
	case KindNotAuthorized:
		return "not_authorized"
	case KindInvalidDescriptor:
		return "invalid_descriptor"
	case KindConnectionFailed:
		return "connection_failed"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindLimitExceeded:
		return "limit_exceeded"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by every fallible SDK operation.
type Error struct {
	// Kind categorizes the failure.
	Kind Kind
	// Op is the operation that failed (e.g., "present_live_activity").
	Op string
	// Message is a human-readable description, host-supplied when available.
	Message string
	// Installed and Required carry both version strings for
	// KindIncompatibleVersion.
	Installed string
	Required  string
	// Limit carries the host-reported capacity for KindLimitExceeded.
	Limit int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindIncompatibleVersion:
		return fmt.Sprintf("%s [%s]: installed %q, required %q", e.Op, e.Kind, e.Installed, e.Required)
	case e.Kind == KindLimitExceeded:
		return fmt.Sprintf("%s [%s]: %s (limit %d)", e.Op, e.Kind, e.Message, e.Limit)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s [%s]: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HostNotInstalled reports that the host application could not be found.
func HostNotInstalled(op string) *Error {
	return &Error{Kind: KindHostNotInstalled, Op: op, Message: "host application is not installed"}
}

// IncompatibleVersion reports an installed host below the required version.
func IncompatibleVersion(op, installed, required string) *Error {
	return &Error{Kind: KindIncompatibleVersion, Op: op, Installed: installed, Required: required}
}

// NotAuthorized reports a blocked presentation.
func NotAuthorized(op string) *Error {
	return &Error{Kind: KindNotAuthorized, Op: op, Message: "application is not authorized to present content"}
}

// InvalidDescriptor reports a failed local validity check with its reason.
func InvalidDescriptor(op string, reason error) *Error {
	return &Error{Kind: KindInvalidDescriptor, Op: op, Message: "descriptor failed validation", Err: reason}
}

// ConnectionFailed wraps an underlying transport failure.
func ConnectionFailed(op string, err error) *Error {
	return &Error{Kind: KindConnectionFailed, Op: op, Message: "channel operation failed", Err: err}
}

// ServiceUnavailable reports a channel whose remote interface is unobtainable.
func ServiceUnavailable(op, message string) *Error {
	if message == "" {
		message = "host service is unavailable"
	}
	return &Error{Kind: KindServiceUnavailable, Op: op, Message: message}
}

// LimitExceeded reports a host capacity rejection.
func LimitExceeded(op, message string, limit int) *Error {
	if message == "" {
		message = "host entity limit exceeded"
	}
	return &Error{Kind: KindLimitExceeded, Op: op, Message: message, Limit: limit}
}

// Unknown reports an unstructured host failure.
func Unknown(op, message string) *Error {
	if message == "" {
		message = "operation failed"
	}
	return &Error{Kind: KindUnknown, Op: op, Message: message}
}

// KindOf extracts the Kind from err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotAuthorized reports whether err is an authorization failure.
func IsNotAuthorized(err error) bool {
	return KindOf(err) == KindNotAuthorized
}

// IsHostNotInstalled reports whether err is a missing-host failure.
func IsHostNotInstalled(err error) bool {
	return KindOf(err) == KindHostNotInstalled
}

// IsInvalidDescriptor reports whether err is a local validation failure.
func IsInvalidDescriptor(err error) bool {
	return KindOf(err) == KindInvalidDescriptor
}

// IsConnectionFailed reports whether err is a transport failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == KindConnectionFailed
}
