package utils

import (
	"errors"
	"fmt"
)

// FailureKind classifies fetch-layer failures so the retry controller can
// apply one uniform policy across backends.
type FailureKind string

const (
	// KindTransient covers network blips and soft rate limiting; retryable
	// on the same backend with backoff.
	KindTransient FailureKind = "transient"
	// KindBlocked covers CAPTCHA/challenge pages and hard bot blocks; not
	// retryable on this backend.
	KindBlocked FailureKind = "blocked"
	// KindQuotaExceeded covers exhausted API credit/quota; not retryable on
	// this backend.
	KindQuotaExceeded FailureKind = "quota_exceeded"
	// KindAuth covers invalid or missing API credentials.
	KindAuth FailureKind = "auth"
	// KindFatal covers malformed queries; never retried.
	KindFatal FailureKind = "fatal"
)

// FetchError is the error type shared by all fetch backends.
type FetchError struct {
	Kind    FailureKind
	Backend string
	Detail  string
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	if e.Backend != "" {
		msg = e.Backend + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Error constructors, one per failure kind.

func NewTransientError(backend, detail string, err error) *FetchError {
	return &FetchError{Kind: KindTransient, Backend: backend, Detail: detail, Err: err}
}

func NewBlockedError(backend, detail string, err error) *FetchError {
	return &FetchError{Kind: KindBlocked, Backend: backend, Detail: detail, Err: err}
}

func NewQuotaExceededError(backend, detail string, err error) *FetchError {
	return &FetchError{Kind: KindQuotaExceeded, Backend: backend, Detail: detail, Err: err}
}

func NewAuthError(backend, detail string, err error) *FetchError {
	return &FetchError{Kind: KindAuth, Backend: backend, Detail: detail, Err: err}
}

func NewFatalError(backend, detail string, err error) *FetchError {
	return &FetchError{Kind: KindFatal, Backend: backend, Detail: detail, Err: err}
}

// FailureKindOf extracts the failure kind from an error chain. Unclassified
// errors are treated as transient so an unexpected failure never aborts a
// whole query on the first attempt.
func FailureKindOf(err error) FailureKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}

// IsRetryable reports whether the controller may retry the failed call on the
// same backend.
func IsRetryable(err error) bool {
	return FailureKindOf(err) == KindTransient
}

// IsBackendRefusal reports whether the failure rules out the current backend
// for the rest of the query (blocked, quota, auth).
func IsBackendRefusal(err error) bool {
	switch FailureKindOf(err) {
	case KindBlocked, KindQuotaExceeded, KindAuth:
		return true
	default:
		return false
	}
}

// ErrParseUnrecognized is returned by the parser when a payload cannot be
// recognized as the expected payload kind at all. Per-payload parse failures
// are counted and the run continues.
var ErrParseUnrecognized = errors.New("payload not recognized")
