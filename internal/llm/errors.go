package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Failure kinds reported by FailureKind.
const (
	FailureRateLimit   = "rate_limit"
	FailureUnavailable = "unavailable"
	FailureInvalid     = "invalid_response"
	FailureTruncated   = "truncated"
)

// ErrRateLimit means the provider answered 429. RetryAfter is zero when
// the provider gave no hint.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return withProvider(e.Provider, fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err))
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the reply could not be read as questions or
// concepts: not JSON, or JSON that fails the request schema. Content holds
// the raw reply for the event log.
type ErrInvalidResponse struct {
	Provider string
	Schema   string
	Content  json.RawMessage
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	msg := fmt.Sprintf("invalid response: %v", e.Err)
	if e.Schema != "" {
		msg = fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
	}
	return withProvider(e.Provider, msg)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers network failures, 5xx answers and
// anything else the provider SDK reports that is not a rate limit.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return withProvider(e.Provider, fmt.Sprintf("unavailable: %v", e.Err))
	}
	return withProvider(e.Provider, "unavailable")
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the question set was cut off at MaxTokens,
// so the JSON is incomplete.
type ErrMaxTokensExceeded struct {
	Provider string
	Content  json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return withProvider(e.Provider, "response truncated at max tokens")
}

func withProvider(name, msg string) string {
	if name == "" {
		return "LLM " + msg
	}
	return name + ": " + msg
}

// ProviderOf returns the provider named by the first typed LLM error in
// err's chain, or "" when there is none.
func ProviderOf(err error) string {
	var (
		rl  *ErrRateLimit
		inv *ErrInvalidResponse
		un  *ErrProviderUnavailable
		mt  *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &rl):
		return rl.Provider
	case errors.As(err, &inv):
		return inv.Provider
	case errors.As(err, &un):
		return un.Provider
	case errors.As(err, &mt):
		return mt.Provider
	}
	return ""
}

// FailureKind classifies err as one of the Failure constants, or "" when
// it is not an LLM error.
func FailureKind(err error) string {
	var (
		rl  *ErrRateLimit
		inv *ErrInvalidResponse
		un  *ErrProviderUnavailable
		mt  *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &rl):
		return FailureRateLimit
	case errors.As(err, &inv):
		return FailureInvalid
	case errors.As(err, &mt):
		return FailureTruncated
	case errors.As(err, &un):
		return FailureUnavailable
	}
	return ""
}

// tagProvider fills in the provider name on a typed LLM error that was
// raised without one.
func tagProvider(name string, err error) error {
	var (
		rl  *ErrRateLimit
		inv *ErrInvalidResponse
		un  *ErrProviderUnavailable
		mt  *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &rl):
		if rl.Provider == "" {
			rl.Provider = name
		}
	case errors.As(err, &inv):
		if inv.Provider == "" {
			inv.Provider = name
		}
	case errors.As(err, &un):
		if un.Provider == "" {
			un.Provider = name
		}
	case errors.As(err, &mt):
		if mt.Provider == "" {
			mt.Provider = name
		}
	}
	return err
}
