// Package engine implements the agent execution core: the tool contract, the
// per-run tool set, and the bounded multi-step streaming loop.
//
// This file contains the error taxonomy. Tool-level errors (bad input, failed
// execution, unknown tool) are always recovered locally and fed back to the
// model as data; only transport-level errors fail a run outright.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ToolInputError means the model supplied input failing schema validation.
// It is surfaced as a tool-result error and the loop continues.
type ToolInputError struct {
	ToolName string
	Issues   []string
}

func (e *ToolInputError) Error() string {
	return fmt.Sprintf("invalid input for tool %s: %s", e.ToolName, strings.Join(e.Issues, "; "))
}

// UnknownToolError means the model referenced a tool absent from the run's
// tool set. A record is synthesized and nothing is invoked.
type UnknownToolError struct {
	ToolName  string
	Available []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %s (available: %s)", e.ToolName, strings.Join(e.Available, ", "))
}

// FailureReason classifies a transport error.
type FailureReason string

const (
	ReasonRateLimit FailureReason = "rate_limit"
	ReasonAuth      FailureReason = "auth"
	ReasonNetwork   FailureReason = "network"
	ReasonTimeout   FailureReason = "timeout"
	ReasonServer    FailureReason = "server"
	ReasonBadInput  FailureReason = "bad_request"
	ReasonUnknown   FailureReason = "unknown"
)

// TransportError wraps a model-provider failure with a classified reason. The
// core never retries these; retry policy belongs to the caller.
type TransportError struct {
	Err    error
	Reason FailureReason
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %v", e.Reason, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassifyTransport wraps a provider error with a failure reason. Providers
// rarely expose typed errors, so classification falls back to message
// inspection, the same heuristics every SDK consumer ends up with.
func ClassifyTransport(err error) *TransportError {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	reason := ReasonUnknown
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded"):
		reason = ReasonTimeout
	case strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "quota"):
		reason = ReasonRateLimit
	case strings.Contains(msg, "401") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		reason = ReasonAuth
	case strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "504") ||
		strings.Contains(msg, "internal server error") ||
		strings.Contains(msg, "bad gateway") ||
		strings.Contains(msg, "service unavailable") ||
		strings.Contains(msg, "overloaded"):
		reason = ReasonServer
	case strings.Contains(msg, "400") ||
		strings.Contains(msg, "invalid request") ||
		strings.Contains(msg, "context length"):
		reason = ReasonBadInput
	case strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "eof") ||
		strings.Contains(msg, "network"):
		reason = ReasonNetwork
	}

	return &TransportError{Err: err, Reason: reason}
}
