// Package task defines the tagged-union of callable operations the
// dispatcher queues and polls, and the wire shapes used to move them over
// the host bus.
package task

import (
	"context"
	"encoding/json"
	"fmt"
)

// Status is the lifecycle of a queued task. Every task starts NotStarted,
// moves to InProgress the first time the dispatcher polls it, and ends in
// exactly one of Success or Failure.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusSuccess
	StatusFailure
)

func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Function is the tagged-union member implemented by every callable
// operation (DownloadNavigationData, GetAirport, ExecuteSQLQuery, ...).
// Poll is called at most once per dispatcher frame; an operation that does
// not finish synchronously (the download) returns ok=false on every call
// until it has a terminal outcome.
type Function interface {
	// Poll advances the operation by one step and reports whether it has
	// reached a terminal outcome. When ok is true, result holds the
	// JSON-serialisable payload on success (nil is valid), and err holds
	// the failure reason, mutually exclusive with a non-nil result.
	Poll(ctx context.Context) (ok bool, result any, err error)
}

// Factory builds the Function tagged by kind from its raw JSON payload.
// Registered once per supported function name in internal/host.
type Factory func(data json.RawMessage) (Function, error)

// Registry maps wire function names to their Factory.
type Registry map[string]Factory

// Build looks up kind and constructs its Function from data, remapping a
// JSON null payload to an empty object first so factories never have to
// special-case "no arguments".
func (r Registry) Build(kind string, data json.RawMessage) (Function, error) {
	factory, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", kind)
	}
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	return factory(data)
}

// Task is one queued invocation: the function tag, the caller's
// correlation id, the constructed Function, and its current status.
type Task struct {
	ID       string
	Kind     string
	Fn       Function
	Status   Status
	Result   any
	Err      error
}

// CallFunction is the inbound wire shape published on bus.TopicCallFunction.
type CallFunction struct {
	ID       string          `json:"id"`
	Function string          `json:"function"`
	Data     json.RawMessage `json:"data"`
}

// FunctionResult is the outbound wire shape published on
// bus.TopicFunctionResult once a task reaches a terminal status.
type FunctionResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

const (
	resultStatusSuccess = "Success"
	resultStatusError   = "Error"
)

// ParseCallFunction decodes an inbound call-function payload. On error it
// still returns whatever of call was successfully populated (in particular
// ID, which survives even a missing-"function" payload) so the caller can
// still publish an error result back to a parseable correlation id instead
// of silently dropping the call.
func ParseCallFunction(payload []byte) (CallFunction, error) {
	var call CallFunction
	if err := json.Unmarshal(payload, &call); err != nil {
		return call, fmt.Errorf("parse call-function payload: %w", err)
	}
	if call.Function == "" {
		return call, fmt.Errorf("call-function payload missing \"function\"")
	}
	return call, nil
}

// TerminalResult converts a finished Task into its outbound FunctionResult.
func (t *Task) TerminalResult() FunctionResult {
	if t.Status == StatusSuccess {
		return FunctionResult{ID: t.ID, Status: resultStatusSuccess, Data: t.Result}
	}
	msg := "task failed"
	if t.Err != nil {
		msg = t.Err.Error()
	}
	return FunctionResult{ID: t.ID, Status: resultStatusError, Data: msg}
}
