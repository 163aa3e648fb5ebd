package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type immediateFn struct {
	result any
	err    error
}

func (f immediateFn) Poll(ctx context.Context) (bool, any, error) {
	return true, f.result, f.err
}

type twoPollFn struct {
	polled bool
}

func (f *twoPollFn) Poll(ctx context.Context) (bool, any, error) {
	if !f.polled {
		f.polled = true
		return false, nil, nil
	}
	return true, "done", nil
}

func TestRegistryBuildUnknownFunction(t *testing.T) {
	r := Registry{}
	_, err := r.Build("NoSuchFunction", json.RawMessage(`{}`))
	require.Error(t, err)
}

func TestRegistryBuildRemapsNullToEmptyObject(t *testing.T) {
	var seen json.RawMessage
	r := Registry{
		"Echo": func(data json.RawMessage) (Function, error) {
			seen = data
			return immediateFn{}, nil
		},
	}
	_, err := r.Build("Echo", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(seen))
}

func TestParseCallFunctionRejectsMissingFunction(t *testing.T) {
	_, err := ParseCallFunction([]byte(`{"id":"1","data":{}}`))
	require.Error(t, err)
}

func TestParseCallFunctionOK(t *testing.T) {
	call, err := ParseCallFunction([]byte(`{"id":"1","function":"GetAirport","data":{"ident":"KJFK"}}`))
	require.NoError(t, err)
	assert.Equal(t, "1", call.ID)
	assert.Equal(t, "GetAirport", call.Function)
}

func TestTaskTerminalResultSuccess(t *testing.T) {
	task := &Task{ID: "abc", Status: StatusSuccess, Result: map[string]string{"ok": "yes"}}
	result := task.TerminalResult()
	assert.Equal(t, "abc", result.ID)
	assert.Equal(t, "Success", result.Status)
}

func TestTaskTerminalResultFailure(t *testing.T) {
	task := &Task{ID: "abc", Status: StatusFailure, Err: errors.New("boom")}
	result := task.TerminalResult()
	assert.Equal(t, "Error", result.Status)
	assert.Equal(t, "boom", result.Data)
}

func TestMultiPollFunctionReachesTerminal(t *testing.T) {
	fn := &twoPollFn{}
	ok, _, err := fn.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, result, err := fn.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "done", result)
}
