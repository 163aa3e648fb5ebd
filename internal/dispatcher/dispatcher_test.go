package dispatcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navigraph/navdata-interface/internal/bus"
	"github.com/navigraph/navdata-interface/internal/task"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type echoFn struct{}

func (echoFn) Poll(ctx context.Context) (bool, any, error) {
	return true, map[string]string{"echo": "ok"}, nil
}

type pendingThenDoneFn struct {
	remaining int
}

func (f *pendingThenDoneFn) Poll(ctx context.Context) (bool, any, error) {
	if f.remaining > 0 {
		f.remaining--
		return false, nil, nil
	}
	return true, "finished", nil
}

func newTestDispatcher() (*Dispatcher, *bus.MemoryBus) {
	b := bus.NewMemoryBus()
	registry := task.Registry{
		"Echo": func(data json.RawMessage) (task.Function, error) {
			return echoFn{}, nil
		},
		"SlowEcho": func(data json.RawMessage) (task.Function, error) {
			return &pendingThenDoneFn{remaining: 2}, nil
		},
	}
	d := New(b, registry, discardLogger())
	d.PostInitialize()
	return d, b
}

func TestDispatcherEchoesTaskResult(t *testing.T) {
	d, b := newTestDispatcher()

	var results []task.FunctionResult
	b.Subscribe(bus.TopicFunctionResult, func(payload []byte) {
		var r task.FunctionResult
		require.NoError(t, json.Unmarshal(payload, &r))
		results = append(results, r)
	})

	b.Publish(bus.TopicCallFunction, []byte(`{"id":"1","function":"Echo","data":{}}`))
	d.PreDraw(context.Background(), time.Millisecond)

	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, "Success", results[0].Status)
}

func TestDispatcherPollsUntilTerminal(t *testing.T) {
	d, b := newTestDispatcher()

	var results []task.FunctionResult
	b.Subscribe(bus.TopicFunctionResult, func(payload []byte) {
		var r task.FunctionResult
		require.NoError(t, json.Unmarshal(payload, &r))
		results = append(results, r)
	})

	b.Publish(bus.TopicCallFunction, []byte(`{"id":"2","function":"SlowEcho","data":{}}`))

	d.PreDraw(context.Background(), time.Millisecond)
	assert.Empty(t, results, "task needs two more polls before it terminates")

	d.PreDraw(context.Background(), time.Millisecond)
	assert.Empty(t, results)

	d.PreDraw(context.Background(), time.Millisecond)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].ID)
}

func TestDispatcherUnknownFunctionReportsError(t *testing.T) {
	d, b := newTestDispatcher()

	var results []task.FunctionResult
	b.Subscribe(bus.TopicFunctionResult, func(payload []byte) {
		var r task.FunctionResult
		require.NoError(t, json.Unmarshal(payload, &r))
		results = append(results, r)
	})

	b.Publish(bus.TopicCallFunction, []byte(`{"id":"3","function":"DoesNotExist","data":{}}`))

	require.Len(t, results, 1)
	assert.Equal(t, "Error", results[0].Status)
}

func TestDispatcherMalformedPayloadWithIDReportsError(t *testing.T) {
	d, b := newTestDispatcher()

	var results []task.FunctionResult
	b.Subscribe(bus.TopicFunctionResult, func(payload []byte) {
		var r task.FunctionResult
		require.NoError(t, json.Unmarshal(payload, &r))
		results = append(results, r)
	})

	b.Publish(bus.TopicCallFunction, []byte(`{"id":"4","data":{}}`))

	require.Len(t, results, 1, "a parseable id must still get an error result for a missing \"function\" field")
	assert.Equal(t, "4", results[0].ID)
	assert.Equal(t, "Error", results[0].Status)
}

func TestDispatcherMalformedPayloadWithoutIDIsDropped(t *testing.T) {
	d, b := newTestDispatcher()

	var results []task.FunctionResult
	b.Subscribe(bus.TopicFunctionResult, func(payload []byte) {
		var r task.FunctionResult
		require.NoError(t, json.Unmarshal(payload, &r))
		results = append(results, r)
	})

	b.Publish(bus.TopicCallFunction, []byte(`not json at all`))

	assert.Empty(t, results, "no correlation id means there is nothing to report a result against")
}

func TestDispatcherEmitsHeartbeatOnFirstFrame(t *testing.T) {
	d, b := newTestDispatcher()

	var events []string
	b.Subscribe(bus.TopicEvent, func(payload []byte) {
		var e struct {
			Event string `json:"event"`
		}
		require.NoError(t, json.Unmarshal(payload, &e))
		events = append(events, e.Event)
	})

	d.PreDraw(context.Background(), time.Nanosecond)
	require.Contains(t, events, "Heartbeat", "first frame must emit a heartbeat regardless of delta time")
}

func TestDispatcherOnFrameHookRunsEveryFrame(t *testing.T) {
	d, _ := newTestDispatcher()

	calls := 0
	d.OnFrame(func(ctx context.Context) { calls++ })

	d.PreDraw(context.Background(), time.Millisecond)
	d.PreDraw(context.Background(), time.Millisecond)

	assert.Equal(t, 2, calls)
}
