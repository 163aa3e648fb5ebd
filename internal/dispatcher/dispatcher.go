// Package dispatcher implements the cooperative, single-threaded frame
// loop: it receives call-function messages off the host bus, queues one
// task per call, polls every in-flight task exactly once per frame, and
// publishes a terminal result the moment a task finishes. It also emits a
// heartbeat event on a fixed interval so a host-side watchdog can tell the
// interface is alive.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/navigraph/navdata-interface/internal/bus"
	"github.com/navigraph/navdata-interface/internal/task"
)

const heartbeatInterval = 5 * time.Second

const (
	eventHeartbeat       = "Heartbeat"
	eventDownloadProgress = "DownloadProgress"
)

// OnUpdate is called once per frame after the queue has been drained, for
// collaborators that need their own per-frame tick independent of whether
// any task currently targets them.
type OnUpdate func(ctx context.Context)

// Dispatcher owns the task queue and the bus subscription that feeds it.
type Dispatcher struct {
	bus      bus.HostBus
	registry task.Registry
	log      *slog.Logger

	queue []*task.Task

	// accumulated holds time since the last heartbeat. It starts at a
	// value far beyond heartbeatInterval so the very first frame emits
	// one immediately, mirroring the delta_time::MAX seed in the
	// original dispatcher.
	accumulated time.Duration

	onUpdate []OnUpdate
}

// New constructs a Dispatcher bound to bus, dispatching incoming calls
// against registry. log receives structured diagnostics; pass slog.Default()
// if the caller doesn't have its own.
func New(b bus.HostBus, registry task.Registry, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		bus:         b,
		registry:    registry,
		log:         log,
		accumulated: time.Duration(1<<63 - 1),
	}
}

// OnFrame registers a collaborator to be ticked once per PreDraw, after the
// queue pass. The downloader does not use it: its extraction advances
// inside its DownloadNavigationData task's Poll, and that task stays queued
// until it reports a terminal outcome.
func (d *Dispatcher) OnFrame(fn OnUpdate) {
	d.onUpdate = append(d.onUpdate, fn)
}

// PostInitialize subscribes to the incoming call-function topic. Call once
// at startup.
func (d *Dispatcher) PostInitialize() {
	d.bus.Subscribe(bus.TopicCallFunction, d.handleIncoming)
}

// PreKill unsubscribes everything. Call once at shutdown.
func (d *Dispatcher) PreKill() {
	d.bus.UnsubscribeAll()
}

// PreDraw advances the heartbeat accumulator, polls every queued task
// exactly once, publishes terminal results, and ticks per-frame
// collaborators. deltaTime is the elapsed time since the previous PreDraw.
func (d *Dispatcher) PreDraw(ctx context.Context, deltaTime time.Duration) {
	// Only accumulate below the interval: adding to the MaxInt64 seed
	// would wrap negative and skip the first-frame heartbeat.
	if d.accumulated < heartbeatInterval {
		d.accumulated += deltaTime
	}
	if d.accumulated >= heartbeatInterval {
		d.sendEvent(eventHeartbeat, nil)
		d.accumulated = 0
	}

	d.processQueue(ctx)

	for _, fn := range d.onUpdate {
		fn(ctx)
	}
}

// EmitDownloadProgress publishes a DownloadProgress event. Exported so a
// caller outside this package (such as the downloader's progress callback)
// can report phase transitions through the same event channel as the
// heartbeat.
func (d *Dispatcher) EmitDownloadProgress(data any) {
	d.sendEvent(eventDownloadProgress, data)
}

func (d *Dispatcher) sendEvent(event string, data any) {
	payload, err := marshalEvent(event, data)
	if err != nil {
		d.log.Error("failed to serialize event", "event", event, "error", err)
		return
	}
	d.bus.Publish(bus.TopicEvent, payload)
}

func (d *Dispatcher) handleIncoming(payload []byte) {
	call, err := task.ParseCallFunction(payload)
	if err != nil {
		d.log.Warn("failed to parse call-function payload", "error", err)
		if call.ID != "" {
			d.publishResult(&task.Task{ID: call.ID, Status: task.StatusFailure, Err: err})
		}
		return
	}

	fn, err := d.registry.Build(call.Function, call.Data)
	if err != nil {
		d.log.Warn("failed to build function", "function", call.Function, "error", err)
		if call.ID != "" {
			d.publishResult(&task.Task{ID: call.ID, Status: task.StatusFailure, Err: err})
		}
		return
	}

	d.queue = append(d.queue, &task.Task{
		ID:     call.ID,
		Kind:   call.Function,
		Fn:     fn,
		Status: task.StatusNotStarted,
	})
}

// processQueue polls every not-yet-terminal task exactly once, then removes
// and publishes results for anything that reached a terminal state this
// pass — the same two-phase shape ("advance everything, then reap") the
// original dispatcher uses so a task's own Poll never races against its
// removal from the queue.
func (d *Dispatcher) processQueue(ctx context.Context) {
	for _, t := range d.queue {
		if t.Status.Terminal() {
			continue
		}
		t.Status = task.StatusInProgress

		// A panicking Poll fails only its own task.
		ok, result, err := func() (ok bool, result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					ok, result, err = true, nil, fmt.Errorf("task panicked: %v", r)
				}
			}()
			return t.Fn.Poll(ctx)
		}()
		if !ok {
			continue
		}
		if err != nil {
			t.Status = task.StatusFailure
			t.Err = err
		} else {
			t.Status = task.StatusSuccess
			t.Result = result
		}
	}

	remaining := d.queue[:0]
	for _, t := range d.queue {
		if !t.Status.Terminal() {
			remaining = append(remaining, t)
			continue
		}
		d.publishResult(t)
	}
	d.queue = remaining
}

func (d *Dispatcher) publishResult(t *task.Task) {
	result := t.TerminalResult()
	payload, err := marshalResult(result)
	if err != nil {
		d.log.Error("failed to serialize function result", "id", t.ID, "error", err)
		return
	}
	d.bus.Publish(bus.TopicFunctionResult, payload)
}
