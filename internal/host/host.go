package host

import (
	"context"
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/navigraph/navdata-interface/internal/dispatcher"
	"github.com/navigraph/navdata-interface/internal/logger"
)

// WailsBus backs bus.HostBus with a live Wails runtime context, mirroring
// the teacher's App binding its engine straight to runtime.EventsOn /
// runtime.EventsEmit. It is a no-op Subscribe/Publish until SetContext
// supplies a context, matching the logger's BusHandler.SetBus pattern for
// "nothing before startup".
type WailsBus struct {
	ctx context.Context
}

// SetContext attaches the live Wails context captured in App.startup.
func (b *WailsBus) SetContext(ctx context.Context) { b.ctx = ctx }

func (b *WailsBus) Subscribe(topic string, fn func(payload []byte)) {
	if b.ctx == nil {
		return
	}
	runtime.EventsOn(b.ctx, topic, func(optionalData ...interface{}) {
		if len(optionalData) == 0 {
			fn(nil)
			return
		}
		if raw, ok := optionalData[0].([]byte); ok {
			fn(raw)
			return
		}
		if s, ok := optionalData[0].(string); ok {
			fn([]byte(s))
		}
	})
}

func (b *WailsBus) Publish(topic string, payload []byte) {
	if b.ctx == nil {
		return
	}
	runtime.EventsEmit(b.ctx, topic, string(payload))
}

func (b *WailsBus) UnsubscribeAll() {
	if b.ctx != nil {
		runtime.EventsOffAll(b.ctx)
	}
}

// App is the Wails-bound application struct, playing the same role as the
// teacher's App: it owns the context Wails hands over at startup, hides the
// window instead of closing it, and exposes a tray-driven Quit/Show pair.
type App struct {
	ctx        context.Context
	log        *slog.Logger
	busHandler *logger.BusHandler
	bus        *WailsBus
	dispatcher *dispatcher.Dispatcher
	isQuitting bool
}

// NewApp wires a WailsBus-backed App around an already-constructed
// dispatcher (itself already wired to the same bus). busHandler is the
// logger's bus-forwarding handler; it only starts forwarding once
// startup attaches the live context.
func NewApp(log *slog.Logger, busHandler *logger.BusHandler, b *WailsBus, d *dispatcher.Dispatcher) *App {
	return &App{log: log, busHandler: busHandler, bus: b, dispatcher: d}
}

// Startup is bound as Wails' OnStartup hook.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.bus.SetContext(ctx)
	a.busHandler.SetBus(a.bus)
	a.dispatcher.PostInitialize()
	a.log.Info("navdata interface started")
}

// BeforeClose is bound as Wails' OnBeforeClose hook: hide instead of quit,
// unless QuitApp already flagged a real shutdown.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	if a.isQuitting {
		a.dispatcher.PreKill()
		return false
	}
	a.log.Info("window close requested, hiding to tray")
	runtime.WindowHide(ctx)
	return true
}

// QuitApp is called from the tray menu to actually exit.
func (a *App) QuitApp() {
	a.isQuitting = true
	runtime.Quit(a.ctx)
}

// ShowApp restores the window from the tray.
func (a *App) ShowApp() {
	runtime.WindowShow(a.ctx)
	runtime.WindowSetAlwaysOnTop(a.ctx, true)
	runtime.WindowSetAlwaysOnTop(a.ctx, false)
}
