package main

import (
	"context"
	"embed"
	"os"
	"path/filepath"
	"time"

	"github.com/getlantern/systray"
	"github.com/getsentry/sentry-go"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/navigraph/navdata-interface/internal/config"
	"github.com/navigraph/navdata-interface/internal/diagnostics"
	"github.com/navigraph/navdata-interface/internal/dispatcher"
	"github.com/navigraph/navdata-interface/internal/downloader"
	"github.com/navigraph/navdata-interface/internal/host"
	"github.com/navigraph/navdata-interface/internal/httpc"
	"github.com/navigraph/navdata-interface/internal/logger"
	"github.com/navigraph/navdata-interface/internal/query"
)

//go:embed all:frontend/dist
var assets embed.FS

//go:embed build/appicon.png
var appIcon []byte

// frameTick stands in for the host simulator's PreDraw callback: nothing in
// this harness is a real flight-sim frame, so a fixed-rate ticker drives the
// dispatcher instead.
const frameTick = 33 * time.Millisecond

const vendorInfoEndpoint = "https://navdata.navigraph.com/info"

const databaseFileName = "ng_navigation_data_db.s3db"

func main() {
	workDir := envOr("NAVDATA_WORK_DIR", "/work")
	bundledDir := envOr("NAVDATA_BUNDLED_DIR", filepath.Join(workDir, "bundled"))
	activeDir := filepath.Join(workDir, "active")
	_ = os.MkdirAll(activeDir, 0o755)
	_ = os.MkdirAll(bundledDir, 0o755)

	log, busHandler := logger.New(os.Stdout)

	httpClient := httpc.NewHTTPClient(60 * time.Second)

	identity := config.LoadAddonIdentity(filepath.Join(".", "Navigraph", "config.json"))

	diagSink, err := diagnostics.Load(filepath.Join(workDir, "ng_sentry.json"), httpClient)
	if err != nil {
		log.Error("failed to load diagnostic sink", "error", err)
	} else {
		_ = sentry.Init(sentry.ClientOptions{Transport: diagSink})
		sentry.ConfigureScope(func(scope *sentry.Scope) {
			diagSink.ConfigureScope(scope, identity.Developer, identity.Product)
		})
		if err := diagSink.Drain(context.Background()); err != nil {
			log.Warn("failed to drain pending diagnostic reports", "error", err)
		}
	}

	cfg, err := config.NewConfigManager(filepath.Join(workDir, "ng_settings.json"))
	if err != nil {
		log.Error("failed to load settings", "error", err)
		return
	}

	engine := query.New(func(w query.Warning) {
		log.Warn("row diagnostic", "table", w.Table, "detail", w.Detail)
	})
	if _, err := os.Stat(filepath.Join(activeDir, databaseFileName)); err == nil {
		if err := engine.EnableCycle(filepath.Join(activeDir, databaseFileName)); err != nil {
			log.Error("failed to open existing database", "error", err)
		}
	}

	// d is assigned below, after the registry (which needs dl) and the
	// downloader (which needs to report progress back through d) are both
	// built; the progress callback closes over the pointer rather than a
	// value so it can be wired before the dispatcher itself exists.
	var d *dispatcher.Dispatcher

	dl := downloader.New(httpClient, activeDir, filepath.Join(workDir, ".nav-download.lock"), func(p downloader.Progress) {
		if d != nil {
			d.EmitDownloadProgress(p)
		}
	})
	dl.SetDownloadOptions(cfg.GetBatchSize())
	dl.SetIntegrityCheckEnabled(cfg.GetEnableIntegrityCheck())

	registry := host.BuildRegistry(engine, dl, cfg, bundledDir, workDir, httpClient, vendorInfoEndpoint)

	b := &host.WailsBus{}
	d = dispatcher.New(b, registry, log)

	go func() {
		ticker := time.NewTicker(frameTick)
		defer ticker.Stop()
		last := time.Now()
		for now := range ticker.C {
			delta := now.Sub(last)
			last = now
			d.PreDraw(context.Background(), delta)
		}
	}()

	app := host.NewApp(log, busHandler, b, d)

	startHidden := false
	for _, arg := range os.Args {
		if arg == "--minimized" {
			startHidden = true
		}
	}

	go func() {
		systray.Run(func() {
			systray.SetIcon(appIcon)
			systray.SetTitle("Navigraph")
			systray.SetTooltip("Navigraph navigation data interface")

			mOpen := systray.AddMenuItem("Open", "Restore the window")
			systray.AddSeparator()
			mQuit := systray.AddMenuItem("Quit", "Quit the application")

			go func() {
				for {
					select {
					case <-mOpen.ClickedCh:
						app.ShowApp()
					case <-mQuit.ClickedCh:
						app.QuitApp()
					}
				}
			}()
		}, func() {})
	}()

	appMenu := menu.NewMenu()
	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Open", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) { app.ShowApp() })
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) { app.QuitApp() })

	err = wails.Run(&options.App{
		Title:  "navdata-interface",
		Width:  480,
		Height: 360,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 15, G: 20, B: 30, A: 1},
		OnStartup:        app.Startup,
		OnBeforeClose:    app.BeforeClose,
		StartHidden:      startHidden,
		Menu:             appMenu,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Error("wails run failed", "error", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
