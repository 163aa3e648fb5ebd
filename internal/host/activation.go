package host

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/navigraph/navdata-interface/internal/cycle"
	"github.com/navigraph/navdata-interface/internal/downloader"
	"github.com/navigraph/navdata-interface/internal/query"
	"github.com/navigraph/navdata-interface/internal/task"
)

// databaseFileName is the on-disk name of the navigation database inside
// the downloader's destination directory (SPEC_FULL §6 filesystem layout).
const databaseFileName = "ng_navigation_data_db.s3db"

// downloadActivation wraps the downloader's own task.Function and performs
// the "atomic activation" step (§4.2) once extraction finishes: close the
// stale connection, open the freshly extracted file, and persist the cycle
// sidecar read back out of its own header. A failure here still reports
// Failed to the caller and, per the state machine's "a failure transitions
// from any phase to Failed" rule, flips the downloader itself back from
// Downloaded to Failed — the inner task already moved it to Downloaded
// before activate runs, so this package has to report the failure back
// explicitly rather than relying on the inner task's own Poll return.
type downloadActivation struct {
	inner     task.Function
	dl        *downloader.Downloader
	engine    *query.Engine
	activeDir string
}

func (a *downloadActivation) Poll(ctx context.Context) (bool, any, error) {
	ok, result, err := a.inner.Poll(ctx)
	if !ok || err != nil {
		return ok, result, err
	}
	if err := a.activate(ctx); err != nil {
		wrapped := fmt.Errorf("activate downloaded database: %w", err)
		a.dl.ReportActivationFailure(wrapped)
		return true, nil, wrapped
	}
	return true, result, nil
}

func (a *downloadActivation) activate(ctx context.Context) error {
	if err := a.engine.DisableCycle(); err != nil {
		return err
	}

	dbPath := filepath.Join(a.activeDir, databaseFileName)
	if err := a.engine.EnableCycle(dbPath); err != nil {
		return err
	}

	info, err := a.engine.GetDatabaseInfo(ctx)
	if err != nil {
		return err
	}

	format := "DFDv1"
	if a.engine.Version() == query.SchemaV2 {
		format = "DFDv2"
	}

	desc := cycle.Descriptor{
		Format:         format,
		Revision:       info.AiracCycle,
		Cycle:          info.AiracCycle,
		ValidityPeriod: info.EffectiveFrom + "/" + info.EffectiveTo,
	}
	return cycle.Save(filepath.Join(a.activeDir, "ng_cycle.json"), desc)
}
