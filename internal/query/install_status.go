package query

import (
	"context"
	"os"
	"path/filepath"

	"github.com/navigraph/navdata-interface/internal/cycle"
	"github.com/navigraph/navdata-interface/internal/httpc"
	"github.com/navigraph/navdata-interface/internal/query/mapper"
	"github.com/navigraph/navdata-interface/internal/updater"
)

// InstallStatus classifies where the active database cycle came from.
type InstallStatus string

const (
	InstallNone    InstallStatus = "None"
	InstallBundled InstallStatus = "Bundled"
	InstallManual  InstallStatus = "Manual"
)

// GetNavigationDataInstallStatus reports what cycle is active and whether a
// newer one is available. bundledDir is the addon's prepackaged database
// directory; workDir is the writable directory the downloader extracts
// into. Status is derived by comparing entry counts: an empty work
// directory means nothing is installed, a work directory no larger than
// the bundled one means the bundled cycle is still active, anything larger
// means a manual download replaced it.
func GetNavigationDataInstallStatus(ctx context.Context, bundledDir, workDir string, client httpc.Client, vendorEndpoint string) (*mapper.DatabaseStatus, error) {
	bundledCount, err := countEntries(bundledDir)
	if err != nil {
		return nil, err
	}
	workCount, err := countEntries(workDir)
	if err != nil {
		return nil, err
	}

	status := InstallNone
	switch {
	case workCount == 0:
		status = InstallNone
	case bundledCount >= workCount:
		status = InstallBundled
	default:
		status = InstallManual
	}

	result := &mapper.DatabaseStatus{Status: string(status)}

	if status != InstallNone {
		activePath := filepath.Join(workDir, "active")
		result.InstalledPath = activePath

		desc, err := cycle.Load(filepath.Join(activePath, "ng_cycle.json"))
		if err != nil {
			return nil, err
		}
		if desc != nil {
			result.InstalledFormat = desc.Format
			result.InstalledRevision = desc.Revision
			result.InstalledCycle = desc.Cycle
			result.ValidityPeriod = desc.ValidityPeriod
		}
	}

	if latest, err := updater.LatestCycle(ctx, client, vendorEndpoint); err == nil {
		result.LatestCycle = &latest
	}

	return result, nil
}

func countEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return len(entries), nil
}
