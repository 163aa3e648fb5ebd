package query

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navigraph/navdata-interface/internal/cycle"
	"github.com/navigraph/navdata-interface/internal/httpc"
)

type fakeVendorClient struct {
	body []byte
}

func (f fakeVendorClient) Get(ctx context.Context, url string) (*httpc.Response, error) {
	return &httpc.Response{StatusCode: 200, Body: f.body}, nil
}

func (f fakeVendorClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpc.Response, error) {
	return f.Get(ctx, url)
}

func TestGetNavigationDataInstallStatusNone(t *testing.T) {
	bundled := t.TempDir()
	work := t.TempDir()

	status, err := GetNavigationDataInstallStatus(context.Background(), bundled, work, fakeVendorClient{body: []byte(`{"cycle":"2501"}`)}, "https://vendor.example/info")
	require.NoError(t, err)
	assert.Equal(t, string(InstallNone), status.Status)
	assert.Equal(t, "", status.InstalledPath)
	require.NotNil(t, status.LatestCycle)
	assert.Equal(t, "2501", *status.LatestCycle)
}

func TestGetNavigationDataInstallStatusBundled(t *testing.T) {
	bundled := t.TempDir()
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bundled, "a.db"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "a.db"), []byte("x"), 0o644))

	activeDir := filepath.Join(work, "active")
	require.NoError(t, os.MkdirAll(activeDir, 0o755))
	// Mirror the active directory in the bundled one so the work directory
	// is no larger than the bundled directory.
	require.NoError(t, os.MkdirAll(filepath.Join(bundled, "active"), 0o755))
	require.NoError(t, cycle.Save(filepath.Join(activeDir, "ng_cycle.json"), cycle.Descriptor{
		Format: "DFDv2", Revision: "1", Cycle: "2412", ValidityPeriod: "28-11-2024 to 25-12-2024",
	}))

	status, err := GetNavigationDataInstallStatus(context.Background(), bundled, work, fakeVendorClient{body: []byte(`{"cycle":"2501"}`)}, "https://vendor.example/info")
	require.NoError(t, err)
	assert.Equal(t, string(InstallBundled), status.Status)
	assert.Equal(t, "2412", status.InstalledCycle)
	assert.Equal(t, activeDir, status.InstalledPath)
}

func TestGetNavigationDataInstallStatusManual(t *testing.T) {
	bundled := t.TempDir()
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "a.db"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(work, "b.db"), []byte("x"), 0o644))

	status, err := GetNavigationDataInstallStatus(context.Background(), bundled, work, fakeVendorClient{body: []byte(`{"cycle":"2501"}`)}, "https://vendor.example/info")
	require.NoError(t, err)
	assert.Equal(t, string(InstallManual), status.Status)
}
