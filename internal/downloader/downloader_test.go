package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navigraph/navdata-interface/internal/httpc"
)

type fakeClient struct {
	body       []byte
	statusCode int
	err        error
}

func (f fakeClient) Get(ctx context.Context, url string) (*httpc.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	code := f.statusCode
	if code == 0 {
		code = 200
	}
	return &httpc.Response{StatusCode: code, Body: f.body}, nil
}

func (f fakeClient) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*httpc.Response, error) {
	return f.Get(ctx, url)
}

func buildZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("a.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func drainTask(t *testing.T, task *downloadTask) (any, error) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		ok, result, err := task.Poll(context.Background())
		if ok {
			return result, err
		}
	}
	t.Fatal("download task did not finish")
	return nil, nil
}

func TestDownloadSucceedsAndExtracts(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "active")
	lock := filepath.Join(dir, ".lock")

	d := New(fakeClient{body: buildZip(t)}, dest, lock, nil)
	d.SetIntegrityCheckEnabled(false) // test archive is too small for reliable magic-byte sniffing

	task := d.NewDownloadTask("https://example.com/navdata.zip")
	_, err := drainTask(t, task)
	require.NoError(t, err)
	assert.Equal(t, StatusDownloaded, d.Status())
}

func TestSecondDownloadWhileActiveIsBusy(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "active")
	lock := filepath.Join(dir, ".lock")

	d := New(fakeClient{body: buildZip(t)}, dest, lock, nil)

	first := d.NewDownloadTask("https://example.com/navdata.zip")
	ok, _, err := first.Poll(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "first poll only claims the slot, fetch is async")

	second := d.NewDownloadTask("https://example.com/navdata.zip")
	ok, _, err = second.Poll(context.Background())
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestAcknowledgeAllowsNextDownload(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "active")
	lock := filepath.Join(dir, ".lock")

	d := New(fakeClient{body: buildZip(t)}, dest, lock, nil)
	d.SetIntegrityCheckEnabled(false)

	task := d.NewDownloadTask("https://example.com/navdata.zip")
	_, err := drainTask(t, task)
	require.NoError(t, err)

	d.Acknowledge()
	assert.Equal(t, StatusNoDownload, d.Status())

	task2 := d.NewDownloadTask("https://example.com/navdata.zip")
	_, err = drainTask(t, task2)
	require.NoError(t, err)
}

func TestSetDownloadOptionsRejectsNonPositive(t *testing.T) {
	d := New(fakeClient{}, t.TempDir(), filepath.Join(t.TempDir(), ".lock"), nil)
	require.Error(t, d.SetDownloadOptions(0))
}
