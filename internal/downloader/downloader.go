// Package downloader implements the download/extract pipeline: a single
// GET of a zip archive followed by a batched clean-then-extract state
// machine that advances a few units of work per dispatcher frame. Only one
// download may be active at a time; a second request while one is running
// is rejected as Busy rather than silently ignored.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/flock"
	"golang.org/x/time/rate"

	"github.com/h2non/filetype"

	"github.com/navigraph/navdata-interface/internal/archive"
	"github.com/navigraph/navdata-interface/internal/httpc"
)

// Status mirrors the lifecycle of a single download: NoDownload is the
// resting state, Downloading covers the network fetch, CleaningDestination
// and Extracting are the two phases of the batched archive pipeline,
// Downloaded is the terminal success state awaiting acknowledgement, and
// Failed holds the last error until acknowledged away.
type Status int

const (
	StatusNoDownload Status = iota
	StatusDownloading
	StatusCleaningDestination
	StatusExtracting
	StatusDownloaded
	StatusFailed
)

// ErrBusy is returned when a download is requested while one is already
// in flight.
var ErrBusy = errors.New("a download is already in progress")

// Progress is the data accompanying a DownloadProgress event.
type Progress struct {
	Phase        string `json:"phase"`
	Deleted      *int   `json:"deleted,omitempty"`
	TotalToUnzip *int   `json:"total_to_unzip,omitempty"`
	Unzipped     *int   `json:"unzipped,omitempty"`
}

const (
	phaseDownloading = "Downloading"
	phaseCleaning    = "Cleaning"
	phaseExtracting  = "Extracting"
)

// Downloader owns the current download's state and the working-directory
// advisory lock, which another Downloader on the same lock file (in this
// process or another) cannot take while this one holds it. The OS releases
// the lock when the holding process exits.
type Downloader struct {
	mu sync.Mutex

	http       httpc.Client
	fileLock   *flock.Flock
	limiter    *rate.Limiter
	destPath   string
	batchSize  int
	status     Status
	lastErr    error
	onProgress func(Progress)
	checkMagic bool
}

// New constructs a Downloader. destPath is the directory extracted archive
// contents are written into; lockPath is the advisory lock file guarding
// working-directory exclusivity (e.g. "/work/.nav-download.lock").
func New(client httpc.Client, destPath, lockPath string, onProgress func(Progress)) *Downloader {
	return &Downloader{
		http:       client,
		fileLock:   flock.New(lockPath),
		limiter:    rate.NewLimiter(rate.Limit(60), 1),
		destPath:   destPath,
		batchSize:  10,
		onProgress: onProgress,
		checkMagic: true,
	}
}

// Status returns the downloader's current state.
func (d *Downloader) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// LastError returns the error that moved the downloader to Failed, if any.
func (d *Downloader) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// SetDownloadOptions updates the batch size used by future extraction
// passes. Synchronous; takes effect starting with the next Advance call.
func (d *Downloader) SetDownloadOptions(batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", batchSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batchSize = batchSize
	return nil
}

// SetIntegrityCheckEnabled toggles the magic-byte validation step performed
// on a freshly downloaded body before it is treated as a zip archive.
func (d *Downloader) SetIntegrityCheckEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checkMagic = enabled
}

// Acknowledge resets the downloader back to NoDownload, clearing the last
// error and releasing the working-directory lock if it is still held. A
// new download is accepted from Downloaded or Failed without it; only the
// three in-progress statuses report Busy.
func (d *Downloader) Acknowledge() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = StatusNoDownload
	d.lastErr = nil
	if d.fileLock.Locked() {
		_ = d.fileLock.Unlock()
	}
}

// DestinationPath is the directory the archive is extracted into.
func (d *Downloader) DestinationPath() string {
	return d.destPath
}

// ReportActivationFailure moves the downloader to Failed after extraction
// already reported StatusDownloaded. It exists for a collaborator (the
// host wiring) that performs a post-extraction step — reopening the
// database and writing its cycle sidecar — outside this package: that
// step can still fail, and per the state machine a failure there must
// land the downloader in Failed just as a failure during extraction
// itself would, rather than leaving it stuck reporting Downloaded.
func (d *Downloader) ReportActivationFailure(err error) {
	d.fail(err)
}

func (d *Downloader) getBatchSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.batchSize
}

func (d *Downloader) integrityCheckEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkMagic
}

// tryStart claims the downloader for a new download, taking the advisory
// file lock so another Downloader on the same lock file, in this process
// or another, observes Busy instead of extracting concurrently.
func (d *Downloader) tryStart() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status == StatusDownloading || d.status == StatusCleaningDestination || d.status == StatusExtracting {
		return ErrBusy
	}

	locked, err := d.fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire working directory lock: %w", err)
	}
	if !locked {
		return ErrBusy
	}

	d.status = StatusDownloading
	d.lastErr = nil
	d.emitProgress(phaseDownloading, nil, nil, nil)
	return nil
}

func (d *Downloader) setStatus(s Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Downloader) fail(err error) {
	d.mu.Lock()
	d.status = StatusFailed
	d.lastErr = err
	if d.fileLock.Locked() {
		_ = d.fileLock.Unlock()
	}
	d.mu.Unlock()
}

func (d *Downloader) emitProgress(phase string, deleted, totalToUnzip, unzipped *int) {
	if d.onProgress == nil {
		return
	}
	d.onProgress(Progress{Phase: phase, Deleted: deleted, TotalToUnzip: totalToUnzip, Unzipped: unzipped})
}

// NewDownloadTask builds the task.Function for a DownloadNavigationData
// call. It is constructed fresh per call; Poll enforces the Busy rule on
// its first invocation so two back-to-back calls reliably produce one
// Success and one Busy error.
func (d *Downloader) NewDownloadTask(url string) *downloadTask {
	return &downloadTask{d: d, url: url}
}

type downloadTask struct {
	d   *Downloader
	url string

	started   bool
	fetchOnce sync.Once
	fetchCh   chan fetchResult

	extractState *archive.ExtractState
}

type fetchResult struct {
	body []byte
	err  error
}

func (t *downloadTask) Poll(ctx context.Context) (bool, any, error) {
	if !t.started {
		if err := t.d.tryStart(); err != nil {
			return true, nil, err
		}
		t.started = true
	}

	if t.extractState == nil {
		select {
		case res := <-t.awaitFetch(ctx):
			if res.err != nil {
				t.d.fail(res.err)
				return true, nil, res.err
			}
			if t.d.integrityCheckEnabled() && !filetype.IsArchive(res.body) {
				err := fmt.Errorf("downloaded body is not a recognized archive")
				t.d.fail(err)
				return true, nil, err
			}
			state, err := archive.NewExtractState(res.body, t.d.destPath)
			if err != nil {
				t.d.fail(err)
				return true, nil, err
			}
			t.extractState = state
			t.d.setStatus(StatusCleaningDestination)
			return false, nil, nil
		default:
			return false, nil, nil
		}
	}

	if err := t.d.limiter.Wait(ctx); err != nil {
		t.d.fail(err)
		return true, nil, err
	}

	status, err := t.extractState.Advance(t.d.getBatchSize())
	if err != nil {
		t.d.fail(err)
		return true, nil, err
	}

	switch status {
	case archive.StatusMoreFilesToDelete:
		t.d.setStatus(StatusCleaningDestination)
		deleted := t.extractState.Deleted()
		t.d.emitProgress(phaseCleaning, &deleted, nil, nil)
		return false, nil, nil
	case archive.StatusMoreFilesToUnzip:
		t.d.setStatus(StatusExtracting)
		total := t.extractState.FileCount()
		unzipped := t.extractState.CurrentIndex()
		t.d.emitProgress(phaseExtracting, nil, &total, &unzipped)
		return false, nil, nil
	default: // archive.StatusFinished
		t.d.setStatus(StatusDownloaded)
		return true, nil, nil
	}
}

func (t *downloadTask) awaitFetch(ctx context.Context) chan fetchResult {
	t.fetchOnce.Do(func() {
		t.fetchCh = make(chan fetchResult, 1)
		go func() {
			resp, err := t.d.http.Get(ctx, t.url)
			if err != nil {
				t.fetchCh <- fetchResult{err: fmt.Errorf("download navigation data: %w", err)}
				return
			}
			if resp.StatusCode != 200 {
				t.fetchCh <- fetchResult{err: fmt.Errorf("download navigation data: unexpected status %d", resp.StatusCode)}
				return
			}
			t.fetchCh <- fetchResult{body: resp.Body}
		}()
	})
	return t.fetchCh
}
