// Package archive implements the batched zip-extraction state machine used
// by the download pipeline: clean the destination directory a few entries
// at a time, then extract a few zip entries at a time, so a large nav-data
// archive never blocks a single dispatcher frame.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kflate "github.com/klauspost/compress/flate"

	"github.com/navigraph/navdata-interface/internal/fsx"
)

func init() {
	// archive/zip's built-in deflate implementation is noticeably slower
	// than klauspost/compress's; registering it as the decompressor for
	// method 8 (deflate) keeps the stdlib zip.Reader's entry-parsing and
	// enclosed-name safety checks while using the faster inflater for the
	// actual byte copy, which matters once the archive has tens of
	// thousands of entries.
	zip.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return kflate.NewReader(r)
	})
}

// Status is the outcome of one Advance call.
type Status int

const (
	// StatusMoreFilesToDelete means the destination directory still has
	// entries to remove; call Advance again.
	StatusMoreFilesToDelete Status = iota
	// StatusMoreFilesToUnzip means the destination is clean and more zip
	// entries remain; call Advance again.
	StatusMoreFilesToUnzip
	// StatusFinished means every entry has been extracted.
	StatusFinished
)

// ExtractState holds an open archive and its extraction progress. It is not
// safe for concurrent use; it is meant to be advanced once per dispatcher
// frame from a single goroutine.
type ExtractState struct {
	archive *zip.Reader

	destPath string

	currentIndex int
	fileCount    int
	deleted      int
	cleaned      bool
}

// NewExtractState opens data as a zip archive and prepares to extract it
// into destPath, which is cleaned (recursively emptied) before any entry is
// written.
func NewExtractState(data []byte, destPath string) (*ExtractState, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}
	return &ExtractState{
		archive:   reader,
		destPath:  destPath,
		fileCount: len(reader.File),
	}, nil
}

// FileCount is the total number of entries in the archive.
func (s *ExtractState) FileCount() int { return s.fileCount }

// CurrentIndex is the index of the next entry Advance will extract.
func (s *ExtractState) CurrentIndex() int { return s.currentIndex }

// Deleted grows by the batch size on every cleanup pass that leaves the
// destination non-empty, so it approximates the entries cleared so far
// rather than counting them exactly.
func (s *ExtractState) Deleted() int { return s.deleted }

// Advance processes up to batchSize units of work: either destination-clean
// entries or zip entries, never both in the same call.
func (s *ExtractState) Advance(batchSize int) (Status, error) {
	if !s.cleaned {
		if err := fsx.DeleteBatch(s.destPath, batchSize); err != nil {
			return StatusMoreFilesToDelete, fmt.Errorf("clean destination: %w", err)
		}
		if !fsx.Exists(s.destPath) {
			if err := os.MkdirAll(s.destPath, 0o755); err != nil {
				return StatusMoreFilesToDelete, fmt.Errorf("recreate destination: %w", err)
			}
			s.cleaned = true
			return StatusMoreFilesToUnzip, nil
		}
		s.deleted += batchSize
		return StatusMoreFilesToDelete, nil
	}

	for i := 0; i < batchSize; i++ {
		if s.currentIndex >= s.fileCount {
			return StatusFinished, nil
		}

		file := s.archive.File[s.currentIndex]
		if err := s.extractOne(file); err != nil {
			return StatusMoreFilesToUnzip, err
		}
		s.currentIndex++
	}
	return StatusMoreFilesToUnzip, nil
}

func (s *ExtractState) extractOne(file *zip.File) error {
	name := enclosedName(file.Name)
	if name == "" {
		return fmt.Errorf("entry %q escapes destination directory", file.Name)
	}
	outPath := filepath.Join(s.destPath, name)

	// MSFS's filesystem layer reliably crashes when asked to extract a
	// path containing more than one ".", so these entries are skipped
	// rather than written.
	if strings.Count(outPath, ".") > 1 {
		return nil
	}

	if strings.HasSuffix(file.Name, "/") {
		return os.MkdirAll(outPath, 0o755)
	}

	if parent := filepath.Dir(outPath); !fsx.Exists(parent) {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", parent, err)
		}
	}

	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer reader.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create file %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("copy entry %s: %w", file.Name, err)
	}
	return nil
}

// enclosedName rejects any entry name that would escape destPath once
// joined (absolute paths, ".." components), mirroring zip.File's own
// enclosed-name check but surfaced here so callers get a typed error
// instead of a silently-skipped entry.
func enclosedName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.Contains(name, "../") || strings.HasPrefix(name, "/") || strings.Contains(name, ":") {
		return ""
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return ""
	}
	return clean
}
