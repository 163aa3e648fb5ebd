// Package fsx is the filesystem façade used by the download/extract
// pipeline: path-type probing and a batch-bounded recursive delete, so the
// destination directory can be wiped across many dispatcher frames instead
// of blocking one frame on a potentially huge tree.
package fsx

import (
	"os"
	"path/filepath"
)

// PathType classifies a filesystem path the same three ways the original
// source's get_path_type does, plus Unknown for a path that exists but is
// neither a regular file nor a directory (a socket or named pipe, say).
// Any directory, empty or not, is Directory.
type PathType int

const (
	DoesNotExist PathType = iota
	File
	Directory
	Unknown
)

// GetPathType stats path and classifies it. Any Stat error other than
// "not exist" is folded into DoesNotExist, matching the conservative
// original behavior of treating an inaccessible path as absent.
func GetPathType(path string) PathType {
	info, err := os.Stat(path)
	if err != nil {
		return DoesNotExist
	}
	if info.IsDir() {
		return Directory
	}
	if info.Mode().IsRegular() {
		return File
	}
	return Unknown
}

// Exists reports whether path resolves to anything at all.
func Exists(path string) bool {
	return GetPathType(path) != DoesNotExist
}

// DeleteBatch removes up to batchSize top-level directory entries from
// path; a subdirectory among them is cleared by a nested DeleteBatch with
// the same batchSize and stays in place until a later call empties it.
// path itself is removed once it is empty. Call it repeatedly (once per
// dispatcher frame) until Exists(path) is false — each directory level
// handles at most batchSize entries per call, so a destination tree with
// tens of thousands of files never stalls a single frame.
func DeleteBatch(path string, batchSize int) error {
	if GetPathType(path) != Directory {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	if batchSize > 0 && len(entries) > batchSize {
		entries = entries[:batchSize]
	}

	for _, entry := range entries {
		if entry.Name() == "" {
			continue
		}
		entryPath := filepath.Join(path, entry.Name())
		pathType := GetPathType(entryPath)

		switch pathType {
		case Directory:
			if err := DeleteBatch(entryPath, batchSize); err != nil {
				return err
			}
			if Exists(entryPath) {
				continue
			}
		case File:
			if err := os.Remove(entryPath); err != nil {
				return err
			}
		default:
			if filepath.Ext(entryPath) == "" {
				// An entry that stats as neither a regular file nor a
				// directory (or could not be statted) is removed on a
				// best-effort basis when it has no extension; failure is
				// ignored.
				_ = os.Remove(entryPath)
			}
		}
	}

	remaining, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return os.Remove(path)
	}
	return nil
}
