// Package romload reads a ROM image from disk, transparently
// decompressing common archive formats GB/GBC test ROMs and homebrew
// are often distributed in, and reports a content hash alongside the
// raw bytes so callers can log a stable ROM identity.
package romload

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

// Result is a loaded ROM image plus its content hash.
type Result struct {
	Data  []byte
	Hash  uint64 // xxhash64 of Data, for matching known-good builds
	Inner string // name of the archive member Data came from, if any
}

// Load reads path and, if it names a .7z or .zip archive, decompresses
// the first file within it; any other extension (.gb, .gbc, .bin, or
// unrecognized) is returned as raw bytes unchanged.
func Load(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("romload: open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Result{}, fmt.Errorf("romload: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		data, inner, err := extractFirstZip(data)
		if err != nil {
			return Result{}, fmt.Errorf("romload: %s: %w", path, err)
		}
		return Result{Data: data, Hash: xxhash.Sum64(data), Inner: inner}, nil
	case ".7z":
		data, inner, err := extractFirstSevenZip(data)
		if err != nil {
			return Result{}, fmt.Errorf("romload: %s: %w", path, err)
		}
		return Result{Data: data, Hash: xxhash.Sum64(data), Inner: inner}, nil
	default:
		return Result{Data: data, Hash: xxhash.Sum64(data)}, nil
	}
}

func extractFirstZip(data []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}
	if len(zr.File) == 0 {
		return nil, "", fmt.Errorf("empty zip archive")
	}
	entry := zr.File[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}
	return out, entry.Name, nil
}

func extractFirstSevenZip(data []byte) ([]byte, string, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}
	if len(r.File) == 0 {
		return nil, "", fmt.Errorf("empty 7z archive")
	}
	entry := r.File[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", err
	}
	return out, entry.Name, nil
}
