// ABOUTME: Exporter bundling rotated and active request logs into one zstd file.
// ABOUTME: Files are concatenated oldest first into <dir>/exports/requests-<stamp>.jsonl.zst.

package analytics

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ExportDirName is the subdirectory of the log directory holding bundles.
const ExportDirName = "exports"

// Result describes one export.
type Result struct {
	// ExportPath is the log directory, kept under its historical key.
	ExportPath string   `json:"export_path"`
	BundlePath string   `json:"bundle_path"`
	Files      []string `json:"files"`
	Bytes      int64    `json:"bytes"`
}

// Source lists the log files to export.
type Source interface {
	Dir() string
	Path() string
	RotatedFiles() ([]string, error)
}

// Exporter writes compressed bundles of a Source's files.
type Exporter struct {
	src Source
	now func() time.Time
}

// NewExporter creates an Exporter. now defaults to time.Now.
func NewExporter(src Source, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{src: src, now: now}
}

// Export writes a bundle and reports what went into it. Bytes counts
// uncompressed input. With no log files the bundle is empty.
func (e *Exporter) Export() (Result, error) {
	res := Result{ExportPath: e.src.Dir(), Files: []string{}}

	rotated, err := e.src.RotatedFiles()
	if err != nil {
		return res, fmt.Errorf("list rotated logs: %w", err)
	}
	candidates := append(rotated, e.src.Path())

	outDir := filepath.Join(e.src.Dir(), ExportDirName)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return res, fmt.Errorf("create export dir: %w", err)
	}
	stamp := e.now().UTC().Format("20060102T150405Z")
	out, err := createBundle(outDir, stamp)
	if err != nil {
		return res, fmt.Errorf("create bundle: %w", err)
	}
	res.BundlePath = out.Name()
	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	if err != nil {
		out.Close()
		return res, fmt.Errorf("zstd writer: %w", err)
	}

	for _, path := range candidates {
		n, err := appendFile(enc, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			enc.Close()
			out.Close()
			return res, err
		}
		res.Files = append(res.Files, filepath.Base(path))
		res.Bytes += n
	}

	if err := enc.Close(); err != nil {
		out.Close()
		return res, fmt.Errorf("finish bundle: %w", err)
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("close bundle: %w", err)
	}
	return res, nil
}

// maxBundleSuffix bounds the -N suffixes tried for one timestamp.
const maxBundleSuffix = 100

// createBundle creates a new bundle file for stamp without touching an
// existing one; later exports in the same second get a -N suffix.
func createBundle(dir, stamp string) (*os.File, error) {
	for i := 0; i < maxBundleSuffix; i++ {
		name := "requests-" + stamp
		if i > 0 {
			name += "-" + strconv.Itoa(i)
		}
		f, err := os.OpenFile(filepath.Join(dir, name+".jsonl.zst"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("too many bundles for %s", stamp)
}

func appendFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, fmt.Errorf("copy %s: %w", filepath.Base(path), err)
	}
	return n, nil
}
