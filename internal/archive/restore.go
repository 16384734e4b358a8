package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// writeConcurrency bounds how many archive entries are decompressed and written at once.
const writeConcurrency = 4

// FileReport summarizes one replay of an organization's upload directory.
type FileReport struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
}

// Restorer replays archive files into <dataDir>/uploads/<orgID>.
type Restorer struct {
	dataDir      string
	maxFileBytes int64
	logger       *slog.Logger
}

// NewRestorer creates a Restorer. A maxFileBytes of zero or less disables the
// per-file size cap.
func NewRestorer(dataDir string, maxFileBytes int64, logger *slog.Logger) *Restorer {
	return &Restorer{
		dataDir:      dataDir,
		maxFileBytes: maxFileBytes,
		logger:       logger.With("component", "files"),
	}
}

// UploadRoot returns the upload directory owned by orgID.
func (r *Restorer) UploadRoot(orgID string) (string, error) {
	if orgID == "" || orgID == "." || orgID == ".." || strings.ContainsAny(orgID, `/\`) {
		return "", fmt.Errorf("invalid organization id %q", orgID)
	}
	return filepath.Join(r.dataDir, "uploads", orgID), nil
}

// Restore wipes the organization's upload directory and writes every valid
// file entry from zr into it. Entries that fail validation or exceed the size
// cap are skipped. Restore can be repeated safely: each run starts from an
// empty directory.
func (r *Restorer) Restore(ctx context.Context, zr *zip.Reader, orgID string) (FileReport, error) {
	var report FileReport

	root, err := r.UploadRoot(orgID)
	if err != nil {
		return report, err
	}
	if err := os.RemoveAll(root); err != nil {
		return report, fmt.Errorf("remove upload root: %w", err)
	}

	var written, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	seen := make(map[string]bool)

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || IsManifest(f.Name) {
			continue
		}
		category, filename, ok := ValidateEntry(f.Name)
		if !ok {
			if strings.HasPrefix(f.Name, "files/") || strings.HasPrefix(f.Name, "uploads/") {
				r.logger.Warn("skipping archive entry", "org_id", orgID, "entry", f.Name)
				skipped.Add(1)
			}
			continue
		}
		if r.maxFileBytes > 0 && f.UncompressedSize64 > uint64(r.maxFileBytes) {
			r.logger.Warn("skipping oversized archive entry", "org_id", orgID, "entry", f.Name, "size", f.UncompressedSize64)
			skipped.Add(1)
			continue
		}

		dir := filepath.Join(root, category)
		dst := filepath.Join(dir, filename)
		// files/ and uploads/ may both carry the same file; the first entry wins.
		if seen[dst] {
			skipped.Add(1)
			continue
		}
		seen[dst] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s directory: %w", category, err)
			}
			n, err := r.writeEntry(f, dst)
			if err != nil {
				return fmt.Errorf("write %s: %w", f.Name, err)
			}
			if n < 0 {
				r.logger.Warn("skipping oversized archive entry", "org_id", orgID, "entry", f.Name)
				skipped.Add(1)
				return nil
			}
			written.Add(1)
			return nil
		})
	}

	err = g.Wait()
	report.Written = int(written.Load())
	report.Skipped = int(skipped.Load())
	if err != nil {
		return report, err
	}
	return report, nil
}

// writeEntry copies f to dst. The declared size in the archive header is not
// trusted, so the copy itself is capped too; -1 means the entry was larger than
// the cap and dst was removed.
func (r *Restorer) writeEntry(f *zip.File, dst string) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	var src io.Reader = rc
	if r.maxFileBytes > 0 {
		src = io.LimitReader(rc, r.maxFileBytes+1)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, err
	}
	if r.maxFileBytes > 0 && n > r.maxFileBytes {
		os.Remove(dst)
		return -1, nil
	}
	return n, nil
}
