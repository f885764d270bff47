// Package commit writes generated build files to disk.
//
// Writing happens in two phases. First every stale build file (one per
// previously vendored crate) is deleted, then every new file is written.
// The phases are not transactional: if the process dies between them the
// tree is left with missing build files until the next successful run.
// [Writer.Commit] narrows that window by formatting every file before
// deleting anything, and writes each file through a temporary name so a
// single file is never observed half-written.
package commit

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/crategen/pkg/errors"
)

// File is a generated file and its destination.
type File struct {
	Path    string
	Content []byte // unformatted
}

// Writer formats and writes build files.
type Writer struct {
	Formatter Formatter
	// Jobs bounds concurrent formatter processes. Defaults to NumCPU.
	Jobs int
	// OnFile, if set, is called after each file is written or fails.
	OnFile func(path string, err error)
}

// Commit deletes every path in stale, then writes files. Formatting runs
// first and in parallel; nothing on disk changes if any file fails to
// format. The first write failure aborts the commit.
func (w *Writer) Commit(ctx context.Context, stale []string, files []File) error {
	formatted, err := w.formatAll(ctx, files)
	if err != nil {
		return err
	}

	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeIO, err, "remove stale build file %s", path)
		}
	}

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := writeAtomic(f.Path, formatted[i])
		if w.OnFile != nil {
			w.OnFile(f.Path, err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) formatAll(ctx context.Context, files []File) ([][]byte, error) {
	out := make([][]byte, len(files))
	if w.Formatter == nil {
		for i, f := range files {
			out[i] = f.Content
		}
		return out, nil
	}

	jobs := w.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, f := range files {
		g.Go(func() error {
			data, err := w.Formatter.Format(gCtx, f.Content)
			if err != nil {
				if code := errors.GetCode(err); code != "" {
					return errors.Wrap(code, err, "format %s", f.Path)
				}
				return err
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeAtomic writes data to a uniquely named sibling of path and renames
// it into place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
