// Package storage stages uploaded resumes on disk and fetches resumes from object storage.
package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// Usage is the on-disk footprint of staged files.
type Usage struct {
	Files int
	Bytes int64
}

// DiskUsage sums the regular files under each path (a file or a directory tree).
// Paths that do not exist count as empty.
func DiskUsage(paths ...string) (Usage, error) {
	var u Usage
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			u.Files++
			u.Bytes += info.Size()
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Usage{}, err
		}
	}
	return u, nil
}

// Usage reports what the current batch occupies in the staging directory.
func (s *Staging) Usage() (Usage, error) {
	return DiskUsage(s.dir)
}
