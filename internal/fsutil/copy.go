// Package fsutil holds filesystem helpers built on go-billy.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// CopyDir recursively copies the tree rooted at src into dst, creating dst if
// needed. File modes and symlinks are kept. Entries already present in dst are
// replaced; entries only present in dst are left alone.
func CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if err := os.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", dst, err)
	}

	return copyTree(osfs.New(src), osfs.New(dst))
}

// copyTree copies every entry of src into dst
func copyTree(src, dst billy.Filesystem) error {
	return util.Walk(src, ".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(src, dst, path)
		case info.IsDir():
			return copyDirEntry(dst, path, info.Mode())
		case info.Mode().IsRegular():
			return copyFile(src, dst, path, info.Mode())
		default:
			// Sockets, devices and pipes have no place in a source tree
			return nil
		}
	})
}

func copyDirEntry(dst billy.Filesystem, path string, mode os.FileMode) error {
	if existing, err := dst.Lstat(path); err == nil && !existing.IsDir() {
		if err := dst.Remove(path); err != nil {
			return fmt.Errorf("failed to replace %s: %w", path, err)
		}
	}

	// Owner write is kept so the tree can be filled and later replaced
	if err := dst.MkdirAll(path, mode.Perm()|0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst billy.Filesystem, path string, mode os.FileMode) (err error) {
	in, err := src.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = in.Close()
	}()

	// Removing first lets read-only files, such as git objects, be replaced
	if err := removeExisting(dst, path); err != nil {
		return err
	}

	out, err := dst.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy %s: %w", path, err)
	}

	return nil
}

func copySymlink(src, dst billy.Filesystem, path string) error {
	target, err := src.Readlink(path)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", path, err)
	}

	if err := removeExisting(dst, path); err != nil {
		return err
	}
	if err := dst.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := dst.Symlink(target, path); err != nil {
		return fmt.Errorf("failed to create link %s: %w", path, err)
	}
	return nil
}

func removeExisting(fs billy.Filesystem, path string) error {
	existing, err := fs.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if existing.IsDir() {
		err = util.RemoveAll(fs, path)
	} else {
		err = fs.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
