// Package localfs holds the file placement primitives shared by the
// filesystem-backed adapters.
package localfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oceandata/ingest/internal/core/domain"
)

// Join maps a '/'-separated key under root, refusing keys that escape it.
func Join(root, key string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty root directory", domain.ErrInvalidConfig)
	}
	clean := filepath.Clean(filepath.Join(root, filepath.FromSlash(key)))
	rootClean := filepath.Clean(root)
	if clean == rootClean || !strings.HasPrefix(clean, rootClean+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: key %q escapes %s", domain.ErrInvalidInput, key, root)
	}
	return clean, nil
}

// StageCopy copies src into a hidden temporary file next to dst and returns
// its path. The caller renames or links it into place and removes it on error.
func StageCopy(src, dst string) (string, error) {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Replace atomically places a copy of src at dst, replacing any file there.
func Replace(src, dst string) error {
	tmp, err := StageCopy(src, dst)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// CreateNew places a copy of src at dst only if nothing exists there.
// Returns domain.ErrAlreadyExists otherwise.
func CreateNew(src, dst string) error {
	tmp, err := StageCopy(src, dst)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, dst); err != nil {
		if os.IsExist(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Exists reports whether a regular file exists at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}
