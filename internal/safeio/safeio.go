// Package safeio reads pipeline files confined to a root directory with a size cap.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrTraversal = errors.New("safeio: path escapes root")
	ErrTooLarge  = errors.New("safeio: file exceeds size limit")
)

// FS resolves every path against a fixed root. A zero FS has no root and
// reads any path.
type FS struct {
	absRoot  string // symlink-free
	maxBytes int64
}

// New confines reads to root. An empty root disables confinement; maxBytes <= 0
// disables the size cap.
func New(root string, maxBytes int64) (*FS, error) {
	fsys := &FS{maxBytes: maxBytes}
	if root == "" {
		return fsys, nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("safeio: root %s is not a directory", root)
	}
	fsys.absRoot = abs
	return fsys, nil
}

// ReadFile reads a regular file. Relative paths are taken from the root when
// one is set.
func (s *FS) ReadFile(userPath string) ([]byte, error) {
	p, err := s.resolve(userPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("safeio: %s is a directory", userPath)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, userPath, info.Size())
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if s.maxBytes > 0 {
		// the file may grow between Stat and Read
		r = io.LimitReader(f, s.maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && int64(len(b)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, userPath)
	}
	return b, nil
}

func (s *FS) resolve(userPath string) (string, error) {
	if s == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	if userPath == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(userPath)
	if s.absRoot == "" {
		return clean, nil
	}

	joined := clean
	if !filepath.IsAbs(clean) {
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", ErrTraversal
		}
		joined = filepath.Join(s.absRoot, clean)
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, s.absRoot) {
		return "", fmt.Errorf("%w: %s", ErrTraversal, userPath)
	}
	return resolved, nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}
