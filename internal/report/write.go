package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrOutputExists is returned by WriteFile when the destination is taken.
var ErrOutputExists = errors.New("output file already exists")

// FileName returns the report file name for trace on terminalID.
func FileName(trace, terminalID, ext string) string {
	return fmt.Sprintf("trace-%s-%s.%s", trace, terminalID, ext)
}

// WriteFile creates dir/name with data and returns the full path. It never
// overwrites: an existing destination yields ErrOutputExists.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
