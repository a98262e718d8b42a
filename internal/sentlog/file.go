package sentlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/bulksend/internal/phone"
)

// File is a plain-text sent-log: one canonical number per line.
type File struct {
	path string
}

// NewFile returns a File log at path. The file is not touched until the
// first Record.
func NewFile(path string) *File {
	if path == "" {
		path = DefaultPath
	}
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load reads the log. A missing file yields an empty set.
func (f *File) Load(ctx context.Context) (Set, error) {
	set := make(Set)

	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sent log: %w", err)
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set.Add(phone.Number(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load sent log: %w", err)
	}
	return set, nil
}

// Record appends n followed by a newline and syncs the file.
func (f *File) Record(_ context.Context, n phone.Number) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("record sent number: %w", err)
		}
	}

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("record sent number: %w", err)
	}

	if _, err := fh.WriteString(string(n) + "\n"); err != nil {
		fh.Close()
		return fmt.Errorf("record sent number: %w", err)
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		return fmt.Errorf("record sent number: sync: %w", err)
	}
	return fh.Close()
}
