package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores uploads as flat files under one directory. Names are
// reduced to their base component before use, so a crafted name can
// never escape the root.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) path(name string) string {
	return filepath.Join(l.root, filepath.Base(name))
}

func (l *Local) Save(name string, content io.Reader) (int64, error) {
	f, err := os.Create(l.path(name))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	written, err := io.Copy(f, content)
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (l *Local) SizeOf(name string) (int64, error) {
	info, err := os.Stat(l.path(name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (l *Local) Exists(name string) bool {
	_, err := os.Stat(l.path(name))
	return err == nil
}

func (l *Local) Open(name string) (io.ReadCloser, error) {
	return os.Open(l.path(name))
}
