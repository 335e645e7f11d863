package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/isogap/pkg/domain/interfaces"
	"github.com/secmon-lab/isogap/pkg/utils/logging"
)

const (
	fileExt        = ".json"
	tempFilePrefix = ".isogap-tmp-"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// File is a BlobStore that keeps one file per key under a directory. Values
// are replaced atomically by writing a temp file and renaming it.
type File struct {
	dir string
}

var (
	_ interfaces.BlobStore   = &File{}
	_ interfaces.BlobWatcher = &File{}
)

// New creates the directory if needed
func New(dir string) (*File, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}
	return &File{dir: dir}, nil
}

func (f *File) pathFor(key string) (string, error) {
	if !keyPattern.MatchString(key) || strings.Contains(key, "..") {
		return "", goerr.New("invalid key", goerr.V("key", key))
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.pathFor(key)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is built from a validated key under the data directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "blob not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read blob", goerr.V("path", path))
	}
	return data, nil
}

func (f *File) Put(ctx context.Context, key string, data []byte) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write blob", goerr.V("path", path))
	}
	return nil
}

func (f *File) Close() error {
	return nil
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over filename, so readers see either the old or the new value.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp file")
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return goerr.Wrap(err, "failed to chmod temp file")
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return goerr.Wrap(err, "failed to rename temp file", goerr.V("target", filename))
	}
	return nil
}

// Watch calls fn with the key of every value replaced in the directory,
// including replacements made by this store. It returns after the watcher is
// registered; watching stops when ctx is cancelled.
func (f *File) Watch(ctx context.Context, fn func(key string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create watcher")
	}
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return goerr.Wrap(err, "failed to watch data directory", goerr.V("dir", f.dir))
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
					continue
				}
				if key, ok := keyFromPath(event.Name); ok {
					fn(key)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.From(ctx).Warn("data directory watcher error", "error", err)
			}
		}
	}()

	return nil
}

func keyFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, tempFilePrefix) || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}
