// FILE: companion/internal/store/file.go
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/openxr-toolkit/companion/internal/fsutil"
	"github.com/sirupsen/logrus"
)

// fileDocument is the on-disk layout of a File store.
//
//	[global]
//	running = "FS2020"
//
//	[apps.FS2020]
//	post_brightness = 505
type fileDocument struct {
	Global map[string]any            `toml:"global,omitempty"`
	Apps   map[string]map[string]any `toml:"apps,omitempty"`
}

func (d *fileDocument) scope(scope string, create bool) map[string]any {
	if scope == GlobalScope {
		if d.Global == nil && create {
			d.Global = make(map[string]any)
		}
		return d.Global
	}
	if d.Apps == nil {
		if !create {
			return nil
		}
		d.Apps = make(map[string]map[string]any)
	}
	values, ok := d.Apps[scope]
	if !ok && create {
		values = make(map[string]any)
		d.Apps[scope] = values
	}
	return values
}

// File is a Store backed by a TOML document.
// The document is re-read on every call and replaced atomically on every write.
type File struct {
	path   string
	logger *logrus.Logger
	mu     sync.Mutex
}

// NewFile creates a File store at path. The file is created on first write.
func NewFile(path string, logger *logrus.Logger) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path cannot be empty")
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("file store path '%s' is a directory", path)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &File{path: path, logger: logger}, nil
}

func (f *File) load() (*fileDocument, error) {
	doc := &fileDocument{}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read settings file '%s': %w", f.path, err)
	}

	if err := toml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings file '%s': %w", f.path, err)
	}
	return doc, nil
}

func (f *File) save(doc *fileDocument) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := fsutil.WriteFileAtomic(f.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write settings file '%s': %w", f.path, err)
	}
	return nil
}

func (f *File) read(scope, name string) (any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc.scope(scope, false)[name]
	return v, ok, nil
}

func (f *File) update(fn func(doc *fileDocument)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	fn(doc)
	return f.save(doc)
}

func (f *File) Int(scope, name string) (int, bool, error) {
	v, ok, err := f.read(scope, name)
	if err != nil || !ok {
		return 0, false, err
	}
	switch n := v.(type) {
	case int64:
		return toDWORD(int(n)), true, nil
	case float64:
		f.logger.WithFields(logrus.Fields{"scope": scope, "name": name}).Warn("Truncating non-integer setting value")
		return toDWORD(int(n)), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s/%s is %T", ErrTypeMismatch, scope, name, v)
	}
}

func (f *File) SetInt(scope, name string, value int) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	return f.update(func(doc *fileDocument) {
		doc.scope(scope, true)[name] = int64(toDWORD(value))
	})
}

func (f *File) String(scope, name string) (string, bool, error) {
	v, ok, err := f.read(scope, name)
	if err != nil || !ok {
		return "", false, err
	}
	s, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("%w: %s/%s is %T", ErrTypeMismatch, scope, name, v)
	}
	return s, true, nil
}

func (f *File) SetString(scope, name, value string) error {
	if err := validateName(scope, name); err != nil {
		return err
	}
	return f.update(func(doc *fileDocument) {
		doc.scope(scope, true)[name] = value
	})
}

func (f *File) Delete(scope, name string) error {
	return f.update(func(doc *fileDocument) {
		if values := doc.scope(scope, false); values != nil {
			delete(values, name)
		}
	})
}

func (f *File) DeleteScope(scope string) error {
	if scope == GlobalScope {
		return fmt.Errorf("refusing to delete the global scope")
	}
	return f.update(func(doc *fileDocument) {
		delete(doc.Apps, scope)
	})
}

func (f *File) Close() error {
	return nil
}
