package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileFormatVersion is the current version of the file layout.
const FileFormatVersion = 1

// fileDocument is the on-disk layout of a FileEngine.
type fileDocument struct {
	Version    int                          `json:"version"`
	Namespaces map[string]map[string]string `json:"namespaces"`
}

// FileEngine stores all namespaces in a single JSON file. Commit writes a
// temporary file and renames it over the original, so a crash leaves either
// the old or the new document.
type FileEngine struct {
	mu   sync.Mutex
	path string

	doc       *fileDocument
	namespace string
	pending   staging
}

// NewFileEngine creates an engine backed by the file at path.
func NewFileEngine(path string) *FileEngine {
	return &FileEngine{path: path}
}

// Path returns the backing file path.
func (e *FileEngine) Path() string {
	return e.path
}

// Open loads the document and selects namespace.
// A missing file is an empty store.
func (e *FileEngine) Open(namespace string) error {
	if !validKey(namespace) {
		return fmt.Errorf("%w: namespace %q", ErrInvalidKey, namespace)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	doc, err := e.load()
	if err != nil {
		return err
	}

	if doc.Namespaces[namespace] == nil {
		doc.Namespaces[namespace] = make(map[string]string)
	}
	e.doc = doc
	e.namespace = namespace
	e.pending = make(staging)
	return nil
}

func (e *FileEngine) load() (*fileDocument, error) {
	data, err := os.ReadFile(e.path)
	if os.IsNotExist(err) {
		return &fileDocument{
			Version:    FileFormatVersion,
			Namespaces: make(map[string]map[string]string),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	doc := &fileDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != FileFormatVersion {
		return nil, fmt.Errorf("%w: file version %d, want %d", ErrNewVersionFound, doc.Version, FileFormatVersion)
	}
	if doc.Namespaces == nil {
		doc.Namespaces = make(map[string]map[string]string)
	}
	return doc, nil
}

// Erase removes the backing file and closes the namespace.
func (e *FileEngine) Erase() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc = nil
	e.pending = nil

	err := os.Remove(e.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetString returns the value for key.
func (e *FileEngine) GetString(key string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return "", ErrNotOpen
	}
	if v, ok, staged := e.pending.lookup(key); staged {
		if !ok {
			return "", ErrNotFound
		}
		return v, nil
	}
	v, ok := e.doc.Namespaces[e.namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// SetString stages value for key.
func (e *FileEngine) SetString(key, value string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNotOpen
	}
	e.pending.set(key, value)
	return nil
}

// EraseKey stages removal of key.
func (e *FileEngine) EraseKey(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNotOpen
	}
	e.pending.erase(key)
	return nil
}

// Commit writes staged changes to disk.
func (e *FileEngine) Commit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNotOpen
	}
	if len(e.pending) == 0 {
		return nil
	}

	// Apply to a copy so a failed write leaves the in-memory view unchanged.
	next := make(map[string]string, len(e.doc.Namespaces[e.namespace]))
	for k, v := range e.doc.Namespaces[e.namespace] {
		next[k] = v
	}
	e.pending.apply(next)

	namespaces := make(map[string]map[string]string, len(e.doc.Namespaces))
	for ns, kv := range e.doc.Namespaces {
		namespaces[ns] = kv
	}
	namespaces[e.namespace] = next

	doc := &fileDocument{Version: FileFormatVersion, Namespaces: namespaces}
	if err := e.write(doc); err != nil {
		return err
	}

	e.doc = doc
	e.pending = make(staging)
	return nil
}

func (e *FileEngine) write(doc *fileDocument) error {
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(e.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, e.path)
}

// Discard drops staged changes.
func (e *FileEngine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return ErrNotOpen
	}
	e.pending = make(staging)
	return nil
}

// Close discards uncommitted changes.
func (e *FileEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc = nil
	e.pending = nil
	return nil
}

// Compile-time interface satisfaction check.
var _ Engine = (*FileEngine)(nil)
