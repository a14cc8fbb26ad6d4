package srcfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MemFS is an in-memory source tree. Paths are stored absolute and cleaned;
// relative paths are taken relative to Dir.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dir   string
}

// NewMemFS creates an empty tree whose working directory is dir.
func NewMemFS(dir string) *MemFS {
	if dir == "" {
		dir = string(filepath.Separator)
	}
	return &MemFS{
		files: make(map[string][]byte),
		dir:   filepath.Clean(dir),
	}
}

// Dir is the working directory used to resolve relative paths.
func (m *MemFS) Dir() string {
	return m.dir
}

func (m *MemFS) Abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(m.dir, path), nil
}

// Write stores a copy of data at path, replacing any previous contents.
func (m *MemFS) Write(path string, data []byte) error {
	abs, err := m.Abs(path)
	if err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[abs] = buf
	return nil
}

// WriteString is Write for text sources.
func (m *MemFS) WriteString(path, text string) error {
	return m.Write(path, []byte(text))
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	abs, err := m.Abs(path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[abs]
	if !ok {
		return nil, ErrFileNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemFS) IsRegularFile(path string) bool {
	abs, err := m.Abs(path)
	if err != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[abs]
	return ok
}

// List returns every stored path, sorted.
func (m *MemFS) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadFrom copies every regular file under the host directory root into the
// tree, keeping paths relative to root under Dir.
// Returns nil if root does not exist.
func (m *MemFS) LoadFrom(root string) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return m.Write(filepath.Join(m.dir, rel), raw)
	})
}
