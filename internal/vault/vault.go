package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// MarkdownExt is the extension of note files.
const MarkdownExt = ".md"

const (
	filePerm = 0o644
	dirPerm  = 0o755

	maxUniqueAttempts = 100
)

// FileInfo describes a note on disk.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Vault is a folder of markdown notes.
type Vault struct {
	fs   afero.Fs
	root string

	locksMu sync.Mutex
	locks   map[string]*noteLock
}

// noteLock serializes updates of one note. refs counts the holders and waiters;
// the entry is removed from Vault.locks when it drops to zero.
type noteLock struct {
	mu   sync.Mutex
	refs int
}

// Open returns a Vault over the directory root on the local filesystem.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root %s: %w", root, err)
	}
	return New(afero.NewOsFs(), abs)
}

// New returns a Vault over root on fsys. root must be an existing directory.
func New(fsys afero.Fs, root string) (*Vault, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return &Vault{
		fs:    fsys,
		root:  filepath.Clean(root),
		locks: make(map[string]*noteLock),
	}, nil
}

// Root returns the vault's root directory.
func (v *Vault) Root() string {
	return v.root
}

// Clean normalizes rel and rejects paths that leave the vault.
func Clean(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if path.IsAbs(rel) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, rel)
	}
	if clean == "." {
		return "", nil
	}
	return clean, nil
}

func (v *Vault) abs(rel string) (string, string, error) {
	clean, err := Clean(rel)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(v.root, filepath.FromSlash(clean)), nil
}

func notFound(rel string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return err
}

// Read returns the content of the note at rel.
func (v *Vault) Read(rel string) (string, error) {
	clean, p, err := v.abs(rel)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(v.fs, p)
	if err != nil {
		return "", notFound(clean, err)
	}
	return string(data), nil
}

// Write replaces the note at rel, creating it and its folder if needed.
// The content is written to a temporary file first and renamed into place.
func (v *Vault) Write(rel, content string) error {
	clean, p, err := v.abs(rel)
	if err != nil {
		return err
	}
	if clean == "" {
		return fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if err := v.fs.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", clean, err)
	}

	tmp := p + ".tmp-" + uuid.NewString()
	if err := afero.WriteFile(v.fs, tmp, []byte(content), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := v.fs.Rename(tmp, p); err != nil {
		_ = v.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", clean, err)
	}
	return nil
}

// Create writes a new note at rel and fails with ErrExists if one is there.
func (v *Vault) Create(rel, content string) error {
	clean, p, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := v.fs.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", clean, err)
	}

	f, err := v.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, clean)
		}
		return fmt.Errorf("failed to create %s: %w", clean, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	return f.Close()
}

// CreateUnique creates a note at rel, or at rel with a -1, -2, ... suffix
// when that name is taken, and returns the path used.
func (v *Vault) CreateUnique(rel, content string) (string, error) {
	clean, err := Clean(rel)
	if err != nil {
		return "", err
	}
	ext := path.Ext(clean)
	base := strings.TrimSuffix(clean, ext)

	candidate := clean
	for i := 1; i <= maxUniqueAttempts; i++ {
		err := v.Create(candidate, content)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrExists) {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
	return "", fmt.Errorf("%w: no free name for %s", ErrExists, clean)
}

// Update applies fn to the current content of the note at rel and writes the
// result back. Updates of the same note through one Vault are serialized.
func (v *Vault) Update(rel string, fn func(content string) (string, error)) error {
	clean, err := Clean(rel)
	if err != nil {
		return err
	}
	l := v.acquire(clean)
	defer v.release(clean, l)

	old, err := v.Read(clean)
	if err != nil {
		return err
	}
	updated, err := fn(old)
	if err != nil {
		return err
	}
	if updated == old {
		return nil
	}
	return v.Write(clean, updated)
}

func (v *Vault) acquire(rel string) *noteLock {
	v.locksMu.Lock()
	l, ok := v.locks[rel]
	if !ok {
		l = &noteLock{}
		v.locks[rel] = l
	}
	l.refs++
	v.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (v *Vault) release(rel string, l *noteLock) {
	l.mu.Unlock()

	v.locksMu.Lock()
	defer v.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(v.locks, rel)
	}
}

// Exists reports whether a file or folder exists at rel.
func (v *Vault) Exists(rel string) bool {
	_, p, err := v.abs(rel)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(v.fs, p)
	return err == nil && ok
}

// MkdirAll creates the folder rel and any missing parents.
func (v *Vault) MkdirAll(rel string) error {
	clean, p, err := v.abs(rel)
	if err != nil {
		return err
	}
	if err := v.fs.MkdirAll(p, dirPerm); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", clean, err)
	}
	return nil
}

// Stat describes the note at rel.
func (v *Vault) Stat(rel string) (FileInfo, error) {
	clean, p, err := v.abs(rel)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := v.fs.Stat(p)
	if err != nil {
		return FileInfo{}, notFound(clean, err)
	}
	return FileInfo{Path: clean, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ListMarkdown returns the markdown notes under folder, recursively and sorted.
// Hidden files and folders such as .obsidian are skipped.
func (v *Vault) ListMarkdown(folder string) ([]string, error) {
	clean, p, err := v.abs(folder)
	if err != nil {
		return nil, err
	}

	info, err := v.fs.Stat(p)
	if err != nil {
		return nil, notFound(clean, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, clean)
	}

	var notes []string
	err = afero.Walk(v.fs, p, func(walked string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if walked != p && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !IsMarkdown(info.Name()) {
			return nil
		}

		rel, err := filepath.Rel(v.root, walked)
		if err != nil {
			return err
		}
		notes = append(notes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", clean, err)
	}

	sort.Strings(notes)
	return notes, nil
}

// IsMarkdown reports whether name has the markdown extension.
func IsMarkdown(name string) bool {
	return strings.EqualFold(path.Ext(name), MarkdownExt)
}

// BaseName returns the file name of rel without folder or extension.
func BaseName(rel string) string {
	base := path.Base(strings.ReplaceAll(rel, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
