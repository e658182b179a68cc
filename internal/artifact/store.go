package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ErrOutsideRoot is returned by Resolve for names escaping the requested root.
var ErrOutsideRoot = errors.New("path outside artifact root")

const (
	timestampLayout    = "20060102_150405"
	maxReserveAttempts = 8
)

func (s *implStore) Put(root Root, filename string) (string, error) {
	dir := filepath.Join(s.baseDir, string(root), s.now().Format("01-2006"))
	// MkdirAll tolerates concurrent creators.
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create partition %s: %w", dir, err)
	}
	return filepath.Join(dir, filename), nil
}

// NewPath reserves a fresh path by creating it empty with O_EXCL, so two
// callers can never be handed the same name. On collision a short uuid is
// appended and the reservation retried.
func (s *implStore) NewPath(root Root, n Name) (string, error) {
	p, err := s.Put(root, Filename(n, s.now()))
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	candidate := p
	for range maxReserveAttempts {
		err := reserve(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("reserve %s: %w", candidate, err)
		}
		candidate = stem + "_" + uuid.NewString()[:8] + ext
	}
	return "", fmt.Errorf("reserve %s: %d attempts collided", p, maxReserveAttempts)
}

func reserve(p string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Filename renders n with timestamp t.
func Filename(n Name, t time.Time) string {
	var b strings.Builder
	b.WriteString(CleanName(n.Base))
	if n.Tag != "" {
		b.WriteString("_" + n.Tag)
	}
	b.WriteString("_" + t.Format(timestampLayout))
	b.WriteString(n.Ext)
	return b.String()
}

// CleanName keeps letters, digits, space, '_' and '-', trims, and turns spaces into underscores.
func CleanName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if clean == "" {
		return "file"
	}
	return clean
}

// BaseName is the file name of p without directory and extension.
func BaseName(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *implStore) List(root Root, exts ...string) ([]string, error) {
	dir := filepath.Join(s.baseDir, string(root))

	type entry struct {
		path    string
		modTime time.Time
	}
	var entries []entry

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if !matchesExt(d.Name(), exts) {
			return nil
		}
		if root == RootTranscript && strings.Contains(d.Name(), "_timestamped") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		entries = append(entries, entry{path: p, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].modTime.After(entries[j].modTime)
	})

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.path)
	}
	return paths, nil
}

func matchesExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func (s *implStore) SaveUpload(filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	final, err := s.NewPath(RootMedia, Name{Base: strings.TrimSuffix(filepath.Base(filename), ext), Ext: strings.ToLower(ext)})
	if err != nil {
		return "", err
	}

	if err := writeUpload(final, r); err != nil {
		os.Remove(final)
		return "", err
	}
	return final, nil
}

// writeUpload fills the reserved path final through a temp file and rename.
func writeUpload(final string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(final), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("rename upload: %w", err)
	}
	return nil
}

// Resolve accepts either a bare file name (searched in every partition of
// root, newest first) or a path that already lies inside root.
func (s *implStore) Resolve(root Root, name string) (string, error) {
	rootDir, err := filepath.Abs(filepath.Join(s.baseDir, string(root)))
	if err != nil {
		return "", err
	}

	if filepath.Base(name) != name {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", err
		}
		if !strings.HasPrefix(abs, rootDir+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, name)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", err
		}
		return name, nil
	}

	files, err := s.List(root)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if filepath.Base(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
}

func (s *implStore) Close() error {
	return s.db.Close()
}
