package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"
)

// DefaultMaxDepth is the number of directory levels searched below the root
const DefaultMaxDepth = 2

// MatchRule selects files by case-insensitive exact name or suffix.
// Within one directory an exact match wins over a suffix match.
type MatchRule struct {
	Exact  string
	Suffix string
}

// Suffix matches any file ending with suffix
func Suffix(suffix string) MatchRule {
	return MatchRule{Suffix: suffix}
}

// ExactOrSuffix prefers a file named exactly name and falls back to suffix
func ExactOrSuffix(name, suffix string) MatchRule {
	return MatchRule{Exact: name, Suffix: suffix}
}

func (r MatchRule) exact(name string) bool {
	return r.Exact != "" && strings.EqualFold(name, r.Exact)
}

func (r MatchRule) suffix(name string) bool {
	return r.Suffix != "" && strings.HasSuffix(strings.ToLower(name), strings.ToLower(r.Suffix))
}

// Artifact is a file found by the locator
type Artifact struct {
	Path       string
	FileName   string
	FoundDepth int
}

// Locator searches an output tree for artifacts. All operations are read-only.
type Locator struct {
	fs billy.Filesystem
}

// NewLocator creates a locator over fs
func NewLocator(fs billy.Filesystem) *Locator {
	return &Locator{fs: fs}
}

// Filesystem returns the filesystem the locator reads from
func (l *Locator) Filesystem() billy.Filesystem {
	return l.fs
}

// Exists reports whether path exists. Only NotExist maps to false.
func (l *Locator) Exists(path string) (bool, error) {
	_, err := l.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %q: %w", path, err)
	}
}

// Find returns the first file under root matching rule.
//
// Files directly in root are checked first. When none match and maxDepth > 0
// every immediate subdirectory is searched, in the order the filesystem
// lists them, with maxDepth-1. The first match wins.
//
// A missing root is treated as empty. Any other failure to read root is
// returned; read failures below root are logged and treated as empty.
func (l *Locator) Find(root string, rule MatchRule, maxDepth int) (Artifact, bool, error) {
	entries, err := l.fs.ReadDir(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Artifact{}, false, fmt.Errorf("read dir %q: %w", root, err)
		}
		entries = nil
	}

	found, ok := l.search(root, entries, rule, maxDepth, 0)
	return found, ok, nil
}

func (l *Locator) search(dir string, entries []os.FileInfo, rule MatchRule, depthLeft, level int) (Artifact, bool) {
	var fallback os.FileInfo
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		if rule.exact(e.Name()) {
			return l.artifact(dir, e, level), true
		}
		if fallback == nil && rule.suffix(e.Name()) {
			fallback = e
		}
	}
	if fallback != nil {
		return l.artifact(dir, fallback, level), true
	}

	if depthLeft <= 0 {
		return Artifact{}, false
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := l.fs.Join(dir, e.Name())
		children, err := l.fs.ReadDir(sub)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Warn().Err(err).Str("path", sub).Msg("Skipping unreadable directory")
			}
			continue
		}
		if found, ok := l.search(sub, children, rule, depthLeft-1, level+1); ok {
			return found, true
		}
	}
	return Artifact{}, false
}

func (l *Locator) artifact(dir string, e os.FileInfo, level int) Artifact {
	return Artifact{
		Path:       l.fs.Join(dir, e.Name()),
		FileName:   e.Name(),
		FoundDepth: level,
	}
}

// ListFiles returns the names of regular files directly in dir.
// A missing directory has no files.
func (l *Locator) ListFiles(dir string) ([]string, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Mode().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
