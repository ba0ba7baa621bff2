// Package taskfile locates, reads and writes task documents on disk.
//
// Documents live under a base directory partitioned by year and month:
//
//	{base}/2025/01/42 - fix-login.md
package taskfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/natefinch/atomic"

	"github.com/comandaflow/timetrack/internal/utils"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644

	docExt      = ".md"
	defaultSlug = "task"
)

var issuePrefix = regexp.MustCompile(`^(\d+)\s*-`)

// Store maps issue numbers to task documents under BaseDir.
type Store struct {
	BaseDir  string
	Location *time.Location
}

// New returns a Store rooted at baseDir. A nil loc means UTC.
func New(baseDir string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{BaseDir: baseDir, Location: loc}
}

// Filename returns the canonical document name for an issue.
func (s *Store) Filename(issue int, title string) string {
	name := slug.Make(title)
	if name == "" {
		name = defaultSlug
	}
	return fmt.Sprintf("%d - %s%s", issue, name, docExt)
}

// Find returns the path of the document for issue, or "" when there is none.
// Only the {year}/{month} layout is searched.
func (s *Store) Find(issue int) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.BaseDir, "*", "*", "*"))
	if err != nil {
		return "", fmt.Errorf("failed to search task directory: %w", err)
	}
	sort.Strings(matches)

	prefix := strconv.Itoa(issue) + " - "
	for _, m := range matches {
		base := filepath.Base(m)
		if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, docExt) {
			continue
		}
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m, nil
		}
	}
	return "", nil
}

// Path returns where a document named filename belongs for the given date.
func (s *Store) Path(filename string, date time.Time) string {
	d := date.In(s.location())
	return filepath.Join(s.BaseDir, d.Format("2006"), d.Format("01"), filename)
}

// All returns every markdown document under BaseDir in lexical order.
// A missing base directory yields an empty list.
func (s *Store) All() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.BaseDir {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), docExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk task directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// IssueFromPath extracts the issue number from a document's file name.
func IssueFromPath(path string) (int, bool) {
	m := issuePrefix.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Load reads a document.
func (s *Store) Load(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from Find/All/Path
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// Save writes content to path, creating parent directories as needed.
// The write goes through a temp file and rename, so a failure leaves the
// previous content intact.
func (s *Store) Save(path, content string) error {
	target, err := utils.ResolveForWrite(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPerms); err != nil {
		return fmt.Errorf("failed to create task directory: %w", err)
	}

	if err := atomic.WriteFile(target, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	// atomic.WriteFile doesn't set permissions for new files
	if err := os.Chmod(target, filePerms); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}

func (s *Store) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}
