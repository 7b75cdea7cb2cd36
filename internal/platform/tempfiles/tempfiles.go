// Package tempfiles tracks scoped temporary files so they can be removed after a
// response is written or at shutdown, and sweeps leftovers from earlier runs.
package tempfiles

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/meannnn/MindM/internal/platform/logger"
)

const DefaultPrefix = "mindm-"

type Set struct {
	log    *logger.Logger
	dir    string
	prefix string

	mu    sync.Mutex
	paths map[string]struct{}
}

func New(log *logger.Logger, dir string) *Set {
	if log == nil {
		log = logger.Nop()
	}
	return &Set{log: log, dir: dir, prefix: DefaultPrefix, paths: map[string]struct{}{}}
}

func (s *Set) Dir() string { return s.dir }

// Create makes a registered temp file whose name ends with suffix.
func (s *Set) Create(suffix string) (*os.File, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(s.dir, s.prefix+"*"+suffix)
	if err != nil {
		return nil, err
	}
	s.Register(f.Name())
	return f, nil
}

// Path reserves a registered path without creating the file.
func (s *Set) Path(suffix string) (string, error) {
	f, err := s.Create(suffix)
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()
	return name, nil
}

func (s *Set) Register(path string) {
	s.mu.Lock()
	s.paths[path] = struct{}{}
	s.mu.Unlock()
}

func (s *Set) Remove(path string) {
	s.mu.Lock()
	delete(s.paths, path)
	s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Temp file remove failed", "path", path, "error", err)
	}
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// CleanupAll removes every registered file. Called at shutdown.
func (s *Set) CleanupAll() int {
	s.mu.Lock()
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	s.paths = map[string]struct{}{}
	s.mu.Unlock()

	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err == nil {
			removed++
		} else if !os.IsNotExist(err) {
			s.log.Warn("Temp file cleanup failed", "path", p, "error", err)
		}
	}
	return removed
}

// Sweep deletes prefixed files in the temp dir older than maxAge. A zero maxAge
// removes all of them.
func (s *Set) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), s.prefix) {
			continue
		}
		if maxAge > 0 {
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("Swept stale temp files", "dir", s.dir, "removed", removed)
	}
	return removed, nil
}
