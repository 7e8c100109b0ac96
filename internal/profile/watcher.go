package profile

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store serves the current profile and swaps it when the backing file changes.
type Store struct {
	mu      sync.RWMutex
	current *Profile
	path    string
	logger  *zap.Logger
}

// NewStore loads path (or the defaults when path is empty).
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{current: p, path: path, logger: logger}, nil
}

// NewStaticStore wraps a fixed profile, mostly for tests.
func NewStaticStore(p *Profile) *Store {
	return &Store{current: p, logger: zap.NewNop()}
}

// Current returns a copy of the active profile.
func (s *Store) Current() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Role
}

func (s *Store) DefaultMissing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.current.DefaultMissing...)
}

// Reload re-reads the file. On error the previous profile stays active.
func (s *Store) Reload() error {
	p, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

// Watch reloads the profile whenever its file is written or recreated. It
// watches the parent directory so editors that replace the file are seen.
// Blocks until ctx is done; returns nil immediately when no path is set.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("profile reload failed", zap.String("path", s.path), zap.Error(err))
				continue
			}
			s.logger.Info("profile reloaded", zap.String("path", s.path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("profile watcher error", zap.Error(err))
		}
	}
}
