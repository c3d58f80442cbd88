package jsonstore

import (
	"context"
	"os"
	"time"
)

func (s *Store) indexMtime() (time.Time, bool) {
	fi, err := os.Stat(IndexPath(s.dataDir))
	if err != nil {
		return time.Time{}, false
	}
	return fi.ModTime(), true
}

// recordMtime remembers the index file's current mtime as seen.
func (s *Store) recordMtime() {
	mt, ok := s.indexMtime()
	s.mtimeMu.Lock()
	s.lastMtime, s.hasMtime = mt, ok
	s.mtimeMu.Unlock()
}

// HasExternalChanges reports whether the index file was written, created
// or removed by someone else since the store last read or wrote it.
func (s *Store) HasExternalChanges() bool {
	mt, ok := s.indexMtime()
	s.mtimeMu.Lock()
	defer s.mtimeMu.Unlock()
	if ok != s.hasMtime {
		return true
	}
	return ok && !mt.Equal(s.lastMtime)
}

// ClearCache drops every cached document.
func (s *Store) ClearCache() {
	s.cacheMu.Lock()
	s.cache = make(map[string]*Document)
	s.cacheGen++
	s.cacheMu.Unlock()
}

// Reload drops the cache and rereads the index. A missing index is
// replaced by an empty one.
func (s *Store) Reload() error {
	s.indexWriteMu.Lock()
	defer s.indexWriteMu.Unlock()

	s.ClearCache()
	idx, err := ReadIndex(s.dataDir)
	if err != nil {
		return err
	}
	if idx == nil {
		idx = NewIndex()
		if err := WriteIndex(s.dataDir, idx); err != nil {
			return err
		}
	}
	s.indexMu.Lock()
	s.index = idx
	s.indexMu.Unlock()
	s.recordMtime()
	s.logger.Info("reloaded index", "projects", len(idx.Projects))
	return nil
}

// Watch polls for external changes every interval and reloads the store
// when one is seen, calling onReload after each successful reload. It
// returns when ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration, onReload func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.HasExternalChanges() {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("reload failed", "error", err)
				continue
			}
			if onReload != nil {
				onReload()
			}
		}
	}
}
