package jsonstore

import "maps"

// Settings returns a copy of the global settings.
func (s *Store) Settings() (map[string]string, error) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return maps.Clone(s.index.GlobalSettings), nil
}

// Setting returns one setting and whether it is set.
func (s *Store) Setting(key string) (string, bool, error) {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	v, ok := s.index.GlobalSettings[key]
	return v, ok, nil
}

// SetSetting stores value under key and rewrites the index.
func (s *Store) SetSetting(key, value string) error {
	return s.updateIndex(func(idx *Index) {
		idx.GlobalSettings[key] = value
	})
}

// DeleteSetting removes key. Removing a missing key does not touch the
// index file.
func (s *Store) DeleteSetting(key string) error {
	if _, ok, _ := s.Setting(key); !ok {
		return nil
	}
	return s.updateIndex(func(idx *Index) {
		delete(idx.GlobalSettings, key)
	})
}
