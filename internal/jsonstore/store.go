// Package jsonstore implements types.Store on a directory of JSON files:
// one index file listing the projects and holding the settings, and one
// document per project holding the project and everything it owns.
//
// Documents are cached after the first read and always rewritten whole
// through an atomic replace, so a crash leaves either the old or the new
// file on disk.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/devora/internal/atomicfile"
	"github.com/mesh-intelligence/devora/internal/logging"
	"github.com/mesh-intelligence/devora/pkg/types"
)

// On-disk names below the data directory.
const (
	IndexFileName = "metadata.json"
	ProjectsDir   = "projects"
)

// Store is the document backend. It is safe for concurrent use; one Store
// should own a data directory at a time.
type Store struct {
	dataDir string
	logger  *slog.Logger
	now     func() time.Time

	indexMu sync.RWMutex
	index   *Index
	// indexWriteMu orders index rewrites so the file on disk always matches
	// the last in-memory index.
	indexWriteMu sync.Mutex

	cacheMu sync.RWMutex
	cache   map[string]*Document
	// cacheGen advances whenever entries are dropped; a disk read started
	// under an older generation is not cached.
	cacheGen uint64
	loads    singleflight.Group

	// locks holds one *sync.Mutex per project id; document mutations run
	// under it.
	locks sync.Map
	// bulkMu is held exclusively by Import and shared by every other
	// mutation.
	bulkMu sync.RWMutex

	mtimeMu   sync.Mutex
	lastMtime time.Time
	hasMtime  bool
}

var _ types.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped documents and reloads.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open prepares dataDir and loads its index, creating an empty one when
// none exists. A malformed index is an error.
func Open(dataDir string, opts ...Option) (*Store, error) {
	s := &Store{
		dataDir: dataDir,
		logger:  logging.Discard(),
		now:     time.Now,
		cache:   make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Join(dataDir, ProjectsDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	idx, err := ReadIndex(dataDir)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		idx = NewIndex()
		if err := WriteIndex(dataDir, idx); err != nil {
			return nil, err
		}
	}
	s.index = idx
	s.recordMtime()
	return s, nil
}

// DataDir returns the directory the store was opened on.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Close releases nothing; every write is already on disk.
func (s *Store) Close() error {
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

// IndexPath returns the path of the index file below dataDir.
func IndexPath(dataDir string) string {
	return filepath.Join(dataDir, IndexFileName)
}

// DocumentPath returns the path of the project's document below dataDir.
func DocumentPath(dataDir, projectID string) string {
	return filepath.Join(dataDir, ProjectsDir, projectID+".json")
}

// ReadIndex loads the index of dataDir. It returns nil and no error when
// the file does not exist.
func ReadIndex(dataDir string) (*Index, error) {
	data, err := os.ReadFile(IndexPath(dataDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", IndexPath(dataDir), err)
	}
	idx.adoptLegacyIDs()
	idx.normalize()
	return &idx, nil
}

// WriteIndex atomically replaces the index of dataDir.
func WriteIndex(dataDir string, idx *Index) error {
	c := idx.clone()
	c.normalize()
	if err := atomicfile.WriteJSON(IndexPath(dataDir), c); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// WriteDocument atomically replaces the project's document below dataDir.
// The outline text is re-rendered from the todo records first.
func WriteDocument(dataDir string, doc *Document) error {
	doc.SyncTodos()
	if err := atomicfile.WriteJSON(DocumentPath(dataDir, doc.ID), doc); err != nil {
		return fmt.Errorf("writing project %s: %w", doc.ID, err)
	}
	return nil
}

// ReadDocument loads one document. It returns nil and no error when the
// file does not exist.
func ReadDocument(dataDir, projectID string) (*Document, error) {
	data, err := os.ReadFile(DocumentPath(dataDir, projectID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", projectID, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", projectID, err)
	}
	if doc.ID == "" {
		doc.ID = projectID
	}
	doc.adoptOutline()
	return &doc, nil
}

func (s *Store) snapshotIndex() *Index {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return s.index.clone()
}

func (s *Store) indexed(id string) bool {
	s.indexMu.RLock()
	defer s.indexMu.RUnlock()
	return s.index.has(id)
}

// updateIndex applies fn to a copy of the index, writes it and installs
// it. Nothing changes when fn or the write fails.
func (s *Store) updateIndex(fn func(idx *Index)) error {
	s.indexWriteMu.Lock()
	defer s.indexWriteMu.Unlock()

	next := s.snapshotIndex()
	fn(next)
	next.normalize()
	if err := WriteIndex(s.dataDir, next); err != nil {
		return err
	}

	s.indexMu.Lock()
	s.index = next
	s.indexMu.Unlock()
	s.recordMtime()
	return nil
}

// load returns the cached document, reading it from disk on a miss. The
// result is shared and must not be modified.
func (s *Store) load(id string) (*Document, error) {
	s.cacheMu.RLock()
	doc, ok := s.cache[id]
	s.cacheMu.RUnlock()
	if ok {
		return doc, nil
	}

	v, err, _ := s.loads.Do(id, func() (any, error) {
		gen := s.generation()
		doc, err := ReadDocument(s.dataDir, id)
		if err != nil || doc == nil {
			return doc, err
		}
		return s.install(id, doc, gen), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

func (s *Store) generation() uint64 {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.cacheGen
}

// install caches doc, read from disk under generation gen, and returns the
// copy callers should use. A copy installed by a writer meanwhile wins; a
// read that raced an eviction is returned but not cached.
func (s *Store) install(id string, doc *Document, gen uint64) *Document {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if cur, ok := s.cache[id]; ok {
		return cur
	}
	if gen == s.cacheGen {
		s.cache[id] = doc
	}
	return doc
}

// save writes doc and installs it in the cache.
func (s *Store) save(doc *Document) error {
	if err := WriteDocument(s.dataDir, doc); err != nil {
		return err
	}
	s.cacheMu.Lock()
	s.cache[doc.ID] = doc
	s.cacheMu.Unlock()
	return nil
}

func (s *Store) evict(id string) {
	s.cacheMu.Lock()
	delete(s.cache, id)
	s.cacheGen++
	s.cacheMu.Unlock()
}

func (s *Store) projectLock(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// lockProject takes the shared bulk lock and the project's mutation lock,
// and returns the function releasing both.
func (s *Store) lockProject(id string) (unlock func()) {
	s.bulkMu.RLock()
	mu := s.projectLock(id)
	mu.Lock()
	return func() {
		mu.Unlock()
		s.bulkMu.RUnlock()
	}
}

// mutateProject runs fn on a copy of the project's document under the
// project's lock. When fn reports a change the document's UpdatedAt is set
// to the mutation time and the document is saved. found is false when the
// project does not exist.
func (s *Store) mutateProject(id string, fn func(doc *Document, now time.Time) bool) (found bool, err error) {
	defer s.lockProject(id)()
	return s.mutateLocked(id, fn)
}

// mutateLocked is mutateProject for a caller already holding lockProject.
func (s *Store) mutateLocked(id string, fn func(doc *Document, now time.Time) bool) (found bool, err error) {
	if !s.indexed(id) {
		return false, nil
	}
	cur, err := s.load(id)
	if err != nil || cur == nil {
		return false, err
	}
	doc := cur.clone()
	now := s.timestamp()
	if !fn(doc, now) {
		return true, nil
	}
	doc.UpdatedAt = now
	return true, s.save(doc)
}

// owner returns the id of the first indexed project whose document
// satisfies has, or "" if none does. Unreadable documents are skipped.
func (s *Store) owner(has func(doc *Document) bool) string {
	for _, p := range s.snapshotIndex().Projects {
		doc, err := s.load(p.ID)
		if err != nil || doc == nil {
			continue
		}
		if has(doc) {
			return p.ID
		}
	}
	return ""
}

// mutateOwner locates the project owning a child record and mutates it.
// The ownership is checked again under the project lock by fn, which
// returns false when the child has gone.
func (s *Store) mutateOwner(has func(doc *Document) bool, fn func(doc *Document, now time.Time) bool) error {
	pid := s.owner(has)
	if pid == "" {
		return nil
	}
	_, err := s.mutateProject(pid, fn)
	return err
}
