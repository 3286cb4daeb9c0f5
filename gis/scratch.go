package gis

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrScratchNotFound = errors.New("شناسه فایل موقت معتبر نیست یا منقضی شده است")

type scratchEntry struct {
	Dir       string
	GdbPath   string
	ExpiresAt time.Time
}

// ScratchStore keeps unpacked uploads on disk between the inspect call and
// the import call. Entries expire after a TTL and their directories are
// removed by a background sweep.
type ScratchStore struct {
	mu    sync.RWMutex
	items map[string]*scratchEntry
	root  string
	ttl   time.Duration
}

// NewScratchStore creates the store rooted at root and starts the sweep.
func NewScratchStore(root string, ttl time.Duration) *ScratchStore {
	os.MkdirAll(root, os.ModePerm)
	store := &ScratchStore{
		items: make(map[string]*scratchEntry),
		root:  root,
		ttl:   ttl,
	}

	go store.cleanupLoop()

	return store
}

// NewWorkDir allocates a fresh directory under the scratch root without
// registering it. Callers register via Put once unpacking succeeds.
func (s *ScratchStore) NewWorkDir() (string, error) {
	dir := filepath.Join(s.root, uuid.New().String())
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	return dir, nil
}

// Put registers an unpacked geodatabase directory and returns its scratch id.
func (s *ScratchStore) Put(dir string, gdbPath string) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = &scratchEntry{
		Dir:       dir,
		GdbPath:   gdbPath,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	return id
}

// Resolve returns the geodatabase path behind a scratch id and refreshes
// its TTL.
func (s *ScratchStore) Resolve(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return "", ErrScratchNotFound
	}
	if time.Now().After(item.ExpiresAt) {
		delete(s.items, id)
		os.RemoveAll(item.Dir)
		return "", ErrScratchNotFound
	}

	item.ExpiresAt = time.Now().Add(s.ttl)
	return item.GdbPath, nil
}

// Release drops a scratch entry and removes its directory.
func (s *ScratchStore) Release(id string) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()

	if ok {
		if err := os.RemoveAll(item.Dir); err != nil {
			log.Printf("Failed to remove scratch dir %s: %v", item.Dir, err)
		}
	}
}

func (s *ScratchStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}

func (s *ScratchStore) cleanup() {
	now := time.Now()
	var expired []*scratchEntry

	s.mu.Lock()
	for id, item := range s.items {
		if now.After(item.ExpiresAt) {
			expired = append(expired, item)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, item := range expired {
		if err := os.RemoveAll(item.Dir); err != nil {
			log.Printf("Failed to remove expired scratch dir %s: %v", item.Dir, err)
		}
	}
}
