package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type memoryRevision struct {
	id       string
	data     []byte
	hash     string
	modified time.Time
}

// MemoryStore is an in-process ContentStore. Hashes are sha256 of the
// content and revisions are numbered v1, v2, ... per path.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string][]memoryRevision
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]memoryRevision), now: time.Now}
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *MemoryStore) Get(_ context.Context, p, revision string) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs, ok := s.files[p]
	if !ok {
		return Content{}, errors.Wrap(ErrNotFound, p)
	}
	rev := revs[len(revs)-1]
	if revision != "" {
		found := false
		for _, r := range revs {
			if r.id == revision {
				rev, found = r, true
				break
			}
		}
		if !found {
			return Content{}, errors.Wrapf(ErrNotFound, "%s@%s", p, revision)
		}
	}
	data := make([]byte, len(rev.data))
	copy(data, rev.data)
	return Content{Path: p, Data: data, Hash: rev.hash, Revision: rev.id}, nil
}

func (s *MemoryStore) Put(_ context.Context, p string, data []byte, expectedHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	revs := s.files[p]
	current := ""
	if len(revs) > 0 {
		current = revs[len(revs)-1].hash
	}
	if current != expectedHash {
		return "", &ConflictError{Path: p, Expected: expectedHash, Actual: current}
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	rev := memoryRevision{
		id:       "v" + strconv.Itoa(len(revs)+1),
		data:     stored,
		hash:     contentHash(data),
		modified: s.now(),
	}
	s.files[p] = append(revs, rev)
	return rev.hash, nil
}

func (s *MemoryStore) Revisions(_ context.Context, p string) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs, ok := s.files[p]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, p)
	}
	out := make([]Revision, 0, len(revs))
	for i := len(revs) - 1; i >= 0; i-- {
		r := revs[i]
		out = append(out, Revision{
			ID:           r.id,
			Hash:         r.hash,
			Size:         int64(len(r.data)),
			LastModified: r.modified,
			IsLatest:     i == len(revs)-1,
		})
	}
	return out, nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix = normalizePrefix(prefix)
	dirs := map[string]bool{}
	var out []Entry
	for p, revs := range s.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if dir, _, nested := strings.Cut(rest, "/"); nested {
			if !dirs[dir] {
				dirs[dir] = true
				out = append(out, Entry{Path: prefix + dir + "/", Name: dir, IsDir: true})
			}
			continue
		}
		latest := revs[len(revs)-1]
		out = append(out, Entry{
			Path:         p,
			Name:         path.Base(p),
			Size:         int64(len(latest.data)),
			LastModified: latest.modified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// normalizePrefix turns "models" and "/models/" into "models/", and "" or "/" into "".
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
