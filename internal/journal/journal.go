// Package journal records every sealed commit in badger as it is made.
//
// The journal is an audit log. The in-memory graph is never rebuilt from it.
package journal

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"svc/internal/change"
	"svc/internal/graph"
	"svc/internal/storage"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

const prefix = "commit"

// DefaultCacheSize is used when New is given a non-positive size.
const DefaultCacheSize = 256

// Record is the journaled form of one commit.
type Record struct {
	ID        string           `json:"id"`
	Seq       int              `json:"seq"`
	Branch    string           `json:"branch"`
	Message   string           `json:"message"`
	Parent    string           `json:"parent,omitempty"`
	Actions   change.Set       `json:"actions"`
	Files     []graph.FileView `json:"files"`
	CreatedAt time.Time        `json:"created_at"`
}

func (r *Record) GetID() string { return r.ID }

// Journal is safe for concurrent use.
type Journal struct {
	store *storage.BadgerStore
	cache *lru.Cache[string, Record]
	mu    sync.Mutex
	seq   int
}

// New opens a journal on db. Sequence numbers continue after any records
// already stored.
func New(db *badger.DB, cacheSize int) (*Journal, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Record](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	store := storage.NewBadgerStore(db, prefix)
	n, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	return &Journal{
		store: store,
		cache: cache,
		seq:   n,
	}, nil
}

// Append records the sealed commit v. A record with the same id from an
// earlier run is replaced.
func (j *Journal) Append(v graph.View) (Record, error) {
	if !v.Sealed || v.ID == "" {
		return Record{}, fmt.Errorf("journaling: node on %s is not a commit", v.Branch)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.seq++
	rec := Record{
		ID:        v.ID,
		Seq:       j.seq,
		Branch:    v.Branch,
		Message:   v.Message,
		Parent:    v.Parent,
		Actions:   v.Actions,
		Files:     v.Files,
		CreatedAt: time.Now().UTC(),
	}
	if err := j.store.Put(&rec); err != nil {
		j.seq--
		return Record{}, fmt.Errorf("journaling %s: %w", v.ID, err)
	}
	j.cache.Add(rec.ID, rec)
	return rec, nil
}

// Get returns the record for commit id.
func (j *Journal) Get(id string) (Record, error) {
	if rec, ok := j.cache.Get(id); ok {
		return rec, nil
	}
	var rec Record
	if err := j.store.Get(id, &rec); err != nil {
		return Record{}, err
	}
	j.cache.Add(id, rec)
	return rec, nil
}

// List returns every record in the order it was appended.
func (j *Journal) List() ([]Record, error) {
	var recs []Record
	if err := j.store.List(&recs); err != nil {
		return nil, err
	}
	sort.Slice(recs, func(a, b int) bool { return recs[a].Seq < recs[b].Seq })
	return recs, nil
}

// Len is the number of records appended, including earlier runs.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq
}
