// Package snapshot holds the tracked file set of a commit node and compares
// a staging set against the head set.
package snapshot

import (
	"svc/internal/content"
)

// Entry is one tracked file.
type Entry struct {
	Name        string
	Content     content.Blob
	Fingerprint uint32
}

// Snapshot is an ordered set of entries with unique names. Order is the
// order in which files were added.
type Snapshot struct {
	entries []Entry
}

// New returns a snapshot holding entries in the given order. Later
// duplicates of a name are dropped.
func New(entries ...Entry) *Snapshot {
	s := &Snapshot{}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Snapshot) indexOf(name string) int {
	if s == nil {
		return -1
	}
	for i := range s.entries {
		if s.entries[i].Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether name is tracked.
func (s *Snapshot) Has(name string) bool {
	return s.indexOf(name) >= 0
}

// Get returns the entry for name.
func (s *Snapshot) Get(name string) (Entry, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Add appends e. It returns false and changes nothing when the name is
// already tracked.
func (s *Snapshot) Add(e Entry) bool {
	if s.Has(e.Name) {
		return false
	}
	s.entries = append(s.entries, e)
	return true
}

// Remove deletes name, keeping the order of the remaining entries.
func (s *Snapshot) Remove(name string) (Entry, bool) {
	i := s.indexOf(name)
	if i < 0 {
		return Entry{}, false
	}
	e := s.entries[i]
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	return e, true
}

// Replace overwrites the entry with the same name.
func (s *Snapshot) Replace(e Entry) bool {
	i := s.indexOf(e.Name)
	if i < 0 {
		return false
	}
	s.entries[i] = e
	return true
}

// Entries returns a copy of the entries in order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Names returns the tracked names in order.
func (s *Snapshot) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Clone copies the entry list. Blobs are immutable and shared.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	return &Snapshot{entries: s.Entries()}
}

// StoredSum is the uint32 sum of the recorded fingerprints.
func (s *Snapshot) StoredSum() uint32 {
	var sum uint32
	if s == nil {
		return sum
	}
	for _, e := range s.entries {
		sum += e.Fingerprint
	}
	return sum
}
