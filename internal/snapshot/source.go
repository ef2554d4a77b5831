package snapshot

import (
	"fmt"

	"svc/internal/content"
	"svc/internal/fsys"
	"svc/internal/hashing"
)

// Source reads tracked files and turns them into entries.
type Source struct {
	Reader fsys.Reader
	Codec  *content.Codec
}

// Load reads name and returns a fresh entry with its fingerprint.
func (src Source) Load(name string) (Entry, error) {
	data, err := src.Reader.ReadFile(name)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:        name,
		Content:     src.Codec.Pack(name, data),
		Fingerprint: hashing.Fingerprint(name, data),
	}, nil
}

// Fingerprint recomputes the fingerprint of name from disk.
func (src Source) Fingerprint(name string) (uint32, error) {
	data, err := src.Reader.ReadFile(name)
	if err != nil {
		return 0, err
	}
	return hashing.Fingerprint(name, data), nil
}

// Copy returns a new snapshot with the same names and recorded
// fingerprints whose content is re-read from disk. A file that cannot be
// read gets an absent content.
func (src Source) Copy(s *Snapshot) *Snapshot {
	out := &Snapshot{entries: make([]Entry, 0, s.Len())}
	for _, e := range s.Entries() {
		var blob content.Blob
		if data, err := src.Reader.ReadFile(e.Name); err == nil {
			blob = src.Codec.Pack(e.Name, data)
		}
		out.entries = append(out.entries, Entry{
			Name:        e.Name,
			Content:     blob,
			Fingerprint: e.Fingerprint,
		})
	}
	return out
}

// Bytes unpacks the cached content of e.
func (src Source) Bytes(e Entry) ([]byte, error) {
	data, err := src.Codec.Unpack(e.Content)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", e.Name, err)
	}
	return data, nil
}
