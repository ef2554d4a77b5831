package content

// Blob is an owned, immutable copy of a file's bytes, possibly compressed.
// The zero Blob is absent: no content was loaded.
type Blob struct {
	data       []byte
	size       int
	compressed bool
	present    bool
}

// Present reports whether content was loaded.
func (b Blob) Present() bool { return b.present }

// Len is the uncompressed size.
func (b Blob) Len() int { return b.size }

// Stored is the number of bytes held in memory.
func (b Blob) Stored() int { return len(b.data) }

func (b Blob) Compressed() bool { return b.compressed }
