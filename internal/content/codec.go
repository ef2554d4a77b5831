// internal/content/codec.go
package content

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Options configures when file content is compressed in memory.
type Options struct {
	// Minimum size in bytes before compressing
	MinSize int
	// Compression level (1=fastest, 4=best)
	Level int
	// File extensions that are already compressed
	SkipExtensions []string
}

// DefaultOptions provides sensible defaults
func DefaultOptions() Options {
	return Options{
		MinSize: 1024,
		Level:   2,
		SkipExtensions: []string{
			".zip", ".gz", ".zst", ".xz", ".bz2",
			".png", ".jpg", ".jpeg", ".gif", ".webp",
			".mp3", ".mp4", ".avi", ".mkv",
			".pdf", ".docx", ".xlsx",
		},
	}
}

// Codec packs file content into Blobs. It is safe for concurrent use.
type Codec struct {
	opts     Options
	encoders sync.Pool
	decoders sync.Pool
}

// NewCodec validates opts by building one encoder and decoder up front.
func NewCodec(opts Options) (*Codec, error) {
	level := zstd.EncoderLevel(opts.Level)
	if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
		return nil, fmt.Errorf("invalid compression level %d", opts.Level)
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(level),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	c := &Codec{opts: opts}
	c.encoders.New = func() interface{} {
		e, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(level),
			zstd.WithEncoderConcurrency(1),
		)
		return e
	}
	c.decoders.New = func() interface{} {
		d, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return d
	}
	c.encoders.Put(enc)
	c.decoders.Put(dec)
	return c, nil
}

// MustCodec is NewCodec for options known to be valid.
func MustCodec(opts Options) *Codec {
	c, err := NewCodec(opts)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Codec) shouldCompress(path string, size int) bool {
	if size < c.opts.MinSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, skip := range c.opts.SkipExtensions {
		if ext == skip {
			return false
		}
	}
	return true
}

// Pack copies content into a Blob, compressing it when worthwhile. A nil
// Codec stores content uncompressed.
func (c *Codec) Pack(path string, content []byte) Blob {
	if content == nil {
		return Blob{}
	}
	b := Blob{size: len(content), present: true}
	if c == nil || !c.shouldCompress(path, len(content)) {
		b.data = bytes.Clone(content)
		return b
	}

	enc := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	packed := enc.EncodeAll(content, make([]byte, 0, len(content)/2))
	if len(packed) >= len(content) {
		b.data = bytes.Clone(content)
		return b
	}
	b.data = packed
	b.compressed = true
	return b
}

// Unpack returns a fresh copy of the original bytes of b.
func (c *Codec) Unpack(b Blob) ([]byte, error) {
	if !b.present {
		return nil, nil
	}
	if !b.compressed {
		return bytes.Clone(b.data), nil
	}
	if !bytes.HasPrefix(b.data, zstdMagic) {
		return nil, fmt.Errorf("blob is marked compressed but has no zstd frame")
	}

	var dec *zstd.Decoder
	if c != nil {
		dec = c.decoders.Get().(*zstd.Decoder)
		defer c.decoders.Put(dec)
	} else {
		d, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("creating decoder: %w", err)
		}
		defer d.Close()
		dec = d
	}

	out, err := dec.DecodeAll(b.data, make([]byte, 0, b.size))
	if err != nil {
		return nil, fmt.Errorf("decompressing content: %w", err)
	}
	return out, nil
}

// Close releases the pooled encoders and decoders. The Codec must not be
// used afterwards.
func (c *Codec) Close() {
	if c == nil {
		return
	}
	c.encoders.New = nil
	c.decoders.New = nil
	for {
		enc, ok := c.encoders.Get().(*zstd.Encoder)
		if !ok || enc == nil {
			break
		}
		enc.Close()
	}
	for {
		dec, ok := c.decoders.Get().(*zstd.Decoder)
		if !ok || dec == nil {
			break
		}
		dec.Close()
	}
}
