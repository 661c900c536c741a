package plumbing

import (
	"bytes"
	"io"
)

// MemoryObject is an EncodedObject implementation that keeps the content in
// memory. Used mainly in in-memory storers and as scratch space while
// building a new object before it is persisted.
type MemoryObject struct {
	t    ObjectType
	h    Hash
	cont []byte
	sz   int64
	hash bool
}

// Hash returns the object hash, computing and caching it on first call.
func (o *MemoryObject) Hash() Hash {
	if !o.hash {
		o.h = ComputeHash(o.t, o.cont)
		o.hash = true
	}
	return o.h
}

// Type returns the object type.
func (o *MemoryObject) Type() ObjectType { return o.t }

// SetType sets the object type.
func (o *MemoryObject) SetType(t ObjectType) { o.t = t }

// Size returns the object size.
func (o *MemoryObject) Size() int64 { return o.sz }

// SetSize sets the object size. When s is not larger than the content
// written so far, the content is truncated to s bytes; a later write sets
// the size to the length of the content.
func (o *MemoryObject) SetSize(s int64) {
	if s <= int64(len(o.cont)) {
		o.cont = o.cont[:s]
	}
	o.sz = s
}

// Reader returns a reader for the content of the object.
func (o *MemoryObject) Reader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(o.cont)), nil
}

// Writer returns a writer for the object; writes invalidate the cached hash.
func (o *MemoryObject) Writer() (io.WriteCloser, error) {
	return &memoryObjectWriter{o}, nil
}

// Write appends p to the object content, implementing io.Writer directly
// for callers that don't need an explicit Writer() + Close() sequence.
func (o *MemoryObject) Write(p []byte) (int, error) {
	o.cont = append(o.cont, p...)
	o.sz = int64(len(o.cont))
	o.hash = false
	return len(p), nil
}

// Bytes returns the raw content written to the object.
func (o *MemoryObject) Bytes() []byte {
	return o.cont
}

type memoryObjectWriter struct {
	o *MemoryObject
}

func (w *memoryObjectWriter) Write(p []byte) (int, error) { return w.o.Write(p) }
func (w *memoryObjectWriter) Close() error                { return nil }
