package punchcard

// Bits is a zero-copy view over the bitset region of a record,
// addressing individual bits by slot index.
//
// Bits does not range-check indices against the record capacity; that
// is the caller's responsibility (Punchcard bounds-checks before
// consulting bits). Indexing past the underlying slice is a fatal
// buffer error and panics, never a silent read.
type Bits struct {
	b []byte
}

// Get reports whether bit index is set.
func (b Bits) Get(index uint64) bool {
	return b.b[index/8]&(1<<(index%8)) != 0
}

// Set sets bit index. Setting an already-set bit is a no-op at this
// level; claim semantics live on Punchcard.
func (b Bits) Set(index uint64) {
	b.b[index/8] |= 1 << (index % 8)
}

// Len returns the bitset region length in bytes.
func (b Bits) Len() int {
	return len(b.b)
}
