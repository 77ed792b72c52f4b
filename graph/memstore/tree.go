package memstore

import (
	"io"
	"sort"
)

// Tree is an ordered int64-keyed index over *Primitive, supporting the
// ordered Seek/SeekFirst/SeekLast traversal QuadDirectionIndex needs to
// hand back a sorted Scanner. It keeps its entries in a sorted slice and
// locates keys with binary search; good enough for the sizes an
// in-memory store is meant for, without pulling in an on-disk B-tree.
type Tree struct {
	cmp     func(a, b int64) int
	entries []treeEntry
}

type treeEntry struct {
	key int64
	val *Primitive
}

// TreeNew creates an empty Tree ordered by cmp.
func TreeNew(cmp func(a, b int64) int) *Tree {
	return &Tree{cmp: cmp}
}

func (t *Tree) search(k int64) (int, bool) {
	n := len(t.entries)
	i := sort.Search(n, func(i int) bool { return t.cmp(t.entries[i].key, k) >= 0 })
	if i < n && t.cmp(t.entries[i].key, k) == 0 {
		return i, true
	}
	return i, false
}

// Set inserts or replaces the value stored under k.
func (t *Tree) Set(k int64, v *Primitive) {
	i, ok := t.search(k)
	if ok {
		t.entries[i].val = v
		return
	}
	t.entries = append(t.entries, treeEntry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = treeEntry{key: k, val: v}
}

// Get returns the value stored under k, if any.
func (t *Tree) Get(k int64) (*Primitive, bool) {
	i, ok := t.search(k)
	if !ok {
		return nil, false
	}
	return t.entries[i].val, true
}

// Delete removes k, reporting whether it was present.
func (t *Tree) Delete(k int64) bool {
	i, ok := t.search(k)
	if !ok {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Len returns the number of entries in the tree.
func (t *Tree) Len() int { return len(t.entries) }

// Close releases the tree. It is a no-op for this implementation, kept so
// callers can treat Tree uniformly with other closeable index types.
func (t *Tree) Close() {}

// Enumerator walks a Tree's entries in ascending key order from the
// position it was created at.
type Enumerator struct {
	t   *Tree
	pos int
}

// SeekFirst returns an Enumerator positioned before the smallest key.
func (t *Tree) SeekFirst() (*Enumerator, error) {
	if len(t.entries) == 0 {
		return nil, io.EOF
	}
	return &Enumerator{t: t, pos: -1}, nil
}

// SeekLast returns an Enumerator positioned after the largest key.
func (t *Tree) SeekLast() (*Enumerator, error) {
	if len(t.entries) == 0 {
		return nil, io.EOF
	}
	return &Enumerator{t: t, pos: len(t.entries)}, nil
}

// Seek returns an Enumerator positioned at (or just past, if k is absent)
// k, ready to walk forward with Next.
func (t *Tree) Seek(k int64) (*Enumerator, error) {
	i, ok := t.search(k)
	if !ok {
		return &Enumerator{t: t, pos: i - 1}, nil
	}
	return &Enumerator{t: t, pos: i - 1}, nil
}

// Next advances to and returns the next entry in ascending order.
func (e *Enumerator) Next() (int64, *Primitive, error) {
	e.pos++
	if e.pos < 0 || e.pos >= len(e.t.entries) {
		return 0, nil, io.EOF
	}
	en := e.t.entries[e.pos]
	return en.key, en.val, nil
}

// Prev retreats to and returns the previous entry in descending order.
func (e *Enumerator) Prev() (int64, *Primitive, error) {
	e.pos--
	if e.pos < 0 || e.pos >= len(e.t.entries) {
		return 0, nil, io.EOF
	}
	en := e.t.entries[e.pos]
	return en.key, en.val, nil
}

// Close releases the enumerator. No-op: it holds no resources beyond the
// index into its Tree.
func (e *Enumerator) Close() {}
