package btree

import (
	"fmt"

	"go-btindex/pkg/customerrors"
	"go-btindex/pkg/pager"

	"github.com/pkg/errors"
)

const (
	// Degree is the minimal degree of the tree.
	Degree      = 10
	MaxKeys     = 2*Degree - 1
	MaxChildren = 2 * Degree

	// block_id + parent + num_keys + keys + values + children
	nodeDataSz = 8 + 8 + 8 + MaxKeys*8 + MaxKeys*8 + MaxChildren*8
)

// node is the in-memory form of a single node block. All slots past
// numKeys (and past numKeys+1 for children) hold 0. Child id 0 means
// "no child" since block 0 is always the header.
type node struct {
	id       uint64
	parent   uint64
	numKeys  int
	keys     [MaxKeys]uint64
	values   [MaxKeys]uint64
	children [MaxChildren]uint64
}

func newNode(id uint64) *node {
	return &node{id: id}
}

// isLeaf returns true if every child slot is empty.
func (n *node) isLeaf() bool {
	for _, c := range n.children {
		if c != 0 {
			return false
		}
	}
	return true
}

func (n *node) isFull() bool {
	return n.numKeys == MaxKeys
}

// search scans keys left to right and returns the first index whose key
// is not less than key, plus whether that key is an exact match.
func (n *node) search(key uint64) (idx int, found bool) {
	for idx < n.numKeys && key > n.keys[idx] {
		idx++
	}
	return idx, idx < n.numKeys && n.keys[idx] == key
}

// childIndex returns the child to descend into when inserting key. Equal
// keys descend to the right of their match.
func (n *node) childIndex(key uint64) int {
	i := n.numKeys - 1
	for i >= 0 && key < n.keys[i] {
		i--
	}
	return i + 1
}

// insertEntry places the pair in sorted position, after any equal keys.
// The node must be a non-full leaf.
func (n *node) insertEntry(key, val uint64) {
	i := n.numKeys - 1
	for i >= 0 && key < n.keys[i] {
		n.keys[i+1] = n.keys[i]
		n.values[i+1] = n.values[i]
		i--
	}

	n.keys[i+1] = key
	n.values[i+1] = val
	n.numKeys++
}

func (n *node) String() string {
	s := "{"
	for i := 0; i < n.numKeys; i++ {
		s += fmt.Sprintf("%d ", n.keys[i])
	}
	s += "} "
	s += fmt.Sprintf("[id=%d, size=%d, leaf=%t]", n.id, n.numKeys, n.isLeaf())
	return s
}

func (n *node) MarshalBinary() ([]byte, error) {
	buf := make([]byte, pager.BlockSize)
	offset := 0

	put := func(v uint64) {
		bin.PutUint64(buf[offset:offset+8], v)
		offset += 8
	}

	put(n.id)
	put(n.parent)
	put(uint64(n.numKeys))

	for _, k := range n.keys {
		put(k)
	}
	for _, v := range n.values {
		put(v)
	}
	for _, c := range n.children {
		put(c)
	}

	return buf, nil
}

func (n *node) UnmarshalBinary(d []byte) error {
	if n == nil {
		return errors.New("cannot unmarshal into nil node")
	} else if len(d) != pager.BlockSize {
		return errors.Errorf("invalid node block size %d", len(d))
	}

	offset := 0
	next := func() uint64 {
		v := bin.Uint64(d[offset : offset+8])
		offset += 8
		return v
	}

	n.id = next()
	n.parent = next()

	numKeys := next()
	if numKeys > MaxKeys {
		return errors.Wrapf(customerrors.ErrCorrupt, "node %d holds %d keys", n.id, numKeys)
	}
	n.numKeys = int(numKeys)

	for i := range n.keys {
		n.keys[i] = next()
	}
	for i := range n.values {
		n.values[i] = next()
	}
	for i := range n.children {
		n.children[i] = next()
	}

	return nil
}
