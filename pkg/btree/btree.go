// Package btree implements an on-disk B-tree mapping unsigned 64-bit keys
// to unsigned 64-bit values. Every node occupies exactly one block of the
// index file and is re-read from disk on each access; every mutation is
// written through immediately.
package btree

import (
	"encoding/binary"
	"fmt"

	"go-btindex/pkg/customerrors"
	"go-btindex/pkg/pager"
	"go-btindex/util/logger"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// bin is the byte order used for all marshals/unmarshals.
var bin = binary.BigEndian

// Pair is a single stored key/value entry.
type Pair struct {
	Key   uint64
	Value uint64
}

func (p Pair) String() string {
	return fmt.Sprintf("%d,%d", p.Key, p.Value)
}

// Create initializes a new, empty index file at fileName.
func Create(fileName string) error {
	return pager.Create(fileName)
}

// Open opens the named index file and returns a B-tree backed by it.
func Open(fileName string) (*BTree, error) {
	p, err := pager.Open(fileName)
	if err != nil {
		return nil, err
	}

	tree := &BTree{
		file:  fileName,
		pager: p,
	}

	if err := tree.open(); err != nil {
		_ = tree.Close()
		return nil, err
	}

	return tree, nil
}

// BTree represents an on-disk B-tree of minimal degree Degree. The
// header (root id, next free id) is kept in meta and written back whenever
// it changes.
type BTree struct {
	file  string
	pager blockStore
	meta  pager.Header
}

// blockStore is the block I/O the tree runs on, implemented by
// *pager.Pager.
type blockStore interface {
	ReadBlock(id uint64) ([]byte, error)
	WriteBlock(id uint64, d []byte) error
	ReadHeader() (pager.Header, error)
	WriteHeader(h pager.Header) error
	Stats() pager.Stats
	Close() error
}

// Search descends from the root and returns the first stored pair whose
// key equals key. Returns ErrKeyNotFound if there is none.
func (tree *BTree) Search(key uint64) (Pair, error) {
	id := tree.meta.RootID
	for id != 0 {
		n, err := tree.fetch(id)
		if err != nil {
			return Pair{}, err
		}

		i, found := n.search(key)
		if found {
			return Pair{Key: n.keys[i], Value: n.values[i]}, nil
		} else if n.isLeaf() {
			break
		}

		id = n.children[i]
	}

	return Pair{}, customerrors.ErrKeyNotFound
}

// Insert adds the pair to the tree. Existing pairs with the same key are
// kept, so inserting a key twice stores it twice. If a write fails the
// in-memory header is reloaded from disk, the blocks already written stay.
func (tree *BTree) Insert(key, val uint64) error {
	saved := tree.meta
	if err := tree.insert(key, val); err != nil {
		tree.resyncMeta(saved)
		return err
	}
	return nil
}

func (tree *BTree) insert(key, val uint64) error {
	if tree.meta.RootID == 0 {
		root := newNode(tree.alloc())
		root.numKeys = 1
		root.keys[0] = key
		root.values[0] = val

		tree.meta.RootID = root.id
		if err := tree.write(root); err != nil {
			return err
		}

		logger.L.WithField("id", root.id).Debug("root created")
		return tree.writeMeta()
	}

	root, err := tree.fetch(tree.meta.RootID)
	if err != nil {
		return err
	}

	if root.isFull() {
		if root, err = tree.grow(root); err != nil {
			return err
		}
	}

	return tree.insertNonFull(root, key, val)
}

// RootID returns the block id of the root node, 0 if the tree is empty.
func (tree *BTree) RootID() uint64 { return tree.meta.RootID }

// NextID returns the id the next allocated node will get.
func (tree *BTree) NextID() uint64 { return tree.meta.NextID }

// Close closes the underlying pager. The header is already on disk since
// every mutation is written through.
func (tree *BTree) Close() error {
	if tree.pager == nil {
		return nil
	}

	err := tree.pager.Close()
	tree.pager = nil
	return err
}

func (tree *BTree) String() string {
	return fmt.Sprintf(
		"BTree{file='%s', root=%d, next=%d, degree=%d}",
		tree.file, tree.meta.RootID, tree.meta.NextID, Degree,
	)
}

// insertNonFull walks down from n, which must not be full, splitting any
// full child before stepping into it, and places the pair in a leaf.
func (tree *BTree) insertNonFull(n *node, key, val uint64) error {
	for !n.isLeaf() {
		i := n.childIndex(key)
		child, err := tree.fetch(n.children[i])
		if err != nil {
			return err
		}

		if child.isFull() {
			if err := tree.splitChild(n, i, child, tree.alloc()); err != nil {
				return err
			}

			if key > n.keys[i] {
				i++
			}

			if child, err = tree.fetch(n.children[i]); err != nil {
				return err
			}
		}

		n = child
	}

	n.insertEntry(key, val)
	return tree.write(n)
}

// grow puts a new root above the full root old and splits old under it.
// The sibling id is reserved before the new root's so the two halves of
// the old root get adjacent ids.
func (tree *BTree) grow(old *node) (*node, error) {
	rightID := tree.alloc()
	root := newNode(tree.alloc())
	root.children[0] = old.id
	old.parent = root.id
	tree.meta.RootID = root.id

	if err := tree.write(old); err != nil {
		return nil, err
	} else if err := tree.write(root); err != nil {
		return nil, err
	} else if err := tree.writeMeta(); err != nil {
		return nil, err
	}

	logger.L.WithFields(logrus.Fields{
		"id":  root.id,
		"old": old.id,
	}).Debug("root grown")

	if err := tree.splitChild(root, 0, old, rightID); err != nil {
		return nil, err
	}
	return root, nil
}

// splitChild splits the full node child, stored at parent.children[index],
// moving its upper half into a new node with id rightID and promoting its
// median into parent. Writes child, right, parent and the header in that
// order.
func (tree *BTree) splitChild(parent *node, index int, child *node, rightID uint64) error {
	if parent.isFull() {
		return errors.Errorf("cannot split child of full node %d", parent.id)
	} else if !child.isFull() {
		return errors.Errorf("cannot split non-full node %d", child.id)
	}

	leaf := child.isLeaf()
	right := newNode(rightID)
	right.parent = parent.id
	right.numKeys = Degree - 1

	for j := 0; j < Degree-1; j++ {
		right.keys[j] = child.keys[j+Degree]
		right.values[j] = child.values[j+Degree]
		child.keys[j+Degree] = 0
		child.values[j+Degree] = 0
	}

	if !leaf {
		for j := 0; j < Degree; j++ {
			right.children[j] = child.children[j+Degree]
			child.children[j+Degree] = 0
		}
	}

	for j := parent.numKeys; j > index; j-- {
		parent.children[j+1] = parent.children[j]
	}
	parent.children[index+1] = right.id

	for j := parent.numKeys - 1; j >= index; j-- {
		parent.keys[j+1] = parent.keys[j]
		parent.values[j+1] = parent.values[j]
	}

	parent.keys[index] = child.keys[Degree-1]
	parent.values[index] = child.values[Degree-1]
	parent.numKeys++

	child.keys[Degree-1] = 0
	child.values[Degree-1] = 0
	child.numKeys = Degree - 1

	logger.L.WithFields(logrus.Fields{
		"id":     child.id,
		"right":  right.id,
		"parent": parent.id,
		"key":    parent.keys[index],
	}).Debug("node split")

	if err := tree.write(child); err != nil {
		return err
	} else if err := tree.write(right); err != nil {
		return err
	} else if err := tree.write(parent); err != nil {
		return err
	}
	return tree.writeMeta()
}

// alloc hands out the next block id. The header must be written by the
// caller once the allocating operation is done.
func (tree *BTree) alloc() uint64 {
	id := tree.meta.NextID
	tree.meta.NextID++
	return id
}

func (tree *BTree) fetch(id uint64) (*node, error) {
	if id == 0 {
		return nil, errors.Wrap(customerrors.ErrCorrupt, "reference to block 0")
	}

	d, err := tree.pager.ReadBlock(id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch node %d", id)
	}

	n := &node{}
	if err := n.UnmarshalBinary(d); err != nil {
		return nil, errors.Wrapf(err, "failed to decode node %d", id)
	}
	return n, nil
}

func (tree *BTree) write(n *node) error {
	d, err := n.MarshalBinary()
	if err != nil {
		return errors.Wrapf(err, "failed to encode node %d", n.id)
	}
	return errors.Wrapf(tree.pager.WriteBlock(n.id, d), "failed to write node %d", n.id)
}

func (tree *BTree) writeMeta() error {
	return tree.pager.WriteHeader(tree.meta)
}

// resyncMeta makes meta match the header on disk after a failed mutation.
// saved is used when the header cannot be read back either.
func (tree *BTree) resyncMeta(saved pager.Header) {
	h, err := tree.pager.ReadHeader()
	if err != nil {
		logger.L.WithError(err).Warn("failed to reload header, keeping previous one")
		tree.meta = saved
		return
	}
	tree.meta = h
}

// open loads the header into meta.
func (tree *BTree) open() error {
	h, err := tree.pager.ReadHeader()
	if err != nil {
		return errors.Wrap(err, "failed to read meta while opening btree")
	}

	if h.NextID == 0 {
		return errors.Wrapf(customerrors.ErrCorrupt, "next id is 0 in '%s'", tree.file)
	} else if h.RootID >= h.NextID {
		return errors.Wrapf(customerrors.ErrCorrupt, "root id %d beyond next id %d", h.RootID, h.NextID)
	}

	tree.meta = h
	return nil
}
