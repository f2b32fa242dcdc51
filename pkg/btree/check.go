package btree

import (
	"go-btindex/pkg/customerrors"
	"go-btindex/pkg/stack"

	"github.com/pkg/errors"
)

// Report summarizes a successful consistency check.
type Report struct {
	Nodes  int
	Pairs  int
	Height int
}

// frame is a node waiting to be visited along with the key range its
// ancestors allow. Bounds are inclusive since equal keys may sit on both
// sides of a separator.
type frame struct {
	id           uint64
	depth        int
	lo, hi       uint64
	hasLo, hasHi bool
}

// Check walks the whole tree from the root and verifies the structural
// invariants. The first violation is returned wrapped around ErrCorrupt.
func (tree *BTree) Check() (Report, error) {
	rep := Report{}
	if tree.meta.RootID == 0 {
		if tree.meta.NextID != 1 {
			return rep, corrupt(0, "empty tree with next id %d", tree.meta.NextID)
		}
		return rep, nil
	}

	seen := map[uint64]bool{}
	leafDepth := -1

	s := stack.New[frame](16)
	s.Push(frame{id: tree.meta.RootID, depth: 1})

	for s.Size() > 0 {
		f := s.Pop()
		if f.id == 0 || f.id >= tree.meta.NextID {
			return rep, corrupt(f.id, "child id out of range (next id %d)", tree.meta.NextID)
		} else if seen[f.id] {
			return rep, corrupt(f.id, "reached twice")
		}
		seen[f.id] = true

		n, err := tree.fetch(f.id)
		if err != nil {
			return rep, err
		}

		if err := tree.checkNode(n, f); err != nil {
			return rep, err
		}

		rep.Nodes++
		rep.Pairs += n.numKeys

		if n.isLeaf() {
			if leafDepth == -1 {
				leafDepth = f.depth
			} else if leafDepth != f.depth {
				return rep, corrupt(n.id, "leaf at depth %d, expected %d", f.depth, leafDepth)
			}
			continue
		}

		for i := n.numKeys; i >= 0; i-- {
			cf := frame{id: n.children[i], depth: f.depth + 1, lo: f.lo, hi: f.hi, hasLo: f.hasLo, hasHi: f.hasHi}
			if i > 0 {
				cf.lo, cf.hasLo = n.keys[i-1], true
			}
			if i < n.numKeys {
				cf.hi, cf.hasHi = n.keys[i], true
			}
			s.Push(cf)
		}
	}

	if uint64(rep.Nodes) != tree.meta.NextID-1 {
		return rep, corrupt(0, "%d nodes reachable, %d allocated", rep.Nodes, tree.meta.NextID-1)
	}

	rep.Height = leafDepth
	return rep, nil
}

func (tree *BTree) checkNode(n *node, f frame) error {
	if n.id != f.id {
		return corrupt(f.id, "stored block id %d", n.id)
	}

	if f.id == tree.meta.RootID {
		if n.numKeys < 1 {
			return corrupt(n.id, "empty root")
		}
	} else if n.numKeys < Degree-1 {
		return corrupt(n.id, "%d keys, minimum is %d", n.numKeys, Degree-1)
	}

	for i := 0; i < n.numKeys; i++ {
		k := n.keys[i]
		if i > 0 && k < n.keys[i-1] {
			return corrupt(n.id, "keys out of order at %d", i)
		} else if (f.hasLo && k < f.lo) || (f.hasHi && k > f.hi) {
			return corrupt(n.id, "key %d outside of parent range", k)
		}
	}

	for i := n.numKeys; i < MaxKeys; i++ {
		if n.keys[i] != 0 || n.values[i] != 0 {
			return corrupt(n.id, "unused slot %d is not zeroed", i)
		}
	}

	if n.isLeaf() {
		return nil
	}

	for i := 0; i < MaxChildren; i++ {
		if i <= n.numKeys && n.children[i] == 0 {
			return corrupt(n.id, "missing child %d", i)
		} else if i > n.numKeys && n.children[i] != 0 {
			return corrupt(n.id, "unexpected child %d", i)
		}
	}
	return nil
}

func corrupt(id uint64, format string, args ...interface{}) error {
	return errors.Wrapf(
		errors.Wrapf(customerrors.ErrCorrupt, format, args...),
		"node %d", id,
	)
}
