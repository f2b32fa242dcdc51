package btree

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go-btindex/pkg/customerrors"
	"go-btindex/util/helpers"
	"go-btindex/util/logger"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// AllPairs returns every stored pair sorted by key, then value. It reads
// each allocated block rather than walking the tree, which relies on nodes
// never being freed.
func (tree *BTree) AllPairs() ([]Pair, error) {
	pairs := []Pair{}
	for id := uint64(1); id < tree.meta.NextID; id++ {
		n, err := tree.fetch(id)
		if err != nil {
			return nil, err
		}

		for i := 0; i < n.numKeys; i++ {
			pairs = append(pairs, Pair{Key: n.keys[i], Value: n.values[i]})
		}
	}

	slices.SortFunc(pairs, func(a, b Pair) int {
		if cmp := helpers.Compare(a.Key, b.Key); cmp != 0 {
			return cmp
		}
		return helpers.Compare(a.Value, b.Value)
	})
	return pairs, nil
}

// WritePairs writes all pairs to w as "key,value" lines in ascending order.
func (tree *BTree) WritePairs(w io.Writer) error {
	pairs, err := tree.AllPairs()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(bw, "%d,%d\n", p.Key, p.Value); err != nil {
			return errors.Wrap(err, "failed to write pair")
		}
	}
	return errors.Wrap(bw.Flush(), "failed to flush pairs")
}

// Extract writes all pairs into a new file at path. An existing file is
// never touched: ErrAlreadyExists is returned instead.
func (tree *BTree) Extract(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(customerrors.ErrAlreadyExists, "'%s'", path)
		}
		return errors.Wrapf(err, "failed to create '%s'", path)
	}

	if err := tree.WritePairs(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	logger.L.WithField("file", path).Debug("pairs extracted")
	return errors.Wrapf(f.Close(), "failed to close '%s'", path)
}
