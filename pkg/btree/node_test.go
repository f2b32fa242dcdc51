package btree

import (
	"testing"

	"go-btindex/pkg/customerrors"
	"go-btindex/pkg/pager"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func Test_node_Search(t *testing.T) {
	n := newNode(1)
	for i, k := range []uint64{10, 20, 20, 30, 40} {
		n.keys[i] = k
	}
	n.numKeys = 5

	idx, found := n.search(20)
	require.True(t, found)
	require.Equal(t, 1, idx)

	idx, found = n.search(10)
	require.True(t, found)
	require.Equal(t, 0, idx)

	idx, found = n.search(25)
	require.False(t, found)
	require.Equal(t, 3, idx)

	idx, found = n.search(99)
	require.False(t, found)
	require.Equal(t, 5, idx)

	require.Equal(t, 0, n.childIndex(5))
	require.Equal(t, 3, n.childIndex(20))
	require.Equal(t, 4, n.childIndex(30))
	require.Equal(t, 5, n.childIndex(99))
}

func Test_node_InsertEntry(t *testing.T) {
	n := newNode(1)
	for _, k := range []uint64{5, 1, 3, 3, 9} {
		n.insertEntry(k, k*10+uint64(n.numKeys))
	}

	require.Equal(t, 5, n.numKeys)
	require.Equal(t, []uint64{1, 3, 3, 5, 9}, n.keys[:5])
	// the second 3 goes after the first one
	require.Equal(t, []uint64{11, 32, 33, 50, 94}, n.values[:5])
	require.Equal(t, uint64(0), n.keys[5])
	require.True(t, n.isLeaf())
	require.False(t, n.isFull())
}

func Test_node_Binary(t *testing.T) {
	original := newNode(10)
	original.parent = 4
	for i := 0; i < 3; i++ {
		original.insertEntry(uint64(i+1)*100, uint64(i+1))
	}
	original.children[0] = 11
	original.children[1] = 12
	original.children[2] = 13
	original.children[3] = 14

	d, err := original.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, d, pager.BlockSize)
	require.Equal(t, 488, nodeDataSz)
	require.Equal(t, make([]byte, pager.BlockSize-nodeDataSz), d[nodeDataSz:])

	require.Equal(t, uint64(10), bin.Uint64(d[0:8]))
	require.Equal(t, uint64(4), bin.Uint64(d[8:16]))
	require.Equal(t, uint64(3), bin.Uint64(d[16:24]))
	require.Equal(t, uint64(100), bin.Uint64(d[24:32]))
	require.Equal(t, uint64(1), bin.Uint64(d[24+MaxKeys*8:32+MaxKeys*8]))
	require.Equal(t, uint64(11), bin.Uint64(d[24+2*MaxKeys*8:32+2*MaxKeys*8]))

	got := &node{}
	require.NoError(t, got.UnmarshalBinary(d))
	require.Equal(t, original, got)
	require.False(t, got.isLeaf())
}

func Test_node_UnmarshalInvalid(t *testing.T) {
	n := &node{}
	require.Error(t, n.UnmarshalBinary(make([]byte, pager.BlockSize-1)))

	d := make([]byte, pager.BlockSize)
	bin.PutUint64(d[16:24], MaxKeys+1)
	err := n.UnmarshalBinary(d)
	require.True(t, errors.Is(err, customerrors.ErrCorrupt), "got %v", err)
}
