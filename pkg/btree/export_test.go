package btree

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go-btindex/pkg/customerrors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWritePairs(t *testing.T) {
	tree, _ := newTree(t)
	for _, p := range []Pair{{3, 30}, {1, 10}, {2, 20}, {2, 5}} {
		require.NoError(t, tree.Insert(p.Key, p.Value))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, tree.WritePairs(buf))
	require.Equal(t, "1,10\n2,5\n2,20\n3,30\n", buf.String())

	again := &bytes.Buffer{}
	require.NoError(t, tree.WritePairs(again))
	require.Equal(t, buf.String(), again.String())
}

func TestExtract(t *testing.T) {
	tree, _ := newTree(t)
	for k := uint64(40); k > 0; k-- {
		require.NoError(t, tree.Insert(k, k*k))
	}

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, tree.Extract(out))

	expected := &bytes.Buffer{}
	require.NoError(t, tree.WritePairs(expected))

	d, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, expected.String(), string(d))
}

func TestExtract_AlreadyExists(t *testing.T) {
	tree, _ := newTree(t)
	require.NoError(t, tree.Insert(1, 1))

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(out, []byte("existing"), 0644))

	err := tree.Extract(out)
	require.True(t, errors.Is(err, customerrors.ErrAlreadyExists), "got %v", err)

	d, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "existing", string(d))
}
