package pager

import (
	"os"
	"path/filepath"
	"testing"

	"go-btindex/pkg/customerrors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.idx")
	require.NoError(t, Create(path))

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, d, BlockSize)
	require.Equal(t, []byte("4348PRJ3"), d[0:8])
	require.Equal(t, uint64(0), bin.Uint64(d[8:16]))
	require.Equal(t, uint64(1), bin.Uint64(d[16:24]))
	require.Equal(t, make([]byte, BlockSize-headerSize), d[headerSize:])
}

func TestCreate_AlreadyExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.idx")
	require.NoError(t, os.WriteFile(path, []byte("keep me"), 0644))

	err := Create(path)
	require.True(t, errors.Is(err, customerrors.ErrAlreadyExists), "got %v", err)

	d, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "keep me", string(d))
}

func TestOpen_InvalidFormat(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(short, []byte("4348"), 0644))
	_, err := Open(short)
	require.True(t, errors.Is(err, customerrors.ErrInvalidFormat), "got %v", err)

	wrong := filepath.Join(dir, "wrong")
	buf := make([]byte, BlockSize)
	copy(buf, "NOTMAGIC")
	require.NoError(t, os.WriteFile(wrong, buf, 0644))
	_, err = Open(wrong)
	require.True(t, errors.Is(err, customerrors.ErrInvalidFormat), "got %v", err)

	_, err = Open(filepath.Join(dir, "missing"))
	require.Error(t, err)
	require.False(t, errors.Is(err, customerrors.ErrInvalidFormat))
}

func TestHeader_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.idx")
	require.NoError(t, Create(path))

	p, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, p.WriteHeader(Header{RootID: 7, NextID: 42}))
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p, err = Open(path)
	require.NoError(t, err)
	defer p.Close()

	h, err := p.ReadHeader()
	require.NoError(t, err)
	require.Equal(t, Header{RootID: 7, NextID: 42}, h)
}

func TestBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.idx")
	require.NoError(t, Create(path))

	p, err := Open(path)
	require.NoError(t, err)
	defer p.Close()

	block := make([]byte, BlockSize)
	for i := range block {
		block[i] = byte(i)
	}
	require.NoError(t, p.WriteBlock(2, block))

	got, err := p.ReadBlock(2)
	require.NoError(t, err)
	require.Equal(t, block, got)

	// block 1 was never written but lies before block 2, so it reads as zeros
	got, err = p.ReadBlock(1)
	require.NoError(t, err)
	require.Equal(t, make([]byte, BlockSize), got)

	_, err = p.ReadBlock(3)
	require.Error(t, err)

	require.Error(t, p.WriteBlock(3, block[:BlockSize-1]))
	require.Error(t, p.WriteBlock(3, append(block, 0)))

	st := p.Stats()
	require.Equal(t, uint64(1), st.Writes)
	// header read on open plus the two successful block reads
	require.Equal(t, uint64(3), st.Reads)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(3*BlockSize), fi.Size())
}
