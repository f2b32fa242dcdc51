package pager

import (
	"bytes"

	"go-btindex/pkg/customerrors"

	"github.com/pkg/errors"
)

// Magic identifies the index file format. It occupies the first 8 bytes
// of the header block.
var Magic = [8]byte{'4', '3', '4', '8', 'P', 'R', 'J', '3'}

// headerSize is the number of meaningful bytes in the header block, the
// rest of the block is zero padding.
const headerSize = 24

// Header is the content of block 0.
type Header struct {
	// RootID is the block id of the root node, 0 while the tree is empty.
	RootID uint64

	// NextID is the next unused block id. Ids are never reused.
	NextID uint64
}

func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, BlockSize)
	copy(buf[0:8], Magic[:])
	bin.PutUint64(buf[8:16], h.RootID)
	bin.PutUint64(buf[16:24], h.NextID)
	return buf, nil
}

func (h *Header) UnmarshalBinary(d []byte) error {
	if h == nil {
		return errors.New("cannot unmarshal into nil header")
	} else if len(d) < headerSize || !bytes.Equal(d[0:8], Magic[:]) {
		return customerrors.ErrInvalidFormat
	}

	h.RootID = bin.Uint64(d[8:16])
	h.NextID = bin.Uint64(d[16:24])
	return nil
}
