// Package pager implements fixed size block I/O over a single index file.
// Block 0 is reserved for the header; every other block id maps to the file
// offset id * BlockSize.
package pager

import (
	"encoding/binary"
	"io"
	"os"

	"go-btindex/pkg/customerrors"
	"go-btindex/util/logger"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BlockSize is the size of every block in the file, header included.
const BlockSize = 512

// maxBlockID keeps id * BlockSize inside int64 file offsets.
const maxBlockID = uint64(1<<63-1) / BlockSize

// bin is the byte order used for all marshals/unmarshals.
var bin = binary.BigEndian

// Stats holds block I/O counters collected since the pager was opened.
type Stats struct {
	Reads  uint64
	Writes uint64
}

// Pager reads and writes whole blocks of an index file.
type Pager struct {
	file  *os.File
	path  string
	stats Stats
}

// Create initializes a new index file holding only the header block
// (root id 0, next id 1). It fails with ErrAlreadyExists when something is
// already present at path.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(customerrors.ErrAlreadyExists, "'%s'", path)
		}
		return errors.Wrapf(err, "failed to create '%s'", path)
	}

	p := &Pager{file: f, path: path}
	if err := p.WriteHeader(Header{RootID: 0, NextID: 1}); err != nil {
		_ = f.Close()
		return err
	}

	logger.L.WithField("file", path).Debug("index file created")
	return p.Close()
}

// Open opens an existing index file for reading and writing. The header
// block is validated against the magic signature.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open '%s'", path)
	}

	p := &Pager{file: f, path: path}
	h, err := p.ReadHeader()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	logger.L.WithFields(logrus.Fields{
		"file": path,
		"root": h.RootID,
		"next": h.NextID,
	}).Debug("index file opened")
	return p, nil
}

// ReadBlock returns the full contents of block id.
func (p *Pager) ReadBlock(id uint64) ([]byte, error) {
	if id > maxBlockID {
		return nil, errors.Errorf("block id %d out of range", id)
	}

	buf := make([]byte, BlockSize)
	n, err := p.file.ReadAt(buf, int64(id)*BlockSize)
	if n < BlockSize {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "failed to read block %d", id)
	}

	p.stats.Reads++
	return buf, nil
}

// WriteBlock overwrites block id with d, which must be exactly BlockSize
// bytes long.
func (p *Pager) WriteBlock(id uint64, d []byte) error {
	if len(d) != BlockSize {
		return errors.Errorf("invalid block size %d (expected: %d)", len(d), BlockSize)
	} else if id > maxBlockID {
		return errors.Errorf("block id %d out of range", id)
	}

	if _, err := p.file.WriteAt(d, int64(id)*BlockSize); err != nil {
		return errors.Wrapf(err, "failed to write block %d", id)
	}

	p.stats.Writes++
	return nil
}

// ReadHeader reads and decodes block 0. A short header block or a magic
// mismatch is reported as ErrInvalidFormat.
func (p *Pager) ReadHeader() (Header, error) {
	h := Header{}
	d, err := p.ReadBlock(0)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return h, errors.Wrapf(customerrors.ErrInvalidFormat, "'%s'", p.path)
		}
		return h, err
	}

	if err := h.UnmarshalBinary(d); err != nil {
		return h, errors.Wrapf(err, "'%s'", p.path)
	}
	return h, nil
}

func (p *Pager) WriteHeader(h Header) error {
	d, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	return errors.Wrap(p.WriteBlock(0, d), "failed to write header")
}

func (p *Pager) Stats() Stats { return p.stats }

// Close closes the underlying file. Calling Close twice is a no-op.
func (p *Pager) Close() error {
	if p.file == nil {
		return nil
	}

	err := p.file.Close()
	p.file = nil
	return errors.Wrapf(err, "failed to close '%s'", p.path)
}
