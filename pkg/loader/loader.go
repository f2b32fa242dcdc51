// Package loader bulk-inserts pairs read from comma delimited text, one
// "key,value" row per line.
package loader

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"go-btindex/pkg/customerrors"
	"go-btindex/util/helpers"
	"go-btindex/util/logger"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Inserter is the part of the index the loader needs.
type Inserter interface {
	Insert(key, val uint64) error
}

// LoadFile opens path and loads it into tree.
func LoadFile(ctx context.Context, tree Inserter, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open '%s'", path)
	}
	defer f.Close()

	n, err := Load(ctx, tree, f)
	return n, errors.Wrapf(err, "'%s'", path)
}

// Load inserts every row of r into tree in order and returns the number of
// pairs inserted. Rows inserted before a failure stay in the tree.
func Load(ctx context.Context, tree Inserter, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return count, errors.Wrapf(customerrors.ErrMalformedInput, "%v", err)
		}

		if isBlank(row) {
			continue
		}

		line, _ := cr.FieldPos(0)
		if len(row) != 2 {
			return count, errors.Wrapf(
				customerrors.ErrMalformedInput,
				"line %d: expected 2 fields, got %d", line, len(row),
			)
		}

		key, err := helpers.ParseUnsigned[uint64](row[0])
		if err != nil {
			return count, errors.Wrapf(customerrors.ErrMalformedInput, "line %d: key '%s'", line, row[0])
		}

		val, err := helpers.ParseUnsigned[uint64](row[1])
		if err != nil {
			return count, errors.Wrapf(customerrors.ErrMalformedInput, "line %d: value '%s'", line, row[1])
		}

		if err := tree.Insert(key, val); err != nil {
			return count, errors.Wrapf(err, "line %d", line)
		}
		count++
	}

	logger.L.WithFields(logrus.Fields{"pairs": count}).Info("bulk load finished")
	return count, nil
}

// isBlank reports whether every field of row is whitespace only.
func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
