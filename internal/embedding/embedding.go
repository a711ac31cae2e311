// Package embedding loads the query embedding table used to prefix the
// model input: language id, event/emotion, and ITN rows are each a single
// row lookup into this table.
package embedding

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/orangepi5/micasr/internal/errors"
)

// Table is a dense [numRows][dim]float32 embedding matrix stored row-major.
type Table struct {
	rows [][]float32
	dim  int
}

// Load reads a raw little-endian float32 embedding table from path. The
// file format is a 4-byte row count, a 4-byte dimension, then
// rows*dim float32 values — a minimal binary layout standing in for the
// original numpy .npy table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).Component("embedding").Category(errors.CategoryInit).
			Context("path", path).Build()
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var numRows, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &numRows); err != nil {
		return nil, errors.New(err).Component("embedding").Category(errors.CategoryInit).Build()
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, errors.New(err).Component("embedding").Category(errors.CategoryInit).Build()
	}

	rows := make([][]float32, numRows)
	for i := range rows {
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, &row); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, errors.New(err).Component("embedding").Category(errors.CategoryInit).
					Context("row", i).Build()
			}
			return nil, errors.New(err).Component("embedding").Category(errors.CategoryInit).Build()
		}
		rows[i] = row
	}

	return &Table{rows: rows, dim: int(dim)}, nil
}

// NewForTest builds a Table directly from in-memory rows, bypassing Load,
// for use in unit tests that don't want to touch the filesystem.
func NewForTest(rows [][]float32) *Table {
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	return &Table{rows: rows, dim: dim}
}

// Dim returns the embedding row width.
func (t *Table) Dim() int { return t.dim }

// Row returns the embedding row at index, or nil if out of range.
func (t *Table) Row(index int) []float32 {
	if index < 0 || index >= len(t.rows) {
		return nil
	}
	return t.rows[index]
}
