package dtm

import (
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Entry is one non-zero cell of a matrix row.
type Entry struct {
	Term  int
	Count uint32
}

// Matrix is a documents × terms count matrix in compressed sparse row layout.
// Row d spans cols[rowPtr[d]:rowPtr[d+1]]; columns within a row are ascending.
// It implements mat.Matrix without materializing the dense table.
type Matrix struct {
	nrow   int
	ncol   int
	rowPtr []int
	cols   []int
	counts []uint32
}

var _ mat.Matrix = (*Matrix)(nil)

func newMatrix(ncol int) *Matrix {
	return &Matrix{
		ncol:   ncol,
		rowPtr: []int{0},
	}
}

// appendRow adds the next row. entries must be sorted by term.
func (m *Matrix) appendRow(entries []Entry) {
	for _, e := range entries {
		m.cols = append(m.cols, e.Term)
		m.counts = append(m.counts, e.Count)
	}
	m.rowPtr = append(m.rowPtr, len(m.cols))
	m.nrow++
}

// Dims returns (documents, terms).
func (m *Matrix) Dims() (int, int) {
	return m.nrow, m.ncol
}

// At returns cell (d, t) as a float64, as required by mat.Matrix.
func (m *Matrix) At(d, t int) float64 {
	return float64(m.Count(d, t))
}

// T returns the transpose (terms × documents).
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Count returns the number of occurrences of term t in document d.
// It panics if (d, t) is out of range, like the gonum matrices.
func (m *Matrix) Count(d, t int) uint32 {
	if d < 0 || d >= m.nrow || t < 0 || t >= m.ncol {
		panic(mat.ErrIndexOutOfRange)
	}
	lo, hi := m.rowPtr[d], m.rowPtr[d+1]
	cols := m.cols[lo:hi]
	i := sort.SearchInts(cols, t)
	if i < len(cols) && cols[i] == t {
		return m.counts[lo+i]
	}
	return 0
}

// Row returns the non-zero entries of document d in term order.
func (m *Matrix) Row(d int) []Entry {
	if d < 0 || d >= m.nrow {
		panic(mat.ErrRowAccess)
	}
	lo, hi := m.rowPtr[d], m.rowPtr[d+1]
	out := make([]Entry, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, Entry{Term: m.cols[i], Count: m.counts[i]})
	}
	return out
}

// RowSum returns the total counted tokens of document d.
func (m *Matrix) RowSum(d int) uint64 {
	if d < 0 || d >= m.nrow {
		panic(mat.ErrRowAccess)
	}
	var sum uint64
	for _, c := range m.counts[m.rowPtr[d]:m.rowPtr[d+1]] {
		sum += uint64(c)
	}
	return sum
}

// NNZ returns the number of non-zero cells.
func (m *Matrix) NNZ() int {
	return len(m.cols)
}

// TermTotals returns the corpus frequency of every term.
func (m *Matrix) TermTotals() []uint64 {
	totals := make([]uint64, m.ncol)
	for i, t := range m.cols {
		totals[t] += uint64(m.counts[i])
	}
	return totals
}

// DocFreq returns, for every term, the number of documents containing it.
func (m *Matrix) DocFreq() []int {
	df := make([]int, m.ncol)
	for _, t := range m.cols {
		df[t]++
	}
	return df
}

// Equal reports whether both matrices have the same shape and cells.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.nrow != other.nrow || m.ncol != other.ncol {
		return false
	}
	if len(m.cols) != len(other.cols) {
		return false
	}
	for i := range m.rowPtr {
		if m.rowPtr[i] != other.rowPtr[i] {
			return false
		}
	}
	for i := range m.cols {
		if m.cols[i] != other.cols[i] || m.counts[i] != other.counts[i] {
			return false
		}
	}
	return true
}

// TermDoc returns the terms × documents transpose as a compressed sparse
// column matrix. Each document becomes a column; the row layout of m maps onto
// it directly, so nothing is re-sorted.
func (m *Matrix) TermDoc() *sparse.CSC {
	indptr := make([]int, len(m.rowPtr))
	copy(indptr, m.rowPtr)
	ind := make([]int, len(m.cols))
	copy(ind, m.cols)
	data := make([]float64, len(m.counts))
	for i, c := range m.counts {
		data[i] = float64(c)
	}
	return sparse.NewCSC(m.ncol, m.nrow, indptr, ind, data)
}

// Dense materializes the matrix. Only meant for small corpora and tests.
func (m *Matrix) Dense() *mat.Dense {
	if m.nrow == 0 || m.ncol == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(m.nrow, m.ncol, nil)
	for r := 0; r < m.nrow; r++ {
		for i := m.rowPtr[r]; i < m.rowPtr[r+1]; i++ {
			d.Set(r, m.cols[i], float64(m.counts[i]))
		}
	}
	return d
}
