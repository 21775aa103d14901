package rank

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Precision is the number of decimals in every rendered weight.
const Precision = 5

// Scored is one ranked entry of a weight vector.
type Scored struct {
	Index int
	Value float64
}

// String renders "<index>: <value>".
func (s Scored) String() string {
	return strconv.Itoa(s.Index) + ": " + FormatValue(s.Value)
}

// FormatValue renders v with exactly Precision decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', Precision, 64)
}

// before reports whether a ranks ahead of b: higher value first, then lower
// index. NaN ranks after every number.
func before(a, b Scored) bool {
	an, bn := math.IsNaN(a.Value), math.IsNaN(b.Value)
	switch {
	case an && bn:
		return a.Index < b.Index
	case an:
		return false
	case bn:
		return true
	case a.Value != b.Value:
		return a.Value > b.Value
	default:
		return a.Index < b.Index
	}
}

// TopK returns the k highest weights in descending order, ties broken by
// ascending index. If k exceeds len(weights) the whole vector is returned
// sorted. k == 0 yields an empty result.
func TopK(weights []float64, k int) ([]Scored, error) {
	if k < 0 {
		return nil, fmt.Errorf("top-k: k=%d: %w", k, internalerr.ErrInvalidInput)
	}
	if k == 0 {
		return []Scored{}, nil
	}
	if len(weights) == 0 {
		return nil, internalerr.ErrEmptyWeightVector
	}

	if k >= len(weights) {
		out := make([]Scored, len(weights))
		for i, w := range weights {
			out[i] = Scored{Index: i, Value: w}
		}
		sort.Slice(out, func(i, j int) bool { return before(out[i], out[j]) })
		return out, nil
	}

	// Bounded heap whose root is the worst entry kept so far.
	h := make(worstFirst, 0, k)
	for i, w := range weights {
		s := Scored{Index: i, Value: w}
		if len(h) < k {
			heap.Push(&h, s)
			continue
		}
		if before(s, h[0]) {
			h[0] = s
			heap.Fix(&h, 0)
		}
	}

	out := []Scored(h)
	sort.Slice(out, func(i, j int) bool { return before(out[i], out[j]) })
	return out, nil
}

// TopKRow ranks row i of m.
func TopKRow(m mat.Matrix, i, k int) ([]Scored, error) {
	_, c := m.Dims()
	if c == 0 {
		return TopK(nil, k)
	}
	return TopK(mat.Row(nil, i, m), k)
}

type worstFirst []Scored

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return before(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(Scored)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
