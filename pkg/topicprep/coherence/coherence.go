// Package coherence scores topics by how often their top terms share
// documents, using normalized pointwise mutual information (NPMI) over the
// document-term matrix.
package coherence

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/dtm"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/rank"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// DefaultEpsilon smooths the joint probability of pairs that never co-occur.
const DefaultEpsilon = 1e-12

// Calculator computes NPMI from document counts.
type Calculator struct {
	epsilon float64
}

// NewCalculator creates a calculator; epsilon <= 0 selects DefaultEpsilon.
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Calculator{epsilon: epsilon}
}

// NPMI of terms a and b over n documents:
//
//	NPMI(a,b) = log((P(a,b)+ε) / (P(a)P(b))) / -log(P(a,b)+ε)
//
// The result lies in [-1, 1]; 0 is returned when either term never occurs.
func (c *Calculator) NPMI(nAB, nA, nB, n int) float64 {
	if n == 0 || nA == 0 || nB == 0 {
		return 0
	}
	N := float64(n)
	pAB := float64(nAB)/N + c.epsilon
	if pAB >= 1 {
		return 1
	}
	pmi := math.Log(pAB / ((float64(nA) / N) * (float64(nB) / N)))
	return pmi / -math.Log(pAB)
}

// Counts holds document frequencies and pairwise co-document counts for a
// fixed set of term ids.
type Counts struct {
	Docs int
	df   map[int]int
	pair map[[2]int]int
}

// Count scans m once, counting only the given term ids.
func Count(m *dtm.Matrix, ids []int) *Counts {
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	docs, _ := m.Dims()
	c := &Counts{Docs: docs, df: make(map[int]int), pair: make(map[[2]int]int)}
	present := make([]int, 0, len(ids))
	for d := 0; d < docs; d++ {
		present = present[:0]
		// Row entries are sorted by term, so present is sorted too.
		for _, e := range m.Row(d) {
			if _, ok := want[e.Term]; ok {
				present = append(present, e.Term)
			}
		}
		for i, a := range present {
			c.df[a]++
			for _, b := range present[i+1:] {
				c.pair[[2]int{a, b}]++
			}
		}
	}
	return c
}

// DF returns the number of documents containing id.
func (c *Counts) DF(id int) int { return c.df[id] }

// Pair returns the number of documents containing both a and b.
func (c *Counts) Pair(a, b int) int {
	if a > b {
		a, b = b, a
	}
	return c.pair[[2]int{a, b}]
}

// Topic is the coherence of one topic's top terms.
type Topic struct {
	Topic int      `json:"topic"`
	Score float64  `json:"score"`
	Terms []string `json:"terms"`
}

// Score ranks the top k terms of every topic row of topicWord and returns the
// mean NPMI over all pairs of them. Topics with fewer than two terms score 0.
func (c *Calculator) Score(m *dtm.Matrix, v *vocab.Vocabulary, topicWord mat.Matrix, k int) ([]Topic, error) {
	topics, _ := topicWord.Dims()

	tops := make([][]rank.Scored, topics)
	var ids []int
	for t := 0; t < topics; t++ {
		top, err := rank.TopKRow(topicWord, t, k)
		if errors.Is(err, internalerr.ErrEmptyWeightVector) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("coherence topic %d: %w", t, err)
		}
		tops[t] = top
		for _, s := range top {
			ids = append(ids, s.Index)
		}
	}

	counts := Count(m, ids)
	out := make([]Topic, topics)
	for t, top := range tops {
		out[t] = Topic{Topic: t, Terms: make([]string, len(top))}
		for i, s := range top {
			out[t].Terms[i], _ = v.Term(s.Index)
		}

		var sum float64
		pairs := 0
		for i := 0; i < len(top); i++ {
			for j := i + 1; j < len(top); j++ {
				a, b := top[i].Index, top[j].Index
				sum += c.NPMI(counts.Pair(a, b), counts.DF(a), counts.DF(b), counts.Docs)
				pairs++
			}
		}
		if pairs > 0 {
			out[t].Score = sum / float64(pairs)
		}
	}
	return out, nil
}

// Mean averages the scores of topics.
func Mean(topics []Topic) float64 {
	if len(topics) == 0 {
		return 0
	}
	var sum float64
	for _, t := range topics {
		sum += t.Score
	}
	return sum / float64(len(topics))
}
