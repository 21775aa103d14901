package dtm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

func mustVocab(t *testing.T, terms ...string) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.FromTerms(terms...)
	require.NoError(t, err)
	return v
}

func TestBuildRowSumExcludesFilteredTokens(t *testing.T) {
	src := corpus.NewMemorySource(" ", "a a bb")
	v, err := vocab.Build(context.Background(), src, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"bb"}, v.Terms())

	m, err := Build(context.Background(), src, v)
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, uint32(1), m.Count(0, 0))
	assert.Equal(t, uint64(1), m.RowSum(0))
}

func TestBuildCounts(t *testing.T) {
	v := mustVocab(t, "vr", "quest", "rift", "sound")
	src := corpus.NewMemorySource(" ",
		"vr quest vr unknown vr",
		"sound",
		",",
		"rift quest rift",
	)

	m, err := Build(context.Background(), src, v)
	require.NoError(t, err)

	r, c := m.Dims()
	require.Equal(t, 4, r)
	require.Equal(t, 4, c)

	assert.Equal(t, []Entry{{Term: 0, Count: 3}, {Term: 1, Count: 1}}, m.Row(0))
	assert.Equal(t, []Entry{{Term: 3, Count: 1}}, m.Row(1))
	assert.Empty(t, m.Row(2), "a document without vocabulary terms keeps an all-zero row")
	assert.Equal(t, uint64(0), m.RowSum(2))
	assert.Equal(t, []Entry{{Term: 1, Count: 1}, {Term: 2, Count: 2}}, m.Row(3))

	assert.Equal(t, 5, m.NNZ())
	assert.Equal(t, 2.0, m.At(3, 2))
	assert.Equal(t, 0.0, m.At(1, 0))
	assert.Equal(t, []uint64{3, 2, 2, 1}, m.TermTotals())
	assert.Equal(t, []int{1, 2, 1, 1}, m.DocFreq())
}

func TestBuildRowSumProperty(t *testing.T) {
	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf("t%d t%d x %d t%d oov%d", i%5, i%3, i, i%5, i))
	}
	src := corpus.NewMemorySource(" ", lines...)
	v := mustVocab(t, "t0", "t1", "t2", "t3", "t4")

	m, err := Build(context.Background(), src, v)
	require.NoError(t, err)

	err = src.Walk(context.Background(), func(d corpus.Document) error {
		want := 0
		for _, tok := range d.Tokens {
			if vocab.DefaultPredicate(tok) && v.Contains(tok) {
				want++
			}
		}
		assert.Equal(t, uint64(want), m.RowSum(d.Index), "row %d", d.Index)
		return nil
	})
	require.NoError(t, err)
}

func TestBuildIsIdempotent(t *testing.T) {
	src := corpus.NewMemorySource(" ", "d c b a", "a a a", "z", "b d b d")
	v := mustVocab(t, "a", "b", "c", "d")

	first, err := Build(context.Background(), src, v)
	require.NoError(t, err)
	second, err := Build(context.Background(), src, v)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first, second)
}

func TestBuildOverflow(t *testing.T) {
	v := mustVocab(t, "vr", "quest")
	src := corpus.NewMemorySource(" ", "vr quest", "quest vr vr vr")

	_, err := Build(context.Background(), src, v, Options{MaxCount: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, internalerr.ErrCountOverflow)

	var overflow *CountOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 1, overflow.Doc)
	assert.Equal(t, "vr", overflow.Term)
}

func TestBuildNilVocabulary(t *testing.T) {
	_, err := Build(context.Background(), corpus.NewMemorySource(" "), nil)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestBuildEmptyCorpus(t *testing.T) {
	m, err := Build(context.Background(), corpus.NewMemorySource(" "), mustVocab(t, "vr"))
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 0, r)
	assert.Equal(t, 1, c)
	assert.Equal(t, 0, m.NNZ())
}

func TestMatrixImplementsGonum(t *testing.T) {
	v := mustVocab(t, "a", "b", "c")
	m, err := Build(context.Background(), corpus.NewMemorySource(" ", "a c c", "b"), v)
	require.NoError(t, err)

	want := mat.NewDense(2, 3, []float64{
		1, 0, 2,
		0, 1, 0,
	})
	assert.True(t, mat.Equal(want, m))
	assert.True(t, mat.Equal(want, m.Dense()))
	assert.True(t, mat.Equal(want.T(), m.T()))
	assert.Equal(t, []float64{1, 0, 2}, mat.Row(nil, 0, m))

	td := m.TermDoc()
	r, c := td.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.True(t, mat.Equal(want.T(), td))
}

func TestCountOutOfRangePanics(t *testing.T) {
	m, err := Build(context.Background(), corpus.NewMemorySource(" ", "aa"), mustVocab(t, "aa"))
	require.NoError(t, err)

	assert.Panics(t, func() { m.Count(1, 0) })
	assert.Panics(t, func() { m.Count(0, 1) })
	assert.Panics(t, func() { m.Row(-1) })
}
