package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/dtm"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/seed"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

func mustVocab(t *testing.T, terms ...string) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.FromTerms(terms...)
	require.NoError(t, err)
	return v
}

func TestTopicWords(t *testing.T) {
	v := mustVocab(t, "vr", "quest", "rift", "price")
	topicWord := mat.NewDense(2, 4, []float64{
		0.1, 0.5, 0.5, 0.2,
		0.0, 0.0, 0.25, 0.75,
	})

	var buf bytes.Buffer
	skipped, err := TopicWords(&buf, topicWord, v, 2)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	want := "Topic 0:\n" +
		"quest: 0.50000\n" +
		"rift: 0.50000\n" +
		"\n" +
		"Topic 1:\n" +
		"price: 0.75000\n" +
		"rift: 0.25000\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestTopicWordsSkipsEmptyRows(t *testing.T) {
	v := mustVocab(t)

	var buf bytes.Buffer
	skipped, err := TopicWords(&buf, emptyCols{rows: 3}, v, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, skipped)
	assert.Empty(t, buf.String())
}

func TestTopicWordsUnknownTerm(t *testing.T) {
	v := mustVocab(t, "vr")
	_, err := TopicWords(&bytes.Buffer{}, mat.NewDense(1, 2, []float64{0.1, 0.9}), v, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestDocTopics(t *testing.T) {
	docTopic := mat.NewDense(2, 3, []float64{
		0.2, 0.2, 0.6,
		0.7, 0.1, 0.2,
	})

	var buf bytes.Buffer
	skipped, err := DocTopics(&buf, docTopic, 10)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	want := "Document 0:\t2: 0.60000\t0: 0.20000\t1: 0.20000\n" +
		"Document 1:\t0: 0.70000\t2: 0.20000\t1: 0.10000\n"
	assert.Equal(t, want, buf.String())
}

func TestDocTopicsNegativeK(t *testing.T) {
	_, err := DocTopics(&bytes.Buffer{}, mat.NewDense(1, 1, []float64{1}), -1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestSeededTopics(t *testing.T) {
	v := mustVocab(t, "vr", "quest", "rift", "price", "pay")
	topicWord := mat.NewDense(3, 5, []float64{
		0.4, 0.3, 0.2, 0.05, 0.05,
		0.2, 0.2, 0.2, 0.2, 0.2,
		0.0, 0.0, 0.1, 0.5, 0.4,
	})

	var buf bytes.Buffer
	require.NoError(t, SeededTopics(&buf, topicWord, v, 2, []int{0, 2, 7}))
	assert.Equal(t, "0:\tvr, quest\n2:\tprice, pay\n", buf.String())
}

func TestTopTerms(t *testing.T) {
	v := mustVocab(t, "vr", "quest", "price")
	m, err := dtm.Build(context.Background(), corpus.NewMemorySource(" ", "vr quest vr", "price quest", "quest"), v)
	require.NoError(t, err)

	assert.Equal(t, []TermCount{
		{Term: "quest", Count: 3, Docs: 3},
		{Term: "vr", Count: 2, Docs: 1},
	}, TopTerms(m, v, 2))
	assert.Empty(t, TopTerms(m, v, 0))
}

func TestSummary(t *testing.T) {
	v := mustVocab(t, "vr", "quest")
	m, err := dtm.Build(context.Background(), corpus.NewMemorySource(" ", "vr quest", "quest"), v)
	require.NoError(t, err)
	res := seed.Resolve(seed.Groups{{"vr", "missing"}, {"vr"}}, v)

	b := NewBuilder()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	s := b.Build(m, v, res, 5)
	assert.Equal(t, 2, s.Documents)
	assert.Equal(t, 2, s.Terms)
	assert.Equal(t, 3, s.NonZero)
	assert.Equal(t, []int{1}, s.SeededSlots)
	assert.Len(t, s.Unresolved, 1)
	assert.Len(t, s.Conflicts, 1)

	id, err := ulid.Parse(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), id.Time())

	next := b.Build(m, v, res, 5)
	assert.Greater(t, next.RunID, s.RunID)

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s.RunID, decoded["run_id"])
	assert.Equal(t, float64(2), decoded["documents"])
	assert.Contains(t, decoded, "conflicts")
	assert.NotContains(t, decoded, "skipped_docs")
}

// emptyCols is a matrix with rows but no columns.
type emptyCols struct{ rows int }

func (e emptyCols) Dims() (int, int)    { return e.rows, 0 }
func (e emptyCols) At(i, j int) float64 { panic(mat.ErrIndexOutOfRange) }
func (e emptyCols) T() mat.Matrix       { return mat.Transpose{Matrix: e} }
