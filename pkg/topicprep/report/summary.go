package report

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/topicprep/pkg/topicprep/coherence"
	"github.com/cognicore/topicprep/pkg/topicprep/dtm"
	"github.com/cognicore/topicprep/pkg/topicprep/rank"
	"github.com/cognicore/topicprep/pkg/topicprep/seed"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// TermCount is a vocabulary term with its corpus frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
	Docs  int    `json:"docs"`
}

// Summary describes one pipeline run.
type Summary struct {
	RunID         string            `json:"run_id"`
	CreatedAt     time.Time         `json:"created_at"`
	Trainer       string            `json:"trainer,omitempty"`
	Documents     int               `json:"documents"`
	Terms         int               `json:"terms"`
	NonZero       int               `json:"non_zero"`
	Topics        int               `json:"topics"`
	VocabLoaded   bool              `json:"vocab_loaded"`
	SeededSlots   []int             `json:"seeded_slots"`
	Unresolved    []seed.Unresolved `json:"unresolved,omitempty"`
	Conflicts     []seed.Conflict   `json:"conflicts,omitempty"`
	SkippedTopics []int             `json:"skipped_topics,omitempty"`
	SkippedDocs   []int             `json:"skipped_docs,omitempty"`
	TopTerms      []TermCount       `json:"top_terms"`
	Coherence     []coherence.Topic `json:"coherence,omitempty"`
	MeanNPMI      float64           `json:"mean_npmi"`
}

// Builder stamps summaries with monotonic ULID run ids.
type Builder struct {
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewBuilder creates a new summary builder
func NewBuilder() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Build fills the corpus-level fields of a summary. topTerms bounds the
// most-frequent-term listing.
func (b *Builder) Build(m *dtm.Matrix, v *vocab.Vocabulary, res seed.Result, topTerms int) Summary {
	now := b.now().UTC()
	docs, terms := m.Dims()
	return Summary{
		RunID:       ulid.MustNew(ulid.Timestamp(now), b.entropy).String(),
		CreatedAt:   now,
		Documents:   docs,
		Terms:       terms,
		NonZero:     m.NNZ(),
		SeededSlots: res.Slots(),
		Unresolved:  res.Unresolved,
		Conflicts:   res.Conflicts,
		TopTerms:    TopTerms(m, v, topTerms),
	}
}

// TopTerms returns the k most frequent terms, ties broken by vocabulary id.
func TopTerms(m *dtm.Matrix, v *vocab.Vocabulary, k int) []TermCount {
	totals := m.TermTotals()
	weights := make([]float64, len(totals))
	for i, c := range totals {
		weights[i] = float64(c)
	}

	top, err := rank.TopK(weights, k)
	if err != nil {
		return []TermCount{}
	}

	df := m.DocFreq()
	out := make([]TermCount, 0, len(top))
	for _, s := range top {
		term, _ := v.Term(s.Index)
		out = append(out, TermCount{Term: term, Count: totals[s.Index], Docs: df[s.Index]})
	}
	return out
}

// WriteJSON writes s as indented JSON.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
