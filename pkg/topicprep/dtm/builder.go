package dtm

import (
	"context"
	"fmt"
	"math"
	"sort"

	log "github.com/golang/glog"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// Options configures Build.
type Options struct {
	// MaxCount is the largest count a cell may hold. Zero means math.MaxUint32.
	MaxCount uint32
}

// CountOverflowError reports a cell that would exceed Options.MaxCount.
type CountOverflowError struct {
	Doc  int
	Term string
	Max  uint32
}

func (e *CountOverflowError) Error() string {
	return fmt.Sprintf("document %d: count of %q exceeds %d", e.Doc, e.Term, e.Max)
}

func (e *CountOverflowError) Unwrap() error {
	return internalerr.ErrCountOverflow
}

// Build counts every vocabulary term of every document in src.
// Row d is the d-th document yielded by src; tokens outside v are dropped.
// v must not change while Build runs.
func Build(ctx context.Context, src corpus.Source, v *vocab.Vocabulary, opts ...Options) (*Matrix, error) {
	if v == nil {
		return nil, fmt.Errorf("build matrix: nil vocabulary: %w", internalerr.ErrInvalidInput)
	}
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	limit := opt.MaxCount
	if limit == 0 {
		limit = math.MaxUint32
	}

	m := newMatrix(v.Len())
	counts := make(map[int]uint32)
	row := make([]Entry, 0, 64)
	dropped := 0

	err := src.Walk(ctx, func(d corpus.Document) error {
		if d.Index != m.nrow {
			return fmt.Errorf("document %d arrived as row %d: %w", d.Index, m.nrow, internalerr.ErrInvalidInput)
		}
		clear(counts)
		for _, tok := range d.Tokens {
			id, ok := v.ID(tok)
			if !ok {
				dropped++
				continue
			}
			c := counts[id]
			if c >= limit {
				return &CountOverflowError{Doc: d.Index, Term: tok, Max: limit}
			}
			counts[id] = c + 1
		}

		row = row[:0]
		for id, c := range counts {
			row = append(row, Entry{Term: id, Count: c})
		}
		sort.Slice(row, func(i, j int) bool { return row[i].Term < row[j].Term })
		m.appendRow(row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}

	log.Infof("matrix: %d x %d, %d non-zero cells, %d out-of-vocabulary tokens dropped", m.nrow, m.ncol, m.NNZ(), dropped)
	return m, nil
}
