package vocab

import (
	"context"
	"fmt"

	log "github.com/golang/glog"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Vocabulary maps terms to dense ids in [0, Len()).
// Ids follow first-occurrence order and are never reused. A Vocabulary has no
// exported mutators; once Build, FromTerms or Load returns, it is frozen.
type Vocabulary struct {
	terms []string
	ids   map[string]int
}

func newVocabulary(capacity int) *Vocabulary {
	return &Vocabulary{
		terms: make([]string, 0, capacity),
		ids:   make(map[string]int, capacity),
	}
}

// add assigns the next id to term if it is new.
func (v *Vocabulary) add(term string) (int, bool) {
	if id, ok := v.ids[term]; ok {
		return id, false
	}
	id := len(v.terms)
	v.terms = append(v.terms, term)
	v.ids[term] = id
	return id, true
}

// Build derives a vocabulary in a single pass over src.
// A nil pred means DefaultPredicate.
func Build(ctx context.Context, src corpus.Source, pred Predicate) (*Vocabulary, error) {
	if pred == nil {
		pred = DefaultPredicate
	}

	v := newVocabulary(1024)
	docs, tokens := 0, 0
	err := src.Walk(ctx, func(d corpus.Document) error {
		docs++
		for _, tok := range d.Tokens {
			tokens++
			if pred(tok) {
				v.add(tok)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}

	log.Infof("vocabulary: %d terms from %d documents (%d tokens)", v.Len(), docs, tokens)
	return v, nil
}

// FromTerms builds a vocabulary from an explicit ordered term list.
func FromTerms(terms ...string) (*Vocabulary, error) {
	v := newVocabulary(len(terms))
	for i, t := range terms {
		if t == "" {
			return nil, fmt.Errorf("term %d is empty: %w", i, internalerr.ErrInvalidInput)
		}
		if _, added := v.add(t); !added {
			return nil, fmt.Errorf("term %q: %w", t, internalerr.ErrDuplicate)
		}
	}
	return v, nil
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// ID returns the id of term.
func (v *Vocabulary) ID(term string) (int, bool) {
	id, ok := v.ids[term]
	return id, ok
}

// Contains reports whether term is in the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.ids[term]
	return ok
}

// Term returns the term with the given id.
func (v *Vocabulary) Term(id int) (string, bool) {
	if id < 0 || id >= len(v.terms) {
		return "", false
	}
	return v.terms[id], true
}

// Terms returns a copy of the terms in id order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Equal reports whether both vocabularies assign the same ids to the same terms.
func (v *Vocabulary) Equal(other *Vocabulary) bool {
	if other == nil || len(v.terms) != len(other.terms) {
		return false
	}
	for i, t := range v.terms {
		if other.terms[i] != t {
			return false
		}
	}
	return true
}
