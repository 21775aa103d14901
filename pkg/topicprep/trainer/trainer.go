// Package trainer is the boundary to topic-model implementations. The
// pipeline hands a trainer a frozen matrix, vocabulary and seed map, and reads
// back two weight matrices; no inference happens on this side.
package trainer

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/dtm"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/seed"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// Input is everything a trainer receives.
type Input struct {
	Matrix   *dtm.Matrix
	Vocab    *vocab.Vocabulary
	Seeds    seed.Map
	Strength float64
	Topics   int
}

// Validate checks that the input is internally consistent.
func (in Input) Validate() error {
	if in.Matrix == nil || in.Vocab == nil {
		return fmt.Errorf("trainer input: missing matrix or vocabulary: %w", internalerr.ErrInvalidInput)
	}
	if in.Topics <= 0 {
		return fmt.Errorf("trainer input: topics=%d: %w", in.Topics, internalerr.ErrInvalidInput)
	}
	if _, c := in.Matrix.Dims(); c != in.Vocab.Len() {
		return fmt.Errorf("trainer input: matrix has %d columns, vocabulary %d terms: %w",
			c, in.Vocab.Len(), internalerr.ErrInvalidInput)
	}
	for id, slot := range in.Seeds {
		if id < 0 || id >= in.Vocab.Len() || slot < 0 || slot >= in.Topics {
			return fmt.Errorf("trainer input: seed %d -> slot %d out of range: %w", id, slot, internalerr.ErrInvalidInput)
		}
	}
	return nil
}

// Output holds the trained weights.
// TopicWord is topics × vocabulary, DocTopic is documents × topics.
type Output struct {
	TopicWord mat.Matrix
	DocTopic  mat.Matrix
}

// Check verifies that out has the shapes implied by in.
func (out Output) Check(in Input) error {
	if out.TopicWord == nil || out.DocTopic == nil {
		return fmt.Errorf("trainer output: missing matrix: %w", internalerr.ErrInvalidInput)
	}
	docs, terms := in.Matrix.Dims()
	if r, c := out.TopicWord.Dims(); r != in.Topics || c != terms {
		return fmt.Errorf("trainer output: topic-word is %dx%d, want %dx%d: %w", r, c, in.Topics, terms, internalerr.ErrInvalidInput)
	}
	if r, c := out.DocTopic.Dims(); r != docs || c != in.Topics {
		return fmt.Errorf("trainer output: doc-topic is %dx%d, want %dx%d: %w", r, c, docs, in.Topics, internalerr.ErrInvalidInput)
	}
	return nil
}

// Trainer fits a topic model.
type Trainer interface {
	Name() string
	Train(ctx context.Context, in Input) (Output, error)
}

// Func adapts a function to Trainer.
type Func func(ctx context.Context, in Input) (Output, error)

// Name implements Trainer.
func (f Func) Name() string { return "func" }

// Train implements Trainer.
func (f Func) Train(ctx context.Context, in Input) (Output, error) { return f(ctx, in) }
