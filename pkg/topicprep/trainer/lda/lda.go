// Package lda adapts github.com/james-bowman/nlp's online variational LDA to
// the trainer boundary.
package lda

import (
	"context"
	"fmt"

	log "github.com/golang/glog"
	"github.com/james-bowman/nlp"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/trainer"
)

// Defaults follow the seeded-LDA driver this pipeline grew out of.
const (
	DefaultIterations = 1000
	DefaultPasses     = 500
)

// Trainer runs plain LDA. The nlp implementation has no per-word priors, so
// seed maps are accepted but only reported.
type Trainer struct {
	Iterations int
	Passes     int
}

// New returns a trainer with default iteration counts.
func New() *Trainer {
	return &Trainer{Iterations: DefaultIterations, Passes: DefaultPasses}
}

// Name implements trainer.Trainer.
func (t *Trainer) Name() string { return "lda" }

// Train implements trainer.Trainer.
func (t *Trainer) Train(ctx context.Context, in trainer.Input) (trainer.Output, error) {
	if err := in.Validate(); err != nil {
		return trainer.Output{}, err
	}
	if err := ctx.Err(); err != nil {
		return trainer.Output{}, err
	}
	if len(in.Seeds) > 0 {
		log.Warningf("lda: %d seed assignments ignored, plain LDA has no seed priors", len(in.Seeds))
	}

	model := nlp.NewLatentDirichletAllocation(in.Topics)
	model.Processes = 1
	if t.Iterations > 0 {
		model.Iterations = t.Iterations
	}
	if t.Passes > 0 {
		model.TransformationPasses = t.Passes
	}

	docs, terms := in.Matrix.Dims()
	log.Infof("lda: fitting %d topics over %d documents, %d terms", in.Topics, docs, terms)

	// nlp expects terms × documents and returns topics × documents.
	topicsOverDocs, err := model.FitTransform(in.Matrix.TermDoc())
	if err != nil {
		return trainer.Output{}, fmt.Errorf("lda fit: %w", err)
	}

	out := trainer.Output{
		TopicWord: model.Components(),
		DocTopic:  mat.Transpose{Matrix: topicsOverDocs},
	}
	if err := out.Check(in); err != nil {
		return trainer.Output{}, err
	}
	return out, nil
}
