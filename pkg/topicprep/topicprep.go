// Package topicprep turns a line-delimited corpus into the inputs of a topic
// model and renders the model's output as ranked listings.
//
// The pipeline is Source → Vocabulary → Matrix → seed Map → Trainer → reports.
// The corpus is walked twice (vocabulary, then counts) unless a saved
// vocabulary listing exists, in which case the listing is authoritative.
package topicprep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/golang/glog"

	"github.com/cognicore/topicprep/pkg/topicprep/coherence"
	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/dtm"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/report"
	"github.com/cognicore/topicprep/pkg/topicprep/seed"
	"github.com/cognicore/topicprep/pkg/topicprep/trainer"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// Options configures a run.
type Options struct {
	Source    corpus.Source
	Predicate vocab.Predicate // nil means vocab.DefaultPredicate
	VocabPath string          // listing to load or create; empty keeps it in memory
	MaxCount  uint32          // per-cell count limit, 0 means math.MaxUint32

	Seeds   seed.Set
	Topics  int
	Trainer trainer.Trainer

	OutDir    string
	TopWords  int
	TopTopics int
	TopTerms  int
}

// Prepared is the trainer-ready state of a corpus.
type Prepared struct {
	Vocab       *vocab.Vocabulary
	Matrix      *dtm.Matrix
	Seeds       seed.Result
	VocabLoaded bool
}

// Result is the outcome of Run.
type Result struct {
	Prepared
	Output  trainer.Output
	Summary report.Summary
}

// Prepare builds (or loads) the vocabulary, counts the matrix and resolves seeds.
func Prepare(ctx context.Context, opts Options) (*Prepared, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("prepare: no corpus source: %w", internalerr.ErrInvalidInput)
	}

	p := &Prepared{}
	var err error
	if opts.VocabPath != "" {
		if dir := filepath.Dir(opts.VocabPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("vocabulary dir: %w", err)
			}
		}
		p.Vocab, p.VocabLoaded, err = vocab.LoadOrBuild(ctx, opts.VocabPath, opts.Source, opts.Predicate)
	} else {
		p.Vocab, err = vocab.Build(ctx, opts.Source, opts.Predicate)
	}
	if err != nil {
		return nil, fmt.Errorf("vocabulary: %w", err)
	}

	p.Matrix, err = dtm.Build(ctx, opts.Source, p.Vocab, dtm.Options{MaxCount: opts.MaxCount})
	if err != nil {
		return nil, fmt.Errorf("matrix: %w", err)
	}

	p.Seeds = seed.Resolve(opts.Seeds.Groups, p.Vocab)
	if n := len(p.Seeds.Unresolved); n > 0 {
		log.Warningf("%d seed terms unresolved", n)
	}
	if n := len(p.Seeds.Conflicts); n > 0 {
		log.Warningf("%d seed terms claimed by more than one slot, later slot kept", n)
	}
	return p, nil
}

// Run prepares the corpus, trains, and writes every report into opts.OutDir.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Trainer == nil {
		return nil, fmt.Errorf("run: no trainer: %w", internalerr.ErrInvalidInput)
	}

	p, err := Prepare(ctx, opts)
	if err != nil {
		return nil, err
	}

	strength := opts.Seeds.Strength
	if strength == 0 {
		strength = seed.DefaultStrength
	}
	in := trainer.Input{
		Matrix:   p.Matrix,
		Vocab:    p.Vocab,
		Seeds:    p.Seeds.Map,
		Strength: strength,
		Topics:   opts.Topics,
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	out, err := opts.Trainer.Train(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", opts.Trainer.Name(), err)
	}
	if err := out.Check(in); err != nil {
		return nil, err
	}

	res := &Result{Prepared: *p, Output: out}
	res.Summary = report.NewBuilder().Build(p.Matrix, p.Vocab, p.Seeds, opts.TopTerms)
	res.Summary.Trainer = opts.Trainer.Name()
	res.Summary.Topics = opts.Topics
	res.Summary.VocabLoaded = p.VocabLoaded

	res.Summary.Coherence, err = coherence.NewCalculator(0).Score(p.Matrix, p.Vocab, out.TopicWord, opts.TopWords)
	if err != nil {
		return nil, err
	}
	res.Summary.MeanNPMI = coherence.Mean(res.Summary.Coherence)
	log.Infof("mean topic coherence (NPMI over top %d terms): %.4f", opts.TopWords, res.Summary.MeanNPMI)

	if err := writeReports(opts, res); err != nil {
		return nil, err
	}
	log.Infof("run %s: reports written to %s", res.Summary.RunID, opts.OutDir)
	return res, nil
}

func writeReports(opts Options, res *Result) error {
	dir := opts.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}

	err := writeFile(filepath.Join(dir, report.TopicWordFile), func(f *os.File) (err error) {
		res.Summary.SkippedTopics, err = report.TopicWords(f, res.Output.TopicWord, res.Vocab, opts.TopWords)
		return err
	})
	if err != nil {
		return err
	}

	err = writeFile(filepath.Join(dir, report.DocTopicFile), func(f *os.File) (err error) {
		res.Summary.SkippedDocs, err = report.DocTopics(f, res.Output.DocTopic, opts.TopTopics)
		return err
	})
	if err != nil {
		return err
	}

	if slots := res.Seeds.Slots(); len(slots) > 0 {
		err = writeFile(filepath.Join(dir, report.SeededTopicsFile), func(f *os.File) error {
			return report.SeededTopics(f, res.Output.TopicWord, res.Vocab, opts.TopWords, slots)
		})
		if err != nil {
			return err
		}
	}

	return writeFile(filepath.Join(dir, report.SummaryFile), func(f *os.File) error {
		return res.Summary.WriteJSON(f)
	})
}

// writeFile truncates path and hands it to fn.
func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
