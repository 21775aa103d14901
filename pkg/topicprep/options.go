package topicprep

import (
	"context"
	"fmt"

	"github.com/cognicore/topicprep/pkg/topicprep/config"
	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/stoplist"
	"github.com/cognicore/topicprep/pkg/topicprep/store/sqlite"
	"github.com/cognicore/topicprep/pkg/topicprep/trainer/lda"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// OpenSource opens the corpus named by cfg. The returned close func releases
// any database handle and is never nil.
func OpenSource(ctx context.Context, cfg config.Corpus) (corpus.Source, func() error, error) {
	noop := func() error { return nil }

	if cfg.SQLite != "" {
		src, err := sqlite.Open(ctx, cfg.SQLite, cfg.Separator)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	}

	src, err := corpus.NewFileSource(cfg.Path, cfg.Separator, cfg.Encoding)
	if err != nil {
		return nil, noop, err
	}
	src.MaxLineBytes = cfg.MaxLineBytes
	return src, noop, nil
}

// BuildPredicate combines the default rules, the minimum length and the
// stoplist file named in cfg.
func BuildPredicate(cfg config.Vocabulary) (vocab.Predicate, error) {
	preds := []vocab.Predicate{vocab.DefaultPredicate}
	if cfg.MinLength > 0 {
		preds = append(preds, vocab.MinLength(cfg.MinLength))
	}
	if cfg.Stoplist != "" {
		mgr, err := stoplist.Load(cfg.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("stoplist: %w", err)
		}
		preds = append(preds, mgr.Predicate())
	}
	return vocab.All(preds...), nil
}

// FromConfig assembles run options with the LDA trainer. Call the returned
// close func once the run is done.
func FromConfig(ctx context.Context, cfg *config.Config) (Options, func() error, error) {
	src, closeFn, err := OpenSource(ctx, cfg.Corpus)
	if err != nil {
		return Options{}, closeFn, err
	}

	pred, err := BuildPredicate(cfg.Vocabulary)
	if err != nil {
		closeFn()
		return Options{}, func() error { return nil }, err
	}

	return Options{
		Source:    src,
		Predicate: pred,
		VocabPath: cfg.Vocabulary.Path,
		Seeds:     cfg.Seeds,
		Topics:    cfg.Trainer.Topics,
		Trainer:   &lda.Trainer{Iterations: cfg.Trainer.Iterations, Passes: cfg.Trainer.Passes},
		OutDir:    cfg.Report.Dir,
		TopWords:  cfg.Report.TopWords,
		TopTopics: cfg.Report.TopTopics,
		TopTerms:  cfg.Report.TopTerms,
	}, closeFn, nil
}
