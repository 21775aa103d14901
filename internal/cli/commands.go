package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/cognicore/topicprep/pkg/topicprep"
	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/store/sqlite"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

func newVocabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build or load the vocabulary listing",
		Long: `Build the vocabulary from the corpus and append it to the listing file.
If the listing already exists it is loaded instead and the corpus is not read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			src, closeFn, err := topicprep.OpenSource(ctx, cfg.Corpus)
			if err != nil {
				return err
			}
			defer closeFn()

			pred, err := topicprep.BuildPredicate(cfg.Vocabulary)
			if err != nil {
				return err
			}

			v, loaded, err := vocab.LoadOrBuild(ctx, cfg.Vocabulary.Path, src, pred)
			if err != nil {
				return err
			}

			action := "built"
			if loaded {
				action = "loaded"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vocabulary %s: %d terms (%s)\n", action, v.Len(), cfg.Vocabulary.Path)
			return nil
		},
	}
	addCorpusFlags(cmd.Flags())
	return cmd
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and write topic reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)

			opts, closeFn, err := topicprep.FromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := topicprep.Run(ctx, opts)
			if err != nil {
				return err
			}

			s := res.Summary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s\n", s.RunID)
			fmt.Fprintf(out, "  documents: %d  terms: %d  non-zero: %d\n", s.Documents, s.Terms, s.NonZero)
			fmt.Fprintf(out, "  seeded slots: %d  unresolved seeds: %d  conflicts: %d\n",
				len(s.SeededSlots), len(s.Unresolved), len(s.Conflicts))
			fmt.Fprintf(out, "  mean coherence (NPMI): %.4f\n", s.MeanNPMI)
			fmt.Fprintf(out, "  reports: %s\n", cfg.Report.Dir)
			return nil
		},
	}
	addCorpusFlags(cmd.Flags())
	cmd.Flags().String("out", "", "report directory")
	cmd.Flags().Int("topics", 0, "number of topics")
	cmd.Flags().Int("iterations", 0, "LDA iterations")
	cmd.Flags().Int("passes", 0, "LDA transformation passes")
	cmd.Flags().Int("top-words", 0, "terms listed per topic")
	cmd.Flags().Int("top-topics", 0, "topics listed per document")
	return cmd
}

// importBatch is the number of lines inserted per transaction.
const importBatch = 10000

func newImportCommand() *cobra.Command {
	var (
		sep string
		enc string
	)
	cmd := &cobra.Command{
		Use:   "import <db> <file-or-glob>...",
		Short: "Load line corpora into a SQLite corpus database",
		Long: `Read every line of the given files (doublestar globs allowed), decode them,
and append the non-blank lines to the docs table of a SQLite database. The
database can then be used with --sqlite.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)

			db, err := sqlite.Create(ctx, args[0], sep)
			if err != nil {
				return err
			}
			defer db.Close()

			joiner := sep
			if joiner == "" {
				joiner = corpus.DefaultSeparator
			}

			total := 0
			for _, pattern := range args[1:] {
				src, err := corpus.NewFileSource(pattern, sep, enc)
				if err != nil {
					return err
				}

				n := 0
				batch := make([]string, 0, importBatch)
				err = src.Walk(ctx, func(d corpus.Document) error {
					batch = append(batch, strings.Join(d.Tokens, joiner))
					if len(batch) < importBatch {
						return nil
					}
					n += len(batch)
					err := db.AddDocs(ctx, batch...)
					batch = batch[:0]
					return err
				})
				if err != nil {
					return err
				}
				if err := db.AddDocs(ctx, batch...); err != nil {
					return err
				}
				n += len(batch)
				log.Infof("import %s: %d documents", pattern, n)
				total += n
			}

			n, err := db.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents into %s (%d total)\n", total, args[0], n)
			return nil
		},
	}
	cmd.Flags().StringVar(&sep, "separator", "", "token separator (default \" \")")
	cmd.Flags().StringVar(&enc, "encoding", "", "source encoding label")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Execute runs the root command and exits non-zero on failure.
func Execute(version, commit, date string) {
	defer log.Flush()
	if err := NewRootCommand(version, commit, date).Execute(); err != nil {
		log.Flush()
		os.Exit(1)
	}
}
