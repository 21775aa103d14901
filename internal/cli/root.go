package cli

import (
	goflag "flag"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cognicore/topicprep/pkg/topicprep/config"
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "topicprep",
		Short: "Prepare corpora for topic models and rank their output",
		Long: `topicprep turns a line-delimited corpus (one document per line, tokens
separated by a fixed separator) into a stable vocabulary listing and a sparse
document-term matrix, folds seed word groups into vocabulary ids, trains a
topic model and writes ranked topic-word and document-topic listings.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	// glog registers -v, -logtostderr, -log_dir, ... on the standard flag set.
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(newVocabCommand())
	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// buildInfo is stamped by the linker; empty fields read as unknown.
type buildInfo struct {
	version, commit, date string
}

func (b buildInfo) String() string {
	fallback := func(s, def string) string {
		if s == "" {
			return def
		}
		return s
	}
	return fmt.Sprintf("topicprep %s commit=%s date=%s %s %s/%s",
		fallback(b.version, "dev"), fallback(b.commit, "unknown"), fallback(b.date, "unknown"),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	info := buildInfo{version: version, commit: commit, date: date}
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info)
			return err
		},
	}
}

// addCorpusFlags registers the flags shared by every command that reads a corpus.
func addCorpusFlags(fs *pflag.FlagSet) {
	fs.String("corpus", "", "corpus file or doublestar glob")
	fs.String("sqlite", "", "SQLite corpus database (instead of --corpus)")
	fs.String("separator", "", "token separator (default \" \")")
	fs.String("encoding", "", "corpus encoding label (utf-8, gbk, gb18030, latin1, ...)")
	fs.String("vocab", "", "vocabulary listing to load or create")
	fs.String("stoplist", "", "YAML stoplist (terms: [...])")
}

// loadConfig reads --config when given, otherwise starts from defaults, then
// applies every flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Defaults()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	str := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	str("corpus", &cfg.Corpus.Path)
	str("sqlite", &cfg.Corpus.SQLite)
	str("separator", &cfg.Corpus.Separator)
	str("encoding", &cfg.Corpus.Encoding)
	str("vocab", &cfg.Vocabulary.Path)
	str("stoplist", &cfg.Vocabulary.Stoplist)
	str("out", &cfg.Report.Dir)
	num("topics", &cfg.Trainer.Topics)
	num("iterations", &cfg.Trainer.Iterations)
	num("passes", &cfg.Trainer.Passes)
	num("top-words", &cfg.Report.TopWords)
	num("top-topics", &cfg.Report.TopTopics)

	if flags.Changed("sqlite") && !flags.Changed("corpus") {
		cfg.Corpus.Path = ""
	}
	if flags.Changed("corpus") && !flags.Changed("sqlite") {
		cfg.Corpus.SQLite = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
