package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/seed"
)

// Config is the run configuration loaded from YAML.
type Config struct {
	Corpus     Corpus     `yaml:"corpus"`
	Vocabulary Vocabulary `yaml:"vocabulary"`
	Seeds      seed.Set   `yaml:"seeds"`
	Trainer    Trainer    `yaml:"trainer"`
	Report     Report     `yaml:"report"`
}

// Corpus selects the document source. Exactly one of Path and SQLite is set.
type Corpus struct {
	Path         string `yaml:"path"`
	SQLite       string `yaml:"sqlite"`
	Separator    string `yaml:"separator"`
	Encoding     string `yaml:"encoding"`
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

// Vocabulary controls the listing file and token inclusion.
type Vocabulary struct {
	Path      string `yaml:"path"`
	Stoplist  string `yaml:"stoplist"`
	MinLength int    `yaml:"min_length"`
}

// Trainer holds topic-model parameters.
type Trainer struct {
	Topics     int `yaml:"topics"`
	Iterations int `yaml:"iterations"`
	Passes     int `yaml:"passes"`
}

// Report controls the rendered output.
type Report struct {
	Dir       string `yaml:"dir"`
	TopWords  int    `yaml:"top_words"`
	TopTopics int    `yaml:"top_topics"`
	TopTerms  int    `yaml:"top_terms"`
}

// Defaults returns the configuration used for unset fields.
func Defaults() Config {
	return Config{
		Corpus: Corpus{
			Separator:    corpus.DefaultSeparator,
			Encoding:     "utf-8",
			MaxLineBytes: corpus.DefaultMaxLineBytes,
		},
		Vocabulary: Vocabulary{
			Path:      "vocab.txt",
			MinLength: 2,
		},
		Seeds: seed.Set{Strength: seed.DefaultStrength},
		Trainer: Trainer{
			Topics:     50,
			Iterations: 1000,
			Passes:     500,
		},
		Report: Report{
			Dir:       "out",
			TopWords:  15,
			TopTopics: 10,
			TopTerms:  20,
		},
	}
}

// Load reads a YAML file over Defaults. The result is not validated: callers
// apply their overrides first and then call Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w: %v", path, internalerr.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig))
	}

	switch {
	case c.Corpus.Path == "" && c.Corpus.SQLite == "":
		bad("corpus: path or sqlite is required")
	case c.Corpus.Path != "" && c.Corpus.SQLite != "":
		bad("corpus: path and sqlite are exclusive")
	}
	if c.Corpus.MaxLineBytes < 0 {
		bad("corpus: max_line_bytes=%d", c.Corpus.MaxLineBytes)
	}
	if c.Vocabulary.Path == "" {
		bad("vocabulary: path is required")
	}
	if c.Vocabulary.MinLength < 0 {
		bad("vocabulary: min_length=%d", c.Vocabulary.MinLength)
	}
	if c.Seeds.Strength < 0 {
		bad("seeds: strength=%g", c.Seeds.Strength)
	}
	if c.Trainer.Topics <= 0 {
		bad("trainer: topics=%d", c.Trainer.Topics)
	}
	if len(c.Seeds.Groups) > c.Trainer.Topics {
		bad("seeds: %d groups for %d topics", len(c.Seeds.Groups), c.Trainer.Topics)
	}
	if c.Trainer.Iterations < 0 || c.Trainer.Passes < 0 {
		bad("trainer: iterations=%d passes=%d", c.Trainer.Iterations, c.Trainer.Passes)
	}
	if c.Report.TopWords < 0 || c.Report.TopTopics < 0 || c.Report.TopTerms < 0 {
		bad("report: top_words=%d top_topics=%d top_terms=%d", c.Report.TopWords, c.Report.TopTopics, c.Report.TopTerms)
	}
	return errors.Join(errs...)
}
