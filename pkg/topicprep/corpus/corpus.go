package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// DefaultSeparator splits tokens when a source leaves Separator empty.
const DefaultSeparator = " "

// SkipRest can be returned by a Walk callback to stop the walk early.
// Walk releases its handle and returns nil.
var SkipRest = errors.New("skip remaining documents")

// Document is one line of the corpus split into tokens.
// Index is the 0-based position in the stream, counting only non-empty lines.
type Document struct {
	Index  int
	Tokens []string
}

// Source streams documents from the start of a corpus on every Walk.
// Implementations must not retain documents between walks and must release
// the underlying handle on every exit path.
type Source interface {
	Walk(ctx context.Context, fn func(Document) error) error
}

// UnreadableError reports a corpus location that could not be opened.
type UnreadableError struct {
	Location string
	Err      error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("corpus %s: %v", e.Location, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UnreadableError) Unwrap() []error {
	return []error{internalerr.ErrCorpusUnreadable, e.Err}
}

// SplitLine trims a raw corpus line and splits it on sep.
// ok is false for lines that are empty after trimming; such lines produce no document.
// Empty tokens (from repeated separators) are dropped, so a non-empty line may
// still yield zero tokens.
func SplitLine(line, sep string) (tokens []string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false
	}
	if sep == "" {
		sep = DefaultSeparator
	}

	parts := strings.Split(line, sep)
	tokens = make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens, true
}

// Count walks the source once and returns the number of documents.
func Count(ctx context.Context, src Source) (int, error) {
	n := 0
	err := src.Walk(ctx, func(Document) error {
		n++
		return nil
	})
	return n, err
}

// finish maps the callback's stop signal to a clean return.
func finish(err error) error {
	if errors.Is(err, SkipRest) {
		return nil
	}
	return err
}
