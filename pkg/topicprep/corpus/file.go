package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/golang/glog"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// DefaultMaxLineBytes bounds a single corpus line.
const DefaultMaxLineBytes = 16 << 20

// FileSource reads one document per line from a file, or from every file
// matched by a doublestar glob such as "data/**/*.txt".
type FileSource struct {
	Path         string
	Separator    string // token separator, DefaultSeparator if empty
	Encoding     string // WHATWG label: "utf-8", "gbk", "gb18030", "latin1", ...
	MaxLineBytes int
}

// NewFileSource creates a file source with the given separator and encoding label.
// The encoding label is validated eagerly.
func NewFileSource(path, sep, enc string) (*FileSource, error) {
	src := &FileSource{Path: path, Separator: sep, Encoding: enc}
	if _, err := src.encoding(); err != nil {
		return nil, err
	}
	return src, nil
}

// Walk implements Source.
func (s *FileSource) Walk(ctx context.Context, fn func(Document) error) error {
	enc, err := s.encoding()
	if err != nil {
		return err
	}
	paths, err := s.paths()
	if err != nil {
		return err
	}

	next := 0
	for _, path := range paths {
		n, err := s.walkFile(ctx, path, enc, next, fn)
		next = n
		if err != nil {
			return finish(err)
		}
	}
	return nil
}

func (s *FileSource) walkFile(ctx context.Context, path string, enc encoding.Encoding, next int, fn func(Document) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return next, &UnreadableError{Location: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = enc.NewDecoder().Reader(f)
	}

	maxLine := s.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	lines := 0
	for scanner.Scan() {
		lines++
		if err := ctx.Err(); err != nil {
			return next, err
		}
		tokens, ok := SplitLine(scanner.Text(), s.Separator)
		if !ok {
			continue
		}
		if err := fn(Document{Index: next, Tokens: tokens}); err != nil {
			return next + 1, err
		}
		next++
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return next, fmt.Errorf("%s line %d exceeds %d bytes: %w", path, lines+1, maxLine, internalerr.ErrInvalidInput)
		}
		return next, &UnreadableError{Location: path, Err: err}
	}

	log.V(1).Infof("corpus %s: %d lines read", path, lines)
	return next, nil
}

// encoding resolves the configured label. UTF-8 needs no decoder.
func (s *FileSource) encoding() (encoding.Encoding, error) {
	label := strings.TrimSpace(s.Encoding)
	if label == "" {
		return nil, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown corpus encoding %q: %w", s.Encoding, internalerr.ErrInvalidConfig)
	}
	if name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// paths expands the glob, if any. An existing file is taken literally even
// when its name holds glob metacharacters, and a plain path is returned as-is
// so that a missing file surfaces as an open error.
func (s *FileSource) paths() ([]string, error) {
	if !hasMeta(s.Path) {
		return []string{s.Path}, nil
	}
	if info, err := os.Stat(s.Path); err == nil && !info.IsDir() {
		return []string{s.Path}, nil
	}
	if !doublestar.ValidatePattern(s.Path) {
		return nil, &UnreadableError{Location: s.Path, Err: doublestar.ErrBadPattern}
	}
	matches, err := doublestar.FilepathGlob(s.Path, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &UnreadableError{Location: s.Path, Err: err}
	}
	if len(matches) == 0 {
		return nil, &UnreadableError{Location: s.Path, Err: os.ErrNotExist}
	}
	sort.Strings(matches)
	return matches, nil
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
