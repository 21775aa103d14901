package vocab

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	log "github.com/golang/glog"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

// Listing format: one term per line, "<id>:\t<term>".
const listingSep = ":\t"

// Save writes the listing to w.
func (v *Vocabulary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for id, term := range v.terms {
		if _, err := fmt.Fprintf(bw, "%d%s%s\n", id, listingSep, term); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveFile appends the listing to path, creating it if needed.
func (v *Vocabulary) SaveFile(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("save vocabulary: %w", err)
	}
	if err := v.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("save vocabulary: %w", err)
	}
	return f.Close()
}

// Load parses a listing. Ids must start at 0 and increase by one per line.
func Load(r io.Reader) (*Vocabulary, error) {
	v := newVocabulary(1024)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		idText, term, found := strings.Cut(line, listingSep)
		if !found {
			return nil, malformed(lineNo, "missing %q separator", listingSep)
		}
		id, err := strconv.Atoi(idText)
		if err != nil {
			return nil, malformed(lineNo, "bad id %q", idText)
		}
		if id != v.Len() {
			return nil, malformed(lineNo, "id %d out of sequence, want %d", id, v.Len())
		}
		if term == "" {
			return nil, malformed(lineNo, "empty term")
		}
		if _, added := v.add(term); !added {
			return nil, malformed(lineNo, "duplicate term %q", term)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return v, nil
}

// LoadFile reads a listing from path.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	defer f.Close()

	v, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadOrBuild loads the listing at path if it exists and holds at least one
// term; it is then authoritative and the corpus is not scanned. Otherwise the
// vocabulary is built from src and, when non-empty, saved to path. loaded
// reports which branch was taken.
func LoadOrBuild(ctx context.Context, path string, src corpus.Source, pred Predicate) (v *Vocabulary, loaded bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		v, err = LoadFile(path)
		if err != nil {
			return nil, false, err
		}
		if v.Len() > 0 {
			log.Infof("vocabulary: loaded %d terms from %s", v.Len(), path)
			return v, true, nil
		}
		log.Warningf("vocabulary: %s is empty, rebuilding", path)
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, false, fmt.Errorf("stat vocabulary: %w", statErr)
	}

	v, err = Build(ctx, src, pred)
	if err != nil {
		return nil, false, err
	}
	if v.Len() == 0 {
		log.Warningf("vocabulary: corpus produced no terms, %s not written", path)
		return v, false, nil
	}
	if err := v.SaveFile(path); err != nil {
		return nil, false, err
	}
	return v, false, nil
}

func malformed(line int, format string, args ...any) error {
	return fmt.Errorf("line %d: %s: %w", line, fmt.Sprintf(format, args...), internalerr.ErrMalformedVocabulary)
}
