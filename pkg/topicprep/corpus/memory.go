package corpus

import "context"

// MemorySource serves raw corpus lines held in memory.
// Lines go through the same trimming and splitting as FileSource.
type MemorySource struct {
	Lines     []string
	Separator string
}

// NewMemorySource creates a source over the given lines.
func NewMemorySource(sep string, lines ...string) *MemorySource {
	return &MemorySource{Lines: lines, Separator: sep}
}

// Walk implements Source.
func (s *MemorySource) Walk(ctx context.Context, fn func(Document) error) error {
	next := 0
	for _, line := range s.Lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens, ok := SplitLine(line, s.Separator)
		if !ok {
			continue
		}
		if err := fn(Document{Index: next, Tokens: tokens}); err != nil {
			return finish(err)
		}
		next++
	}
	return nil
}
