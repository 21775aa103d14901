package vocab

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicprep/pkg/topicprep/corpus"
	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
)

func TestDefaultPredicate(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"vr", true},
		{"a", false},
		{"", false},
		{"2021", false},
		{"١٢٣", false}, // Arabic-Indic digits
		{"gpt4", true},
		{"utf-8", true},
		{"油耗", true},
		{"油", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultPredicate(tt.token), "token %q", tt.token)
	}
}

func TestPredicateCombinators(t *testing.T) {
	p := All(DefaultPredicate, Stopwords([]string{"The", "and"}), nil)

	assert.False(t, p("the"))
	assert.False(t, p("AND"))
	assert.True(t, p("headset"))
	assert.False(t, p("x"))

	assert.True(t, Not(MinLength(3))("ab"))
	assert.False(t, Not(MinLength(3))("abc"))
}

func TestFilterBuildsNewSlice(t *testing.T) {
	tokens := []string{"the", "vr", "a", "the", "quest"}
	orig := append([]string(nil), tokens...)

	out := Filter(tokens, Stopwords([]string{"the", "a"}))

	assert.Equal(t, []string{"vr", "quest"}, out)
	assert.Equal(t, orig, tokens, "input must not be modified")
}

func TestBuildAssignsFirstOccurrenceIDs(t *testing.T) {
	src := corpus.NewMemorySource(" ",
		"quest vr quest 42 a",
		"rift vr graphics",
		"",
		"graphics sound",
	)

	v, err := Build(context.Background(), src, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"quest", "vr", "rift", "graphics", "sound"}, v.Terms())
	for id := 0; id < v.Len(); id++ {
		term, ok := v.Term(id)
		require.True(t, ok)
		got, ok := v.ID(term)
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
	assert.False(t, v.Contains("42"))
	assert.False(t, v.Contains("a"))

	_, ok := v.Term(v.Len())
	assert.False(t, ok)
	_, ok = v.Term(-1)
	assert.False(t, ok)
}

func TestBuildIsDeterministic(t *testing.T) {
	lines := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("w%d w%d common w%d", i%17, i%31, i%7))
	}
	src := corpus.NewMemorySource(" ", lines...)

	first, err := Build(context.Background(), src, DefaultPredicate)
	require.NoError(t, err)
	second, err := Build(context.Background(), src, DefaultPredicate)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))

	seen := make(map[string]bool)
	for _, term := range first.Terms() {
		assert.False(t, seen[term], "duplicate term %q", term)
		seen[term] = true
	}
}

func TestBuildCustomPredicate(t *testing.T) {
	src := corpus.NewMemorySource(" ", "a bb 7 ccc")

	v, err := Build(context.Background(), src, func(string) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "7", "ccc"}, v.Terms())
}

func TestBuildPropagatesSourceError(t *testing.T) {
	src := &corpus.FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")}

	_, err := Build(context.Background(), src, nil)
	assert.ErrorIs(t, err, internalerr.ErrCorpusUnreadable)
}

func TestFromTerms(t *testing.T) {
	v, err := FromTerms("bb", "cc")
	require.NoError(t, err)
	id, ok := v.ID("cc")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	_, err = FromTerms("bb", "bb")
	assert.ErrorIs(t, err, internalerr.ErrDuplicate)

	_, err = FromTerms("bb", "")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestSaveFormat(t *testing.T) {
	v, err := FromTerms("vr", "quest", "油耗")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, v.Save(&buf))
	assert.Equal(t, "0:\tvr\n1:\tquest\n2:\t油耗\n", buf.String())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	v, err := FromTerms("vr", "quest", "rift", "油耗", "gpt-4", "has:colon")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, v.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.True(t, v.Equal(loaded))
}

func TestLoadEmpty(t *testing.T) {
	v, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
}

func TestLoadToleratesCRLFAndBlankLines(t *testing.T) {
	v, err := Load(strings.NewReader("0:\tvr\r\n1:\tquest\r\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vr", "quest"}, v.Terms())
}

func TestLoadMalformed(t *testing.T) {
	tests := map[string]string{
		"missing separator": "0 vr\n",
		"bad id":            "x:\tvr\n",
		"gap":               "0:\tvr\n2:\tquest\n",
		"not from zero":     "1:\tvr\n",
		"duplicate":         "0:\tvr\n1:\tvr\n",
		"empty term":        "0:\t\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(content))
			assert.ErrorIs(t, err, internalerr.ErrMalformedVocabulary)
		})
	}
}

func TestSaveFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	v, err := FromTerms("vr")
	require.NoError(t, err)

	require.NoError(t, v.SaveFile(path))
	require.NoError(t, v.SaveFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0:\tvr\n0:\tvr\n", string(data))

	_, err = LoadFile(path)
	assert.ErrorIs(t, err, internalerr.ErrMalformedVocabulary)
}

func TestLoadOrBuild(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.txt")

	first, loaded, err := LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "vr quest", "rift vr"), nil)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, []string{"vr", "quest", "rift"}, first.Terms())

	// A different corpus must not change the persisted ids.
	second, loaded, err := LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "sound graphics"), nil)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.True(t, first.Equal(second))
}

func TestLoadOrBuildEmptyCorpus(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.txt")

	v, loaded, err := LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "", "1 2 x"), nil)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, 0, v.Len())
	assert.NoFileExists(t, path)

	v, loaded, err = LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "vr quest"), nil)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, []string{"vr", "quest"}, v.Terms())
	assert.FileExists(t, path)
}

func TestLoadOrBuildRebuildsEmptyListing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	v, loaded, err := LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "vr quest"), nil)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, []string{"vr", "quest"}, v.Terms())

	again, loaded, err := LoadOrBuild(ctx, path, corpus.NewMemorySource(" ", "sound"), nil)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.True(t, v.Equal(again))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
