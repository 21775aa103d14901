// Package report renders trainer output as ranked text listings.
//
// Every writer ranks with rank.TopK, so ties always resolve to the lower
// index. Rows that cannot be ranked because they are empty are skipped and
// returned to the caller instead of failing the run.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/golang/glog"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/rank"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// File names used by the pipeline.
const (
	TopicWordFile    = "topic_word.txt"
	DocTopicFile     = "doc_topic.txt"
	SeededTopicsFile = "seeded_topics.txt"
	SummaryFile      = "summary.json"
)

// TopicWords writes, per topic row of topicWord:
//
//	Topic <i>:
//	<term>: <value>
//	...
//
// followed by a blank line. It returns the topics that were skipped.
func TopicWords(w io.Writer, topicWord mat.Matrix, v *vocab.Vocabulary, k int) ([]int, error) {
	bw := bufio.NewWriter(w)
	topics, _ := topicWord.Dims()

	var skipped []int
	for i := 0; i < topics; i++ {
		top, err := rank.TopKRow(topicWord, i, k)
		if errors.Is(err, internalerr.ErrEmptyWeightVector) {
			skipped = append(skipped, i)
			continue
		}
		if err != nil {
			return skipped, fmt.Errorf("topic %d: %w", i, err)
		}

		fmt.Fprintf(bw, "Topic %d:\n", i)
		for _, s := range top {
			term, err := termOf(v, s.Index)
			if err != nil {
				return skipped, fmt.Errorf("topic %d: %w", i, err)
			}
			fmt.Fprintf(bw, "%s: %s\n", term, rank.FormatValue(s.Value))
		}
		bw.WriteString("\n")
	}
	if len(skipped) > 0 {
		log.Warningf("topic-word report: skipped %d empty topics", len(skipped))
	}
	return skipped, bw.Flush()
}

// DocTopics writes one line per document row of docTopic:
//
//	Document <d>:\t<topic>: <value>\t<topic>: <value>...
//
// It returns the documents that were skipped.
func DocTopics(w io.Writer, docTopic mat.Matrix, k int) ([]int, error) {
	bw := bufio.NewWriter(w)
	docs, _ := docTopic.Dims()

	var skipped []int
	for d := 0; d < docs; d++ {
		top, err := rank.TopKRow(docTopic, d, k)
		if errors.Is(err, internalerr.ErrEmptyWeightVector) {
			skipped = append(skipped, d)
			continue
		}
		if err != nil {
			return skipped, fmt.Errorf("document %d: %w", d, err)
		}

		fmt.Fprintf(bw, "Document %d:", d)
		for _, s := range top {
			bw.WriteString("\t")
			bw.WriteString(s.String())
		}
		bw.WriteString("\n")
	}
	if len(skipped) > 0 {
		log.Warningf("doc-topic report: skipped %d empty documents", len(skipped))
	}
	return skipped, bw.Flush()
}

// SeededTopics lists the top terms of each seeded slot as
//
//	<slot>:\t<term>, <term>, ...
//
// Slots outside topicWord are ignored.
func SeededTopics(w io.Writer, topicWord mat.Matrix, v *vocab.Vocabulary, k int, slots []int) error {
	bw := bufio.NewWriter(w)
	topics, _ := topicWord.Dims()

	for _, slot := range slots {
		if slot < 0 || slot >= topics {
			continue
		}
		top, err := rank.TopKRow(topicWord, slot, k)
		if errors.Is(err, internalerr.ErrEmptyWeightVector) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seeded topic %d: %w", slot, err)
		}

		terms := make([]string, len(top))
		for j, s := range top {
			if terms[j], err = termOf(v, s.Index); err != nil {
				return fmt.Errorf("seeded topic %d: %w", slot, err)
			}
		}
		fmt.Fprintf(bw, "%d:\t%s\n", slot, strings.Join(terms, ", "))
	}
	return bw.Flush()
}

func termOf(v *vocab.Vocabulary, id int) (string, error) {
	term, ok := v.Term(id)
	if !ok {
		return "", fmt.Errorf("term id %d outside vocabulary of %d: %w", id, v.Len(), internalerr.ErrInvalidInput)
	}
	return term, nil
}
