package seed

import (
	"fmt"
	"sort"

	log "github.com/golang/glog"

	"github.com/cognicore/topicprep/pkg/topicprep/internalerr"
	"github.com/cognicore/topicprep/pkg/topicprep/vocab"
)

// DefaultStrength is the seed confidence handed to a seeded-LDA trainer.
// Anchored CorEx-style trainers are usually run with a strength around 6.
const DefaultStrength = 0.15

// Groups holds the seed terms of each topic slot, in caller order.
type Groups [][]string

// Set is a seed specification as loaded from configuration.
type Set struct {
	Strength float64 `yaml:"strength"`
	Groups   Groups  `yaml:"groups"`
}

// Map assigns vocabulary ids to topic slots.
type Map map[int]int

// Unresolved is a seed term absent from the vocabulary.
type Unresolved struct {
	Slot int    `json:"slot"`
	Term string `json:"term"`
}

// Err returns the diagnostic as an error wrapping ErrUnresolvedSeedTerm.
func (u Unresolved) Err() error {
	return fmt.Errorf("slot %d: %q: %w", u.Slot, u.Term, internalerr.ErrUnresolvedSeedTerm)
}

// Conflict records a vocabulary id claimed by more than one slot.
// The id ends up in To, the later slot.
type Conflict struct {
	ID   int    `json:"id"`
	Term string `json:"term"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// Result is the outcome of Resolve.
type Result struct {
	Map        Map
	Unresolved []Unresolved
	Conflicts  []Conflict
}

// Resolve maps every seed term to its vocabulary id.
//
// Slots are processed in order and terms within a slot in order. Missing terms
// are collected in Unresolved and never stop resolution. When an id is already
// assigned to an earlier slot, the later slot wins and a Conflict is recorded.
func Resolve(groups Groups, v *vocab.Vocabulary) Result {
	res := Result{Map: make(Map)}
	for slot, terms := range groups {
		for _, term := range terms {
			id, ok := v.ID(term)
			if !ok {
				res.Unresolved = append(res.Unresolved, Unresolved{Slot: slot, Term: term})
				log.Warningf("seed term %q (slot %d) not in vocabulary", term, slot)
				continue
			}
			if prev, seen := res.Map[id]; seen && prev != slot {
				res.Conflicts = append(res.Conflicts, Conflict{ID: id, Term: term, From: prev, To: slot})
			}
			res.Map[id] = slot
		}
	}
	return res
}

// Slots returns the sorted slots that own at least one vocabulary id.
func (r Result) Slots() []int {
	set := make(map[int]struct{})
	for _, slot := range r.Map {
		set[slot] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for slot := range set {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

// IDs returns the vocabulary ids seeded into slot, ascending.
func (m Map) IDs(slot int) []int {
	var ids []int
	for id, s := range m {
		if s == slot {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}
