package vocab

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Predicate decides whether a token is eligible for the vocabulary.
type Predicate func(token string) bool

// DefaultPredicate rejects purely numeric tokens and tokens of length <= 1.
// Length is counted in runes so single CJK characters are rejected too.
func DefaultPredicate(token string) bool {
	return utf8.RuneCountInString(token) > 1 && !isNumericOnly(token)
}

// MinLength accepts tokens with at least n runes.
func MinLength(n int) Predicate {
	return func(token string) bool {
		return utf8.RuneCountInString(token) >= n
	}
}

// Stopwords rejects the given terms (case-insensitive).
func Stopwords(terms []string) Predicate {
	stops := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		stops[strings.ToLower(t)] = struct{}{}
	}
	return func(token string) bool {
		_, ok := stops[strings.ToLower(token)]
		return !ok
	}
}

// All accepts a token only if every predicate does. Nil predicates are ignored.
func All(preds ...Predicate) Predicate {
	return func(token string) bool {
		for _, p := range preds {
			if p != nil && !p(token) {
				return false
			}
		}
		return true
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(token string) bool {
		return !p(token)
	}
}

// Filter returns a new slice with the tokens accepted by pred.
// The input slice is never modified.
func Filter(tokens []string, pred Predicate) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if pred(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// isNumericOnly returns true if every rune is a digit.
func isNumericOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
