package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrCorpusUnreadable    = errors.New("corpus unreadable")
	ErrUnresolvedSeedTerm  = errors.New("seed term not in vocabulary")
	ErrCountOverflow       = errors.New("term count overflow")
	ErrEmptyWeightVector   = errors.New("empty weight vector")
	ErrMalformedVocabulary = errors.New("malformed vocabulary listing")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrDuplicate           = errors.New("duplicate entry")
)
