// Package filter evaluates tag, rating and score predicates over metadata
// records. A Spec is a logical AND of independent clauses; an empty clause
// never disqualifies a record.
package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/booru-curator/internal/metadata"
)

// Spec describes which records should be selected. The zero value matches
// every record.
type Spec struct {
	RequiredTags map[string]struct{} // all must be present
	BannedTags   map[string]struct{} // none may be present
	AtLeastTags  map[string]struct{} // at least AtLeastNum must be present
	AtLeastNum   int
	Ratings      map[string]struct{} // allowed ratings, empty = allow all
	MinScore     *int                // nil = unbounded
	MaxScore     *int                // nil = unbounded
}

// Matches reports whether the record satisfies every clause of the spec.
// It is pure and total: a record missing a field simply fails the clause
// that needs it, it never produces an error.
func (s Spec) Matches(r metadata.Record) bool {
	for tag := range s.RequiredTags {
		if !r.HasTag(tag) {
			return false
		}
	}

	for tag := range s.BannedTags {
		if r.HasTag(tag) {
			return false
		}
	}

	// The at-least clause is vacuous without tags to count, regardless of
	// AtLeastNum.
	if len(s.AtLeastTags) > 0 {
		found := 0
		for tag := range s.AtLeastTags {
			if r.HasTag(tag) {
				found++
			}
		}
		if found < s.AtLeastNum {
			return false
		}
	}

	if len(s.Ratings) > 0 {
		if _, ok := s.Ratings[r.Rating]; !ok {
			return false
		}
	}

	if s.MinScore != nil && r.Score < *s.MinScore {
		return false
	}
	if s.MaxScore != nil && r.Score > *s.MaxScore {
		return false
	}

	return true
}

// Validate checks the spec for configuration errors. It runs once at
// startup, before any record is scanned.
func (s Spec) Validate() error {
	if s.AtLeastNum < 0 {
		return fmt.Errorf("atleast-num must not be negative, got %d", s.AtLeastNum)
	}
	if s.MinScore != nil && s.MaxScore != nil && *s.MinScore > *s.MaxScore {
		return fmt.Errorf("score range is empty: min %d > max %d", *s.MinScore, *s.MaxScore)
	}
	return nil
}

// ParseTagSet splits a comma-separated flag value into a tag set. Tags are
// NFC-normalized to match the loader's normalization; empty items are
// dropped. An empty input yields an empty set, not a set with one empty tag.
func ParseTagSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		set[norm.NFC.String(item)] = struct{}{}
	}
	return set
}
