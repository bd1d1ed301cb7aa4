// Package search derives the exact-match token index attached to artworks and
// rebuilds it in bulk when required.
package search

import "strings"

// BuildIndex tokenises an artwork's title, description and tags into a deduplicated
// set of lowercase search tokens, returned in first occurrence order.
//
// Titles and descriptions split on single spaces; tags are kept whole, so a tag such
// as "african heritage" remains one token and matches only as a phrase. Runs of
// spaces produce empty tokens which are discarded. No stemming, no punctuation
// stripping, no stop words: searches match whole tokens only.
func BuildIndex(title, description string, tags []string) []string {
	var candidates = make([]string, 0, len(tags)+8)
	candidates = append(candidates, strings.Split(strings.ToLower(title), " ")...)
	candidates = append(candidates, strings.Split(strings.ToLower(description), " ")...)
	for _, tag := range tags {
		candidates = append(candidates, strings.ToLower(tag))
	}

	var seen = make(map[string]struct{}, len(candidates))
	var tokens = make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, found := seen[candidate]; found {
			continue
		}
		seen[candidate] = struct{}{}
		tokens = append(tokens, candidate)
	}
	return tokens
}

// NormaliseTerm prepares a user supplied search term for index containment lookups,
// mirroring the tokenisation rules of BuildIndex.
func NormaliseTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
