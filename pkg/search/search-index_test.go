package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndexTokenisesTitleDescriptionAndTags(t *testing.T) {
	tokens := BuildIndex("Abstract  Art", "a cracked  texture", []string{"African Heritage"})

	// consecutive spaces yield no empty tokens; tags survive whole, lower-cased
	assert.ElementsMatch(t,
		[]string{"abstract", "art", "a", "cracked", "texture", "african heritage"},
		tokens,
	)
}

func TestBuildIndexDeduplicates(t *testing.T) {
	tokens := BuildIndex("Sunset Sunset", "sunset over water", []string{"sunset", "water"})

	assert.ElementsMatch(t, []string{"sunset", "over", "water"}, tokens)
}

func TestBuildIndexNeverYieldsEmptyTokens(t *testing.T) {
	for _, tokens := range [][]string{
		BuildIndex("", "", nil),
		BuildIndex("   ", "  ", []string{""}),
		BuildIndex("a  b", " c ", []string{}),
	} {
		assert.NotContains(t, tokens, "")
	}
}

func TestBuildIndexEmptyInputs(t *testing.T) {
	assert.Empty(t, BuildIndex("", "", []string{}))
}

func TestBuildIndexKeepsMultiWordTags(t *testing.T) {
	tokens := BuildIndex("Still Life", "", []string{"oil on canvas"})

	// the tag matches only as a whole phrase, unlike title words
	assert.Contains(t, tokens, "oil on canvas")
	assert.NotContains(t, tokens, "oil")
	assert.NotContains(t, tokens, "canvas")
}

func TestNormaliseTerm(t *testing.T) {
	assert.Equal(t, "african heritage", NormaliseTerm("  African Heritage "))
	assert.Equal(t, "", NormaliseTerm("   "))
}
