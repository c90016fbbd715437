package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLines_GroupsRowsAndOrdersWords(t *testing.T) {
	words := []RecognizedWord{
		word("24.67", 400, 102, 460, 122),
		word("Глюкоза", 10, 151, 120, 171),
		word("Тестостерон", 10, 100, 150, 120),
		word("5.5", 400, 149, 430, 169),
		word("общий", 160, 101, 230, 121),
	}

	lines := BuildLines(words, 0.5)
	require.Len(t, lines, 2)
	assert.Equal(t, "Тестостерон общий 24.67", lines[0].Text())
	assert.Equal(t, "Глюкоза 5.5", lines[1].Text())
	assert.InDelta(t, 20.0, lines[0].Height(), 0.001)
}

func TestBuildLines_SplitsBeyondTolerance(t *testing.T) {
	words := []RecognizedWord{
		word("a", 0, 0, 10, 20),
		word("b", 20, 11, 30, 31), // center 21 vs 10, height 20 -> tol 10
	}
	assert.Len(t, BuildLines(words, 0.5), 2)
	assert.Len(t, BuildLines(words, 1), 1)
}

func TestBuildLines_Empty(t *testing.T) {
	assert.Nil(t, BuildLines(nil, 0.5))
}

func TestBuildLines_DoesNotMutateInput(t *testing.T) {
	words := []RecognizedWord{word("b", 50, 0, 60, 10), word("a", 0, 0, 10, 10)}
	_ = BuildLines(words, 0.5)
	assert.Equal(t, "b", words[0].Text)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "тестостерон свободный", NormalizeLabel("  Тестостерон\tСВОБОДНЫЙ "))
	assert.Equal(t, "е", NormalizeLabel("Ё"))
	assert.Equal(t, "", NormalizeLabel(""))
	// decomposed "й" (и + combining breve) composes to the single rune
	assert.Equal(t, "общий", NormalizeLabel("общии\u0306"))
}

func TestFilterByConfidence(t *testing.T) {
	words := []RecognizedWord{
		{Text: "a", Confidence: 95},
		{Text: "b", Confidence: 40},
		{Text: "c", Confidence: 60},
	}
	pw := FilterByConfidence(2, words, 60)
	assert.Equal(t, 2, pw.Index)
	require.Len(t, pw.Words, 2)
	assert.Equal(t, "a", pw.Words[0].Text)
	assert.Equal(t, "c", pw.Words[1].Text)
	assert.InDelta(t, 65.0, pw.MeanConfidence, 0.001)

	assert.Zero(t, FilterByConfidence(0, nil, 60).MeanConfidence)
}
