package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/labreport-import/constants"
)

func TestAcceptFirstValueWins(t *testing.T) {
	r := NewExtractionResult()

	assert.True(t, r.Accept(constants.Glucose, 5.5))
	assert.False(t, r.Accept(constants.Glucose, 7.1))
	assert.Equal(t, 5.5, r.Values[constants.Glucose])
	assert.True(t, r.HasValues())
}

func TestAcceptOnZeroValue(t *testing.T) {
	var r ExtractionResult
	assert.True(t, r.Accept(constants.ALT, 23))
	assert.True(t, r.Has(constants.ALT))
}

func TestAddUnrecognizedSkipsDuplicates(t *testing.T) {
	r := NewExtractionResult()
	r.AddUnrecognized("Ферритин: pending")
	r.AddUnrecognized("Ферритин: pending")
	r.AddUnrecognized("")

	other := NewExtractionResult()
	other.AddUnrecognized("vision: service unavailable")
	other.AddUnrecognized("Ферритин: pending")
	r.MergeDiagnostics(other)

	assert.Equal(t, []string{"Ферритин: pending", "vision: service unavailable"}, r.UnrecognizedItems)
}
