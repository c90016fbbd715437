package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.kind
	}
	return out
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		words []string
		want  []tokenKind
	}{
		{"value unit range", []string{"24.67", "нмоль/л", "8.33-30.19"}, []tokenKind{tokValue, tokUnit, tokRange}},
		{"range spaced", []string{"3.4", "-", "6.3"}, []tokenKind{tokRange, tokRange, tokRange}},
		{"range dash on right", []string{"3.4", "-6.3"}, []tokenKind{tokRange, tokRange}},
		{"range dash on left", []string{"3.4-", "6.3"}, []tokenKind{tokRange, tokRange}},
		{"comparator symbol", []string{"<5.0"}, []tokenKind{tokComparator}},
		{"comparator word", []string{"до", "5.0"}, []tokenKind{tokComparator, tokComparator}},
		{"less than", []string{"less", "than", "5"}, []tokenKind{tokComparator, tokOther, tokComparator}},
		{"unit suffix", []string{"5.5ммоль/л"}, []tokenKind{tokUnit}},
		{"flagged value", []string{"7.9*", "(3.9-6.1)"}, []tokenKind{tokValue, tokRange}},
		{"comma decimal", []string{"5,5"}, []tokenKind{tokValue}},
		{"too many decimals", []string{"5.12345"}, []tokenKind{tokOther}},
		{"date is not a value", []string{"12.03.2024"}, []tokenKind{tokOther}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, kinds(classify(words(tc.words...))))
		})
	}
}

func TestClassify_ParsesValues(t *testing.T) {
	toks := classify(words("Глюкоза", "5,5", "3.9-6.1"))
	assert.Equal(t, []float64{5.5}, values(toks))
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber("5,5")
	require.True(t, ok)
	assert.Equal(t, 5.5, v)

	v, ok = ParseNumber(" 148↑ ")
	require.True(t, ok)
	assert.Equal(t, 148.0, v)

	for _, s := range []string{"", "abc", "3.4-6.3", "1234567", "-5"} {
		_, ok := ParseNumber(s)
		assert.False(t, ok, s)
	}
}

func TestJoinSplitDecimals(t *testing.T) {
	got := joinSplitDecimals(words("24.", "67", "нмоль/л"))
	require.Len(t, got, 2)
	assert.Equal(t, "24.67", got[0].Text)
	assert.Equal(t, 0, got[0].Box.X1)
	assert.Equal(t, 90, got[0].Box.X2)
}

func TestIsPending(t *testing.T) {
	assert.True(t, IsPending("Выполняется"))
	assert.True(t, IsPending("Тестостерон общий  в  работе"))
	assert.True(t, IsPending("In progress"))
	assert.False(t, IsPending("Глюкоза 5.5"))
	assert.Equal(t, "Глюкоза: pending (в работе)", PendingNote("Глюкоза"))
}
