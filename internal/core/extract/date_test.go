package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		y, m, d int
	}{
		{"12.03.2024", 2024, 3, 12},
		{"Дата: 01/02/2023 г", 2023, 2, 1},
		{"collected 2024-11-05 08:10", 2024, 11, 5},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		require.True(t, ok, tc.in)
		assert.Equal(t, time.Date(tc.y, time.Month(tc.m), tc.d, 0, 0, 0, 0, time.UTC), got, tc.in)
	}

	for _, in := range []string{"31.02.2024", "5.5", "8.33-30.19", "99/99/9999"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestDetectReportDate_PrefersKeywordLine(t *testing.T) {
	lines := []string{
		"Дата рождения отсутствует",
		"Бланк 01.01.2020",
		"Дата взятия образца 14.06.2024",
	}
	got, ok := DetectReportDate(lines)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), got)
}

func TestDetectReportDate_FallsBackToFirst(t *testing.T) {
	got, ok := DetectReportDate([]string{"Глюкоза 5.5", "Бланк 01.01.2020", "02.02.2021"})
	require.True(t, ok)
	assert.Equal(t, 2020, got.Year())

	_, ok = DetectReportDate([]string{"Глюкоза 5.5"})
	assert.False(t, ok)
}

func TestDetectReportDate_SkipsBirthDate(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  time.Time
		found bool
	}{
		{
			name: "birth date above collection date",
			lines: []string{
				"Пациент: Иванов И.И. Дата рождения: 15.04.1985",
				"Дата взятия биоматериала: 12.03.2024",
			},
			want:  time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
			found: true,
		},
		{
			name:  "birth date is not a fallback",
			lines: []string{"Date of birth 1990-01-20", "Glucose 5.5", "2024-05-06"},
			want:  time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
			found: true,
		},
		{
			name:  "only a birth date",
			lines: []string{"Дата рождения 15.04.1985"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectReportDate(tc.lines)
			require.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
