package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 16, 10, 0, 0, 0, time.Local)

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestParseDateTarget(t *testing.T) {
	cases := []struct {
		in       string
		from, to string
	}{
		{"", "<nil>", "<nil>"},
		{"all", "<nil>", "<nil>"},
		{"past", "<nil>", "2024-03-15"},
		{"future", "2024-03-17", "<nil>"},
		{"today", "2024-03-16", "2024-03-16"},
		{"Yesterday", "2024-03-15", "2024-03-15"},
		{"tomorrow", "2024-03-17", "2024-03-17"},
		{"last week", "2024-03-09", "2024-03-15"},
		{"last-week", "2024-03-09", "2024-03-15"},
		{"last-month", "2024-02-15", "2024-03-15"},
		{"next-week", "2024-03-17", "2024-03-23"},
		{"next month", "2024-03-17", "2024-04-15"},
		{"2023-12-31", "2023-12-31", "2023-12-31"},
	}
	for _, c := range cases {
		r, err := ParseDateTarget(c.in, fixedNow)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.from, deref(r.From), c.in)
		assert.Equal(t, c.to, deref(r.To), c.in)
	}
}

func TestParseDateTarget_Invalid(t *testing.T) {
	for _, in := range []string{"someday", "2024-13-01", "16/03/2024"} {
		_, err := ParseDateTarget(in, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestParseDateSource(t *testing.T) {
	d, err := ParseDateSource("today", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", deref(d))

	d, err = ParseDateSource("", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", deref(d))

	d, err = ParseDateSource("yesterday", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", deref(d))

	d, err = ParseDateSource("none", fixedNow)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDateSource("2025-01-01", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", deref(d))

	_, err = ParseDateSource("last week", fixedNow)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
