package tag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Rock":             "rock",
		"  Deep   House  ": "deep-house",
		"drum & bass":      "drum-bass",
		"--lo--fi--":       "lo-fi",
		"Hip-Hop!!":        "hip-hop",
		"tab\tseparated":   "tab-separated",
		"2000s":            "2000s",
		"":                 "",
		"a - b":            "a-b",
		"\u65e5\u672c":     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("a", 49) + " " + strings.Repeat("b", 10)
	assert.Equal(t, strings.Repeat("a", 49), Slugify(long))
}

func TestNormalizeDedupesPreservingOrder(t *testing.T) {
	got := Normalize([]string{"Rock", "chill", "ROCK", " ", "!!", "Chill "})
	assert.Equal(t, []string{"rock", "chill"}, got)
	assert.Empty(t, Normalize(nil))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"rock", "lo-fi"}, Split("rock, Lo Fi ,rock"))
	assert.Nil(t, Split("  "))
}
