package cardtext_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/brainyflash/internal/cardtext"
	"github.com/vytor/brainyflash/internal/models"
)

func TestParse(t *testing.T) {
	pairs := cardtext.Parse("Mitochondria: powerhouse of the cell\nDNA: genetic code", ":")

	assert.Equal(t, []models.CardPair{
		{Term: "Mitochondria", Description: "powerhouse of the cell"},
		{Term: "DNA", Description: "genetic code"},
	}, pairs)
}

func TestParse_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		delimiter string
		want      []models.CardPair
	}{
		{
			name:      "splits on first delimiter only",
			text:      "Ratio: 1:2:3",
			delimiter: ":",
			want:      []models.CardPair{{Term: "Ratio", Description: "1:2:3"}},
		},
		{
			name:      "drops lines without delimiter and blank lines",
			text:      "heading\n\n   \nA - first letter",
			delimiter: " - ",
			want:      []models.CardPair{{Term: "A", Description: "first letter"}},
		},
		{
			name:      "drops empty term or description",
			text:      ": orphan\nlonely:\n  :  \nok: fine",
			delimiter: ":",
			want:      []models.CardPair{{Term: "ok", Description: "fine"}},
		},
		{
			name:      "windows line endings",
			text:      "a: b\r\nc: d\r\n",
			delimiter: ":",
			want:      []models.CardPair{{Term: "a", Description: "b"}, {Term: "c", Description: "d"}},
		},
		{
			name:      "empty delimiter falls back to colon",
			text:      "x: y",
			delimiter: "",
			want:      []models.CardPair{{Term: "x", Description: "y"}},
		},
		{
			name:      "nothing parseable",
			text:      "just prose without structure",
			delimiter: ":",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cardtext.Parse(tt.text, tt.delimiter))
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	delimiters := []string{":", " - ", "|", "=>"}
	pairs := []models.CardPair{
		{Term: "Photosynthesis", Description: "plants turning light into sugar"},
		{Term: "Osmosis", Description: "water moving across a membrane"},
		{Term: "ATP", Description: "energy currency of the cell"},
	}

	for _, d := range delimiters {
		t.Run(d, func(t *testing.T) {
			assert.Equal(t, pairs, cardtext.Parse(cardtext.Format(pairs, d), d))
		})
	}
}

func TestMerge(t *testing.T) {
	direct := []models.CardPair{{Term: "A", Description: "1"}, {Term: "B", Description: "2"}}
	generated := []models.CardPair{{Term: "b", Description: "dup"}, {Term: "C", Description: "3"}, {Term: "D", Description: "4"}}

	got := cardtext.Merge(direct, generated, 3)
	assert.Equal(t, []models.CardPair{
		{Term: "A", Description: "1"},
		{Term: "B", Description: "2"},
		{Term: "C", Description: "3"},
	}, got)

	got = cardtext.Merge(direct, generated, 1)
	assert.Equal(t, []models.CardPair{{Term: "A", Description: "1"}}, got)
}

func TestExcerpt(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, cardtext.Excerpt(short))

	long := strings.Repeat("é", cardtext.MaxPromptChars+10)
	got := cardtext.Excerpt(long)
	require.Len(t, []rune(got), cardtext.MaxPromptChars)
}

func TestListItems(t *testing.T) {
	got := cardtext.ListItems("1. The sun\n2) The moon\n- A comet\n\n* Mars\nplain line")
	assert.Equal(t, []string{"The sun", "The moon", "A comet", "Mars", "plain line"}, got)
}
