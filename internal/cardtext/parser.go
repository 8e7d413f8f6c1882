// Package cardtext turns delimiter-separated text into term/description pairs and back.
package cardtext

import (
	"regexp"
	"strings"

	"github.com/vytor/brainyflash/internal/models"
)

// DefaultDelimiter separates a term from its description when none is given.
const DefaultDelimiter = ":"

// MaxPromptChars bounds how much source text is forwarded to a completion service.
const MaxPromptChars = 4000

// Parse splits text into pairs. Each non-blank line is split on the first occurrence
// of delimiter; lines without it, or with an empty side after trimming, are dropped.
func Parse(text, delimiter string) []models.CardPair {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	var pairs []models.CardPair
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term, desc, ok := strings.Cut(line, delimiter)
		if !ok {
			continue
		}
		term = strings.TrimSpace(term)
		desc = strings.TrimSpace(desc)
		if term == "" || desc == "" {
			continue
		}
		pairs = append(pairs, models.CardPair{Term: term, Description: desc})
	}
	return pairs
}

// Format renders pairs one per line as "term<delimiter> description".
func Format(pairs []models.CardPair, delimiter string) string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, p.Term+delimiter+" "+p.Description)
	}
	return strings.Join(lines, "\n")
}

// Merge puts direct pairs ahead of generated ones, skips generated terms already
// present, and truncates to count.
func Merge(direct, generated []models.CardPair, count int) []models.CardPair {
	if count <= 0 {
		return nil
	}
	seen := make(map[string]bool, len(direct))
	out := make([]models.CardPair, 0, count)
	for _, p := range direct {
		if len(out) == count {
			return out
		}
		seen[strings.ToLower(p.Term)] = true
		out = append(out, p)
	}
	for _, p := range generated {
		if len(out) == count {
			break
		}
		key := strings.ToLower(p.Term)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// Excerpt returns at most MaxPromptChars characters of text.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxPromptChars {
		return text
	}
	return string(runes[:MaxPromptChars])
}

var listMarkerRe = regexp.MustCompile(`^(\d+[.)]|[-*•])\s*`)

// ListItems splits a completion response into cleaned, non-empty lines with any
// numbering or bullet marker removed.
func ListItems(text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(listMarkerRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
