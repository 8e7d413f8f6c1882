package flashcard

import (
	"math/rand/v2"
	"strings"

	"github.com/vytor/brainyflash/internal/models"
)

// DefaultDistractors is how many incorrect options a multiple-choice question gets.
const DefaultDistractors = 3

// Distractors picks up to count distinct candidates that differ from correct,
// in random order. Comparison ignores case and surrounding whitespace.
func Distractors(correct string, candidates []string, count int, rng *rand.Rand) []string {
	if count <= 0 {
		return nil
	}
	seen := map[string]bool{normalize(correct): true}
	pool := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := normalize(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, strings.TrimSpace(c))
	}
	shuffle(rng, len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

// FillDistractors appends extra options not already present until have reaches count.
func FillDistractors(correct string, have, extra []string, count int) []string {
	seen := map[string]bool{normalize(correct): true}
	for _, h := range have {
		seen[normalize(h)] = true
	}
	out := append([]string(nil), have...)
	for _, e := range extra {
		if len(out) >= count {
			break
		}
		key := normalize(e)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(e))
	}
	return out
}

// BuildQuestion assembles a multiple-choice question for card. The correct answer is
// included exactly once and the options are shuffled.
func BuildQuestion(card models.Flashcard, distractors []string, rng *rand.Rand) models.MultipleChoiceQuestion {
	options := make([]string, 0, len(distractors)+1)
	options = append(options, card.Description)
	for _, d := range distractors {
		if normalize(d) != normalize(card.Description) {
			options = append(options, d)
		}
	}
	shuffle(rng, len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	idx := 0
	for i, o := range options {
		if o == card.Description {
			idx = i
			break
		}
	}
	return models.MultipleChoiceQuestion{
		FlashcardID:   card.ID,
		Term:          card.Term,
		Options:       options,
		CorrectAnswer: card.Description,
		CorrectIndex:  idx,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func shuffle(rng *rand.Rand, n int, swap func(i, j int)) {
	if rng != nil {
		rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}
