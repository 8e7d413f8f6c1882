package flashcard

import (
	"math/rand/v2"

	"github.com/vytor/brainyflash/internal/models"
)

// DefaultMatchingSize is the number of pairs in a matching round.
const DefaultMatchingSize = 6

// NewMatchingRound picks up to size random cards and returns their terms plus the
// same cards' descriptions in an independent random order.
func NewMatchingRound(cards []models.Flashcard, size int, rng *rand.Rand) models.MatchingRound {
	if size <= 0 {
		size = DefaultMatchingSize
	}
	picked := append([]models.Flashcard(nil), cards...)
	shuffle(rng, len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > size {
		picked = picked[:size]
	}

	round := models.MatchingRound{
		Terms:       make([]models.MatchingItem, 0, len(picked)),
		Definitions: make([]models.MatchingItem, 0, len(picked)),
	}
	for _, c := range picked {
		round.Terms = append(round.Terms, models.MatchingItem{ID: c.ID, Text: c.Term})
		round.Definitions = append(round.Definitions, models.MatchingItem{ID: c.ID, Text: c.Description})
	}
	defs := round.Definitions
	shuffle(rng, len(defs), func(i, j int) { defs[i], defs[j] = defs[j], defs[i] })
	return round
}

// GradeMatching checks each pick against cards. A pick is correct when the chosen
// definition belongs to the same card as the term, or carries an identical description.
// Picks for unknown terms are ignored.
func GradeMatching(cards []models.Flashcard, picks []models.MatchingPick) models.MatchingGrade {
	byID := make(map[string]models.Flashcard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	grade := models.MatchingGrade{Results: make([]models.MatchingResult, 0, len(picks))}
	graded := make(map[string]bool, len(picks))
	for _, p := range picks {
		term, ok := byID[p.TermID]
		if !ok || graded[p.TermID] {
			continue
		}
		graded[p.TermID] = true

		correct := p.DefinitionID == p.TermID
		if !correct {
			if def, ok := byID[p.DefinitionID]; ok {
				correct = normalize(def.Description) == normalize(term.Description)
			}
		}
		grade.Results = append(grade.Results, models.MatchingResult{FlashcardID: p.TermID, Correct: correct})
		grade.Total++
		if correct {
			grade.Correct++
		}
	}
	return grade
}
