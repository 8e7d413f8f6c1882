package completion

import (
	"fmt"
	"strings"
)

const (
	flashcardSystem   = "You are an educational assistant that creates clear, concise flashcards. Each flashcard should have a term and a description."
	distractorSystem  = "You are an educational assistant that generates plausible but incorrect answers for multiple choice questions."
	suggestionsSystem = "You are an educational expert that provides practical study advice."
)

// FlashcardRequest asks for count flashcards drawn from text, one per line as
// "Term<delimiter> Description".
func FlashcardRequest(text string, count int, delimiter string) Request {
	prompt := fmt.Sprintf(`Generate %d educational flashcards from the following text.
Format each flashcard on its own line as: "Term%s Description"
Keep terms short and descriptions to one or two sentences. Do not number the lines.

Text:
%s`, count, delimiter, text)
	return Request{
		System:    flashcardSystem,
		Prompt:    prompt,
		MaxTokens: 1500,
	}
}

// DistractorRequest asks for count plausible but wrong answers for a term.
func DistractorRequest(term, correct string, count int) Request {
	prompt := fmt.Sprintf(`Generate %d plausible but incorrect answers for this flashcard.
Term: %s
Correct answer: %s
Return one answer per line, with no numbering and no explanation.`, count, term, correct)
	return Request{
		System:      distractorSystem,
		Prompt:      prompt,
		MaxTokens:   300,
		Temperature: 0.8,
	}
}

// SuggestionsRequest asks for three study strategies for a set, given how many
// cards still need practice and a sample of their terms.
func SuggestionsRequest(setTitle string, needsPractice int, terms []string) Request {
	prompt := fmt.Sprintf(`A student is studying the flashcard set "%s".
%d cards still need practice. Some of them: %s.
Suggest 3 specific, practical study strategies for this material.
Return one suggestion per line, with no numbering.`, setTitle, needsPractice, strings.Join(terms, ", "))
	return Request{
		System:    suggestionsSystem,
		Prompt:    prompt,
		MaxTokens: 400,
	}
}
