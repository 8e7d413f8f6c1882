package models

import "time"

type StudySession struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	SetID            string     `json:"set_id"`
	Mode             StudyMode  `json:"mode"`
	CardsStudied     int        `json:"cards_studied"`
	CorrectAnswers   int        `json:"correct_answers"`
	TotalTimeSeconds int        `json:"total_time_seconds"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// SessionResult carries the counters written when a session ends.
type SessionResult struct {
	CardsStudied     int `json:"cards_studied"`
	CorrectAnswers   int `json:"correct_answers"`
	TotalTimeSeconds int `json:"total_time_seconds"`
}

type StudyProgress struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	FlashcardID      string     `json:"flashcard_id"`
	CorrectCount     int        `json:"correct_count"`
	IncorrectCount   int        `json:"incorrect_count"`
	LastStudied      *time.Time `json:"last_studied"`
	DifficultyRating Difficulty `json:"difficulty_rating"`
}

func (p StudyProgress) Attempts() int {
	return p.CorrectCount + p.IncorrectCount
}

// Attempt is one graded answer for a flashcard.
type Attempt struct {
	UserID      string
	FlashcardID string
	IsCorrect   bool
	Difficulty  *Difficulty
	At          time.Time
}

// CardProgress pairs a flashcard with the caller's progress on it, if any.
type CardProgress struct {
	Flashcard Flashcard      `json:"flashcard"`
	Progress  *StudyProgress `json:"progress"`
}

type SessionSummary struct {
	TotalSessions     int     `json:"total_sessions"`
	TotalCardsStudied int     `json:"total_cards_studied"`
	TotalCorrect      int     `json:"total_correct"`
	TotalTimeSeconds  int     `json:"total_time_seconds"`
	Accuracy          float64 `json:"accuracy"`
}

type StudyStats struct {
	Summary        SessionSummary  `json:"summary"`
	Progress       []StudyProgress `json:"progress"`
	RecentSessions []StudySession  `json:"recent_sessions"`
}

type MultipleChoiceQuestion struct {
	FlashcardID   string   `json:"flashcard_id"`
	Term          string   `json:"term"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	CorrectIndex  int      `json:"correct_index"`
}

type MatchingItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type MatchingRound struct {
	Terms       []MatchingItem `json:"terms"`
	Definitions []MatchingItem `json:"definitions"`
}

// MatchingPick maps a term's flashcard id to the definition id the user chose for it.
type MatchingPick struct {
	TermID       string `json:"term_id"`
	DefinitionID string `json:"definition_id"`
}

type MatchingResult struct {
	FlashcardID string `json:"flashcard_id"`
	Correct     bool   `json:"correct"`
}

type MatchingGrade struct {
	Results []MatchingResult `json:"results"`
	Correct int              `json:"correct"`
	Total   int              `json:"total"`
}

type StudySuggestions struct {
	NeedsPractice int         `json:"needs_practice"`
	Suggestions   []string    `json:"suggestions"`
	Recommended   []Flashcard `json:"recommended"`
}

type GenerationResult struct {
	Pairs          []CardPair  `json:"pairs"`
	ParsedCount    int         `json:"parsed_count"`
	GeneratedCount int         `json:"generated_count"`
	Partial        bool        `json:"partial"`
	Saved          []Flashcard `json:"saved,omitempty"`
}
