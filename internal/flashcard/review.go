package flashcard

import (
	"sort"
	"time"

	"github.com/vytor/brainyflash/internal/models"
)

const (
	// MinAttempts is the attempt count below which a card still needs review.
	MinAttempts = 3
	// AccuracyThreshold is the accuracy below which a card still needs review.
	AccuracyThreshold = 0.70
)

// Accuracy returns correct/total, or 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// NeedsReview reports whether a card with the given progress qualifies for review:
// never studied, too few attempts, low accuracy, or rated hard.
func NeedsReview(p *models.StudyProgress) bool {
	if p == nil {
		return true
	}
	attempts := p.Attempts()
	if attempts < MinAttempts {
		return true
	}
	if Accuracy(p.CorrectCount, attempts) < AccuracyThreshold {
		return true
	}
	return p.DifficultyRating == models.DifficultyHard
}

// RecommendForReview filters cards that need review and orders them never-studied
// first, then by oldest last_studied. limit <= 0 returns all qualifying cards.
func RecommendForReview(cards []models.CardProgress, limit int) []models.CardProgress {
	out := make([]models.CardProgress, 0, len(cards))
	for _, c := range cards {
		if NeedsReview(c.Progress) {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := lastStudied(out[i]), lastStudied(out[j])
		switch {
		case ti == nil && tj == nil:
			return false
		case ti == nil:
			return true
		case tj == nil:
			return false
		default:
			return ti.Before(*tj)
		}
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func lastStudied(c models.CardProgress) *time.Time {
	if c.Progress == nil {
		return nil
	}
	return c.Progress.LastStudied
}
