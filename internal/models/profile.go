package models

import "time"

type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    *string   `json:"username"`
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfilePatch holds optional profile updates; nil fields are left untouched.
type ProfilePatch struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.DisplayName == nil && p.AvatarURL == nil
}

type UserStats struct {
	TotalSets         int `json:"total_sets"`
	TotalFlashcards   int `json:"total_flashcards"`
	TotalSessions     int `json:"total_sessions"`
	TotalStudyMinutes int `json:"total_study_minutes"`
}
