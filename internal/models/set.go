package models

import "time"

type Set struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Tags            []string  `json:"tags"`
	IsPublic        bool      `json:"is_public"`
	IsCollaborative bool      `json:"is_collaborative"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	OwnerUsername   *string   `json:"owner_username,omitempty"`
	FlashcardCount  int       `json:"flashcard_count"`
}

type SetPatch struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Tags            *[]string `json:"tags"`
	IsPublic        *bool     `json:"is_public"`
	IsCollaborative *bool     `json:"is_collaborative"`
}

func (p SetPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil && p.IsPublic == nil && p.IsCollaborative == nil
}

// SetFilter selects sets visible to ViewerID. An empty ViewerID means an anonymous caller.
type SetFilter struct {
	ViewerID   string
	Search     string
	Tags       []string
	PublicOnly bool
	OwnerID    string
	Limit      int
	Offset     int
}

type SetDetail struct {
	Set
	Flashcards    []Flashcard    `json:"flashcards"`
	Access        AccessLevel    `json:"access"`
	IsFavorited   bool           `json:"is_favorited"`
	Collaborators []Collaborator `json:"collaborators,omitempty"`
}

type Flashcard struct {
	ID            string    `json:"id"`
	SetID         string    `json:"set_id"`
	Term          string    `json:"term"`
	Description   string    `json:"description"`
	ImageURL      *string   `json:"image_url"`
	AIReviewNotes *string   `json:"ai_review_notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type FlashcardPatch struct {
	Term          *string `json:"term"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url"`
	AIReviewNotes *string `json:"ai_review_notes"`
}

func (p FlashcardPatch) Empty() bool {
	return p.Term == nil && p.Description == nil && p.ImageURL == nil && p.AIReviewNotes == nil
}

type Collaborator struct {
	ID         string     `json:"id"`
	SetID      string     `json:"set_id"`
	UserID     string     `json:"user_id"`
	Permission Permission `json:"permission"`
	CreatedAt  time.Time  `json:"created_at"`
	Email      string     `json:"email"`
	Username   *string    `json:"username"`
}

type ShareLink struct {
	ID        string     `json:"id"`
	SetID     string     `json:"set_id"`
	CreatedBy string     `json:"created_by"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	URL       string     `json:"url,omitempty"`
}

// Expired reports whether the link's expiry lies at or before now.
func (l ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// SharedSet is what a share token resolves to.
type SharedSet struct {
	Set             Set         `json:"set"`
	Flashcards      []Flashcard `json:"flashcards"`
	CreatorUsername *string     `json:"creator_username"`
	UserAccess      string      `json:"user_access"`
	ExpiresAt       *time.Time  `json:"expires_at"`
}

type UploadResult struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
