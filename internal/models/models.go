package models

import (
	"encoding/json"
	"strings"
)

// Permission is the canonical collaborator grant level.
type Permission string

const (
	PermissionViewer Permission = "viewer"
	PermissionEditor Permission = "editor"
	PermissionOwner  Permission = "owner"
)

// permissionAliases maps every accepted spelling, canonical and legacy, to the canonical level.
var permissionAliases = map[string]Permission{
	"viewer": PermissionViewer,
	"editor": PermissionEditor,
	"owner":  PermissionOwner,
	"read":   PermissionViewer,
	"write":  PermissionEditor,
	"admin":  PermissionOwner,
}

// ParsePermission normalizes a permission name. Legacy read/write/admin names are accepted.
func ParsePermission(s string) (Permission, bool) {
	p, ok := permissionAliases[strings.ToLower(strings.TrimSpace(s))]
	return p, ok
}

// AccessLevel is the effective permission a caller holds on a set.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessViewer
	AccessEditor
	AccessOwner
)

func (a AccessLevel) String() string {
	switch a {
	case AccessViewer:
		return "viewer"
	case AccessEditor:
		return "editor"
	case AccessOwner:
		return "owner"
	default:
		return "none"
	}
}

func (a AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// AccessFromPermission converts a stored grant into an access level.
func AccessFromPermission(p Permission) AccessLevel {
	switch p {
	case PermissionViewer:
		return AccessViewer
	case PermissionEditor:
		return AccessEditor
	case PermissionOwner:
		return AccessOwner
	default:
		return AccessNone
	}
}

// StudyMode is the kind of study interaction a session records.
type StudyMode string

const (
	ModeFlashcard      StudyMode = "flashcard"
	ModeMultipleChoice StudyMode = "multiple_choice"
	ModeWritten        StudyMode = "written"
	ModeMatching       StudyMode = "matching"
	ModeTest           StudyMode = "test"
)

func (m StudyMode) Valid() bool {
	switch m {
	case ModeFlashcard, ModeMultipleChoice, ModeWritten, ModeMatching, ModeTest:
		return true
	}
	return false
}

// Difficulty is the self-reported rating of a flashcard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// CardPair is a term/description pair produced by text parsing or generation.
type CardPair struct {
	Term        string `json:"term"`
	Description string `json:"description"`
}
