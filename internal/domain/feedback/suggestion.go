package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionAccepted SuggestionStatus = "accepted"
	SuggestionRejected SuggestionStatus = "rejected"
)

func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionPending, SuggestionAccepted, SuggestionRejected:
		return true
	}
	return false
}

func (s SuggestionStatus) Terminal() bool {
	return s == SuggestionAccepted || s == SuggestionRejected
}

// Suggestion is a proposed replacement for one section's text.
// pending -> accepted | rejected; terminal states never change.
type Suggestion struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	LectureID uuid.UUID `gorm:"type:uuid;not null;index:idx_suggestion_lecture_section,priority:1" json:"lectureId"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index:idx_suggestion_lecture_section,priority:2" json:"sectionId"`

	OriginalText  string `gorm:"column:original_text;type:text;not null" json:"originalText"`
	SuggestedText string `gorm:"column:suggested_text;type:text;not null" json:"suggestedText"`

	Status SuggestionStatus `gorm:"column:status;not null;index" json:"status"`

	// Set when accepted: the lecture version the approval produced.
	ResultLectureID *uuid.UUID `gorm:"type:uuid" json:"resultLectureId,omitempty"`
	// Set when a regeneration superseded this pending suggestion.
	SupersededByID  *uuid.UUID `gorm:"type:uuid" json:"supersededById,omitempty"`
	GenerationRunID *uuid.UUID `gorm:"type:uuid;index" json:"generationRunId,omitempty"`

	CreatedAt  time.Time  `gorm:"not null;index" json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

func (Suggestion) TableName() string { return "suggestion" }

// GenerationRun records one GenerateSuggestions call, including sections the
// text generator failed on.
type GenerationRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;index" json:"lectureId"`

	// allow|skip|supersede
	Policy string `gorm:"column:policy;not null" json:"policy"`

	Requested int `gorm:"column:requested;not null;default:0" json:"requested"`
	Created   int `gorm:"column:created;not null;default:0" json:"created"`

	Failures   datatypes.JSON `gorm:"column:failures" json:"failures"`
	Skipped    datatypes.JSON `gorm:"column:skipped" json:"skipped"`
	Duplicates datatypes.JSON `gorm:"column:duplicates" json:"duplicates"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (GenerationRun) TableName() string { return "suggestion_generation_run" }
