package feedback

import (
	"time"

	"github.com/google/uuid"
)

type ReactionType string

const (
	ReactionTypo             ReactionType = "typo"
	ReactionConfused         ReactionType = "confused"
	ReactionCalculationError ReactionType = "calculation_error"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionTypo, ReactionConfused, ReactionCalculationError:
		return true
	}
	return false
}

// Reaction is student feedback filed against one section of one lecture
// version. Addressed flips to true only when a teacher approves or rejects a
// suggestion for the same (lecture, section).
type Reaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	LectureID uuid.UUID `gorm:"type:uuid;not null;index:idx_reaction_lecture_section,priority:1" json:"lectureId"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index:idx_reaction_lecture_section,priority:2" json:"sectionId"`
	UserID    string    `gorm:"column:user_id;not null;index" json:"userId"`

	Type    ReactionType `gorm:"column:type;not null" json:"type"`
	Comment string       `gorm:"column:comment;type:text;not null;default:''" json:"comment"`

	Addressed bool `gorm:"column:addressed;not null;default:false;index" json:"addressed"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Reaction) TableName() string { return "reaction" }
