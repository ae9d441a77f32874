package lectures

import (
	"time"

	"github.com/google/uuid"
)

// Lecture is one immutable version of a base lecture.
// IsCurrent is the only column ever updated after insert.
type Lecture struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	BaseLectureID uuid.UUID `gorm:"type:uuid;not null;index:idx_lecture_base_version,unique,priority:1" json:"baseLectureId"`
	Version       int       `gorm:"column:version;not null;index:idx_lecture_base_version,unique,priority:2" json:"version"`
	IsCurrent     bool      `gorm:"column:is_current;not null;default:false;index" json:"isCurrent"`

	Title     string `gorm:"column:title;not null" json:"title"`
	TeacherID string `gorm:"column:teacher_id;not null;index" json:"teacherId"`
	CourseID  string `gorm:"column:course_id;not null;index" json:"courseId"`

	Sections []Section `gorm:"foreignKey:LectureID;references:ID" json:"sections"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (Lecture) TableName() string { return "lecture" }

// SectionByID returns the section with the given id, or nil.
func (l *Lecture) SectionByID(id uuid.UUID) *Section {
	if l == nil {
		return nil
	}
	for i := range l.Sections {
		if l.Sections[i].ID == id {
			return &l.Sections[i]
		}
	}
	return nil
}

// Section is an ordered unit of lecture content. ID is stable across the
// versions that carry the section forward, so rows are keyed by
// (lecture_id, id).
type Section struct {
	LectureID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Order     int       `gorm:"column:position;not null" json:"order"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
}

func (Section) TableName() string { return "lecture_section" }

// LectureHead is the single-writer index of the current version per base
// lecture. ID is the base lecture id; Version is bumped with compare-and-set
// on every fork.
type LectureHead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"baseLectureId"`
	Version   int       `gorm:"column:version;not null" json:"version"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lectureId"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (LectureHead) TableName() string { return "lecture_head" }
