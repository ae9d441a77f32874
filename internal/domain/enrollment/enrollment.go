package enrollment

import "time"

// Enrollment links a student to a course. Both ids come from the identity
// collaborator and are opaque here.
type Enrollment struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"userId"`
	CourseID  string    `gorm:"column:course_id;primaryKey" json:"courseId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (Enrollment) TableName() string { return "enrollment" }
