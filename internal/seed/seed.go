// Package seed loads sample courses, enrollments and lectures from YAML.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	domainagg "github.com/yungbote/lecture-feedback-backend/internal/domain/aggregates"
	"github.com/yungbote/lecture-feedback-backend/internal/pkg/logger"
	"github.com/yungbote/lecture-feedback-backend/internal/services"
)

type File struct {
	Enrollments []Enrollment `yaml:"enrollments"`
	Lectures    []Lecture    `yaml:"lectures"`
}

type Enrollment struct {
	UserID   string `yaml:"userId"`
	CourseID string `yaml:"courseId"`
}

type Lecture struct {
	Title     string   `yaml:"title"`
	TeacherID string   `yaml:"teacherId"`
	CourseID  string   `yaml:"courseId"`
	Sections  []string `yaml:"sections"`
}

type Result struct {
	Enrollments     int
	LecturesCreated int
	LecturesSkipped int
}

func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, l := range f.Lectures {
		if strings.TrimSpace(l.Title) == "" || len(l.Sections) == 0 {
			return nil, fmt.Errorf("seed lecture %d: title and sections are required", i)
		}
	}
	return &f, nil
}

// Apply writes f through the services. A lecture whose teacher already owns
// a lecture with the same title is skipped, so applying twice is harmless.
func Apply(ctx context.Context, log *logger.Logger, f *File, lectures services.LectureService, feedback services.FeedbackService, query services.QueryService) (Result, error) {
	var res Result
	if f == nil {
		return res, nil
	}
	for _, e := range f.Enrollments {
		if _, err := feedback.Enroll(ctx, e.UserID, e.CourseID); err != nil {
			return res, fmt.Errorf("enroll %s in %s: %w", e.UserID, e.CourseID, err)
		}
		res.Enrollments++
	}

	titles := map[string]map[string]bool{}
	for _, l := range f.Lectures {
		owned, ok := titles[l.TeacherID]
		if !ok {
			existing, err := query.AllLecturesForTeacher(ctx, l.TeacherID)
			if err != nil {
				return res, fmt.Errorf("list lectures for %s: %w", l.TeacherID, err)
			}
			owned = map[string]bool{}
			for _, item := range existing {
				owned[item.Title] = true
			}
			titles[l.TeacherID] = owned
		}
		if owned[l.Title] {
			res.LecturesSkipped++
			continue
		}
		lec, err := lectures.CreateInitialLecture(ctx, domainagg.CreateLectureInput{
			Title:     l.Title,
			TeacherID: l.TeacherID,
			CourseID:  l.CourseID,
			Sections:  l.Sections,
		})
		if err != nil {
			return res, fmt.Errorf("create lecture %q: %w", l.Title, err)
		}
		owned[l.Title] = true
		res.LecturesCreated++
		if log != nil {
			log.Info("seeded lecture", "lecture_id", lec.ID, "title", lec.Title, "teacher_id", lec.TeacherID)
		}
	}
	return res, nil
}
