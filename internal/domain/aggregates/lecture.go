package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-feedback-backend/internal/domain/lectures"
)

var LectureAggregateContract = Contract{
	Name:   "Content.LectureAggregate",
	Writes: []string{"lecture", "lecture_section", "lecture_head"},
	Notes:  "Owns lecture version chains: initial creation, single-section forks and the lecture_head index.",
}

// LectureAggregate owns version chain invariants.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeInvariantViolation, CodeInternal.
type LectureAggregate interface {
	Aggregate

	// CreateInitial allocates a new base lecture with version 1 marked current.
	CreateInitial(ctx context.Context, in CreateLectureInput) (*lectures.Lecture, error)

	// Fork creates version parent+1 with one section's text replaced and
	// clears the parent's current flag.
	Fork(ctx context.Context, in ForkLectureInput) (*lectures.Lecture, error)
}

type CreateLectureInput struct {
	Title     string   `validate:"notblank"`
	TeacherID string   `validate:"notblank"`
	CourseID  string   `validate:"notblank"`
	Sections  []string `validate:"min=1"`
}

type ForkLectureInput struct {
	ParentLectureID uuid.UUID
	SectionID       uuid.UUID
	NewText         string
}
