package realtime

import (
	"strings"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventReactionCreated       SSEEvent = "reaction.created"
	SSEEventSuggestionsGenerated  SSEEvent = "suggestions.generated"
	SSEEventSuggestionAccepted    SSEEvent = "suggestion.accepted"
	SSEEventSuggestionRejected    SSEEvent = "suggestion.rejected"
	SSEEventLectureVersionCreated SSEEvent = "lecture.version_created"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// LectureChannel is the channel every event about a base lecture chain is
// published on. Subscribing by base id keeps a client attached across forks.
func LectureChannel(baseLectureID uuid.UUID) string {
	return "lecture:" + baseLectureID.String()
}

// TeacherChannel carries events for every lecture a teacher owns.
func TeacherChannel(teacherID string) string {
	return "teacher:" + strings.TrimSpace(teacherID)
}

// UserChannel carries events addressed to a single student.
func UserChannel(userID string) string {
	return "user:" + strings.TrimSpace(userID)
}
